// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes heuristic quality scores for collected papers and
// ranks them.
package score

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// SubScoreCap bounds every sub-score before weighting.
const SubScoreCap = 2.0

const (
	authorStep   = 0.2
	categoryStep = 0.4
	keywordStep  = 0.2
	methodCap    = 0.6
	evalCap      = 0.4

	defaultHorizonDays = 200
	weightTolerance    = 1e-9
)

// methodKeywords and evalKeywords are matched as case-insensitive substrings
// of the abstract. Each keyword counts at most once.
var (
	methodKeywords = []string{"method", "approach", "algorithm", "technique", "framework", "model", "architecture"}
	evalKeywords   = []string{"experiment", "evaluation", "result", "performance", "benchmark", "comparison"}
)

// Breakdown holds the four clamped sub-scores of one paper.
type Breakdown struct {
	Author   float64
	Category float64
	Content  float64
	Recency  float64
}

// Scorer computes the weighted quality score of a paper. The current time
// is always passed in, so equal inputs give equal scores.
type Scorer struct {
	weights     types.ScoreWeights
	horizonDays int
}

// New validates cfg and returns a Scorer. The weights must sum to 1.0.
func New(cfg types.ScoringConfig) (*Scorer, error) {
	w := cfg.Weights
	for name, v := range map[string]float64{
		"author": w.Author, "category": w.Category, "content": w.Content, "recency": w.Recency,
	} {
		if v < 0 {
			return nil, fmt.Errorf("weight %s is negative: %v", name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return nil, fmt.Errorf("score weights must sum to 1.0, got %v", w.Sum())
	}

	horizon := cfg.RecencyHorizonDays
	if horizon <= 0 {
		horizon = defaultHorizonDays
	}
	return &Scorer{weights: w, horizonDays: horizon}, nil
}

// Score returns the weighted sum of the paper's sub-scores.
func (s *Scorer) Score(p types.Paper, now time.Time) float64 {
	b := s.Breakdown(p, now)
	return b.Author*s.weights.Author +
		b.Category*s.weights.Category +
		b.Content*s.weights.Content +
		b.Recency*s.weights.Recency
}

// Breakdown returns the individual sub-scores. Missing fields yield zero for
// the affected sub-score only.
func (s *Scorer) Breakdown(p types.Paper, now time.Time) Breakdown {
	return Breakdown{
		Author:   clamp(authorScore(p.Authors)),
		Category: clamp(categoryScore(p.Categories)),
		Content:  clamp(contentScore(p.Abstract)),
		Recency:  clamp(s.recencyScore(p.Submitted, now)),
	}
}

// ScoreAll scores papers in input order. Ranks are left at zero.
func (s *Scorer) ScoreAll(papers []types.Paper, now time.Time) []types.ScoredPaper {
	out := make([]types.ScoredPaper, len(papers))
	for i, p := range papers {
		out[i] = types.ScoredPaper{Paper: p, Score: s.Score(p, now)}
	}
	return out
}

func authorScore(authors []string) float64 {
	n := 0
	for _, a := range authors {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	return math.Min(float64(n)*authorStep, SubScoreCap)
}

func categoryScore(categories []string) float64 {
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c != "" {
			seen[c] = true
		}
	}
	return math.Min(float64(len(seen))*categoryStep, SubScoreCap)
}

func contentScore(abstract string) float64 {
	text := strings.ToLower(abstract)
	method := math.Min(float64(countKeywords(text, methodKeywords))*keywordStep, methodCap)
	eval := math.Min(float64(countKeywords(text, evalKeywords))*keywordStep, evalCap)
	return method + eval
}

func countKeywords(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// recencyScore decays linearly from the cap to zero over the horizon.
// Age is counted in whole days; future dates count as age zero.
func (s *Scorer) recencyScore(submitted, now time.Time) float64 {
	if submitted.IsZero() {
		return 0
	}
	days := int(now.Sub(submitted).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return SubScoreCap * (1 - float64(days)/float64(s.horizonDays))
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, SubScoreCap)
}
