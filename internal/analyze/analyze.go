// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze turns a paper's title and abstract into a classification,
// a Korean summary and translation, and headline metrics by calling a
// text-generation API. Results are cached per paper ID in memory and on disk
// so a paper is only ever sent to the API once.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdiddy/daily-scholar/internal/llm"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

// Analysis stages, reported in AnalysisError.
const (
	StageClassification = "classification"
	StageSummary        = "summary"
	StageTranslation    = "translation"
)

// TextGenerator produces text for a prompt. *llm.Client implements it.
type TextGenerator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// AnalysisError reports a failed text-generation call for one paper.
type AnalysisError struct {
	PaperID string
	Stage   string
	Err     error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyzing %s (%s): %v", e.PaperID, e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Stats counts cache hits (memory or disk) and misses.
type Stats struct {
	Hits   int
	Misses int
}

// Analyzer analyzes papers with a TextGenerator and a Cache. It is not safe
// for concurrent use.
type Analyzer struct {
	gen            TextGenerator
	cache          *Cache
	prompts        *promptSet
	chatModel      string
	reasoningModel string
	delay          time.Duration
	logger         *slog.Logger
	now            func() time.Time
	stats          Stats
}

// New returns an Analyzer. The cache directory is created if missing.
func New(gen TextGenerator, cfg types.AnalyzerConfig, prompts Prompts, logger *slog.Logger) (*Analyzer, error) {
	if gen == nil {
		return nil, errors.New("analyzer needs a text generator")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	set, err := compilePrompts(prompts)
	if err != nil {
		return nil, err
	}
	cache, err := NewCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	reasoning := cfg.ReasoningModel
	if reasoning == "" {
		reasoning = cfg.Model
	}
	return &Analyzer{
		gen:            gen,
		cache:          cache,
		prompts:        set,
		chatModel:      cfg.Model,
		reasoningModel: reasoning,
		delay:          cfg.RequestDelay,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// Stats returns the cache counters.
func (a *Analyzer) Stats() Stats { return a.stats }

// Cached reports whether p would be served from a cache layer.
func (a *Analyzer) Cached(paperID string) bool {
	if _, ok := a.cache.Memory(paperID); ok {
		return true
	}
	r, err := a.cache.Load(paperID)
	return err == nil && r != nil
}

// Analyze returns the analysis for p, from cache when available. On a miss it
// makes three generation calls (classification, summary, translation),
// pausing the configured delay after each.
func (a *Analyzer) Analyze(ctx context.Context, p types.Paper) (*types.AnalysisResult, error) {
	if r, ok := a.cache.Memory(p.ID); ok {
		a.stats.Hits++
		a.logger.Debug("memory cache hit", "paper", p.ID)
		return r, nil
	}
	r, err := a.cache.Load(p.ID)
	if err != nil {
		a.logger.Warn("ignoring unreadable cache entry", "paper", p.ID, "err", err)
	} else if r != nil {
		a.stats.Hits++
		a.logger.Info("loaded analysis from cache", "paper", p.ID)
		return r, nil
	}
	a.stats.Misses++

	a.logger.Info("analyzing paper", "paper", p.ID, "title", p.Title)

	rawClass, err := a.call(ctx, p, StageClassification, a.reasoningModel)
	if err != nil {
		return nil, err
	}
	class, err := ParseClassification(rawClass)
	if err != nil {
		a.logger.Warn("classification not parsed", "paper", p.ID, "err", err)
	}

	rawSummary, err := a.call(ctx, p, StageSummary, a.reasoningModel)
	if err != nil {
		return nil, err
	}
	summary := CleanResponse(rawSummary)

	rawTranslation, err := a.call(ctx, p, StageTranslation, a.chatModel)
	if err != nil {
		return nil, err
	}

	result := &types.AnalysisResult{
		PaperID:        p.ID,
		Title:          p.Title,
		Classification: class.Field,
		Tags:           class.Tags,
		Summary:        summary,
		Translation:    CleanResponse(trimTranslation(rawTranslation)),
		Metrics:        ExtractMetrics(summary),
		AnalyzedAt:     a.now().UTC(),
	}
	if !p.Submitted.IsZero() {
		result.SubmissionDate = p.Submitted.Format(types.DateLayout)
	}

	if err := a.cache.Put(result); err != nil {
		a.logger.Error("cache write failed", "paper", p.ID, "err", err)
	}
	return result, nil
}

func (a *Analyzer) call(ctx context.Context, p types.Paper, stage, model string) (string, error) {
	tmpl := a.prompts.classification
	switch stage {
	case StageSummary:
		tmpl = a.prompts.summary
	case StageTranslation:
		tmpl = a.prompts.translation
	}
	prompt, err := renderPrompt(tmpl, p.Title, p.Abstract)
	if err != nil {
		return "", &AnalysisError{PaperID: p.ID, Stage: stage, Err: fmt.Errorf("rendering prompt: %w", err)}
	}

	text, err := a.gen.Generate(ctx, llm.Request{Model: model, System: a.prompts.system, Prompt: prompt})
	if err != nil {
		return "", &AnalysisError{PaperID: p.ID, Stage: stage, Err: err}
	}
	a.logger.Debug("generation done", "paper", p.ID, "stage", stage, "model", model, "chars", len(text))

	if err := pause(ctx, a.delay); err != nil {
		return "", &AnalysisError{PaperID: p.ID, Stage: stage, Err: err}
	}
	return text, nil
}

// pause sleeps for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
