// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one daily batch: collect papers, rank them, analyze
// the top papers, write the reports, and optionally email the report and
// record the run in history.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdiddy/daily-scholar/internal/analyze"
	"github.com/pdiddy/daily-scholar/internal/collect"
	"github.com/pdiddy/daily-scholar/internal/history"
	"github.com/pdiddy/daily-scholar/internal/report"
	"github.com/pdiddy/daily-scholar/internal/score"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

// Analyzer produces analyses for single papers.
type Analyzer interface {
	Analyze(ctx context.Context, p types.Paper) (*types.AnalysisResult, error)
	Cached(paperID string) bool
}

// Scorer assigns quality scores to collected papers.
type Scorer interface {
	ScoreAll(papers []types.Paper, now time.Time) []types.ScoredPaper
}

// Mailer delivers the HTML report.
type Mailer interface {
	Send(subject, html string) error
}

// History remembers what earlier runs reported.
type History interface {
	FilterReported(ctx context.Context, papers []types.Paper) ([]types.Paper, int, error)
	RecordRun(ctx context.Context, rec history.RunRecord) (int64, error)
}

// Pipeline holds the collaborators of a run. Mailer and History are
// optional; a nil value disables that step.
type Pipeline struct {
	Config   types.PipelineConfig
	Sources  []collect.Source
	Scorer   Scorer
	Analyzer Analyzer
	Mailer   Mailer
	History  History
	Now      func() time.Time
	Logger   *slog.Logger
}

// Summary holds counts and output paths from one run.
type Summary struct {
	Collected    int
	SourceErrors int
	Skipped      int
	Ranked       int
	Analyzed     int
	Cached       int
	Failed       int

	AnalysisPath string
	CSVPath      string
	HTMLPath     string

	Emailed    bool
	EmailError error
	RunID      int64
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Collect fetches papers from all sources for the configured window ending
// at now.
func (p *Pipeline) Collect(ctx context.Context, now time.Time) (collect.Output, error) {
	q := collect.QueryFromConfig(p.Config.Collector, now)
	return collect.Collect(ctx, p.Sources, q, p.Config.Collector.RequestDelay, p.logger())
}

// Rank scores papers and keeps the configured top K.
func (p *Pipeline) Rank(papers []types.Paper, now time.Time) score.Ranking {
	return score.Rank(p.Scorer.ScoreAll(papers, now), p.Config.Scoring.TopK)
}

// AnalyzeAll analyzes ranked papers in order. A paper whose analysis fails
// is reported to w and skipped. The returned slice keeps rank order.
func (p *Pipeline) AnalyzeAll(ctx context.Context, ranked []types.ScoredPaper, w io.Writer) ([]*types.AnalysisResult, Summary, error) {
	var sum Summary
	var results []*types.AnalysisResult
	for _, sp := range ranked {
		if err := ctx.Err(); err != nil {
			return results, sum, err
		}

		cached := p.Analyzer.Cached(sp.ID)
		if cached {
			fmt.Fprintf(w, "cached    %s\n", sp.ID)
		} else {
			fmt.Fprintf(w, "analyzing %s\n", sp.ID)
		}

		r, err := p.Analyzer.Analyze(ctx, sp.Paper)
		if err != nil {
			if ctx.Err() != nil {
				return results, sum, ctx.Err()
			}
			var ae *analyze.AnalysisError
			if !errors.As(err, &ae) {
				ae = &analyze.AnalysisError{PaperID: sp.ID, Err: err}
			}
			p.logger().Warn("skipping paper", "paper", sp.ID, "stage", ae.Stage, "err", ae.Err)
			fmt.Fprintf(w, "failed    %s: %v\n", sp.ID, err)
			sum.Failed++
			continue
		}

		results = append(results, r)
		sum.Analyzed++
		if cached {
			sum.Cached++
		}
	}
	return results, sum, nil
}

// Run executes the whole batch. Only a render or write failure of the
// report, a collection setup error, or cancellation fails the run.
func (p *Pipeline) Run(ctx context.Context, w io.Writer) (Summary, error) {
	start := p.now()
	log := p.logger()
	stamp := report.Stamp(start)

	out, err := p.Collect(ctx, start)
	if err != nil {
		return Summary{}, fmt.Errorf("collecting papers: %w", err)
	}
	sum := Summary{Collected: len(out.Papers), SourceErrors: len(out.SourceErrors)}
	fmt.Fprintf(w, "collected %d papers (%d duplicates, %d out of window, %d source errors)\n",
		len(out.Papers), out.DupsRemoved, out.OutOfWindow, len(out.SourceErrors))

	papers := out.Papers
	if p.History != nil && p.Config.History.SkipReported {
		kept, skipped, err := p.History.FilterReported(ctx, papers)
		if err != nil {
			log.Warn("history lookup failed, keeping all papers", "err", err)
		} else {
			papers = kept
			sum.Skipped = skipped
			if skipped > 0 {
				fmt.Fprintf(w, "skipped   %d already reported\n", skipped)
			}
		}
	}

	ranking := p.Rank(papers, start)
	sum.Ranked = len(ranking.Top)
	fmt.Fprintf(w, "ranked    %d of %d papers\n", len(ranking.Top), len(papers))

	results, as, err := p.AnalyzeAll(ctx, ranking.Top, w)
	sum.Analyzed, sum.Cached, sum.Failed = as.Analyzed, as.Cached, as.Failed
	if err != nil {
		return sum, err
	}

	analyses := make(map[string]*types.AnalysisResult, len(results))
	for _, r := range results {
		analyses[r.PaperID] = r
	}

	dir := p.Config.Report.OutputDir
	if sum.AnalysisPath, err = report.WriteAnalyses(dir, stamp, results); err != nil {
		return sum, err
	}
	fmt.Fprintf(w, "wrote     %s\n", sum.AnalysisPath)

	rep, err := report.Render(ranking.Top, analyses, start)
	if err != nil {
		return sum, err
	}
	paths, err := report.WriteFiles(dir, stamp, rep)
	if err != nil {
		return sum, err
	}
	sum.CSVPath, sum.HTMLPath = paths.CSV, paths.HTML
	fmt.Fprintf(w, "wrote     %s\n", paths.CSV)
	fmt.Fprintf(w, "wrote     %s\n", paths.HTML)

	if p.Mailer != nil && p.Config.Email.Enabled {
		p.email(ranking.Top, analyses, start, w, &sum)
	}

	if p.History != nil {
		urls := make(map[string]string, len(ranking.Top))
		for _, sp := range ranking.Top {
			urls[sp.ID] = report.PaperURL(sp.Paper)
		}
		id, err := p.History.RecordRun(ctx, history.RunRecord{
			StartedAt:  start,
			Collected:  sum.Collected,
			ReportPath: paths.HTML,
			Ranked:     ranking.Top,
			URLs:       urls,
			Analyses:   analyses,
		})
		if err != nil {
			log.Error("recording run in history failed", "err", err)
		} else {
			sum.RunID = id
		}
	}

	fmt.Fprintf(w, "\ncollected: %d, ranked: %d, analyzed: %d, cached: %d, failed: %d\n",
		sum.Collected, sum.Ranked, sum.Analyzed, sum.Cached, sum.Failed)
	log.Info("run finished",
		"collected", sum.Collected, "ranked", sum.Ranked, "analyzed", sum.Analyzed,
		"cached", sum.Cached, "failed", sum.Failed, "report", sum.HTMLPath,
		"elapsed", p.now().Sub(start).Round(time.Millisecond))
	return sum, nil
}

// email sends the report when at least one paper was analyzed. Failures are
// logged and kept in the summary.
func (p *Pipeline) email(ranked []types.ScoredPaper, analyses map[string]*types.AnalysisResult, now time.Time, w io.Writer, sum *Summary) {
	if len(analyses) == 0 {
		fmt.Fprintln(w, "email     skipped, no analyzed papers")
		return
	}
	body, err := report.EmailBody(ranked, analyses, now)
	if err == nil {
		err = p.Mailer.Send(report.Subject(now), string(body))
	}
	if err != nil {
		sum.EmailError = err
		p.logger().Error("email delivery failed", "err", err)
		fmt.Fprintf(w, "email     failed: %v\n", err)
		return
	}
	sum.Emailed = true
	fmt.Fprintln(w, "email     sent")
}
