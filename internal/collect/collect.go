// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect fetches recent paper metadata from preprint servers and
// returns one deduplicated list restricted to a submission window.
package collect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// Source fetches papers from one preprint server. Each server (arXiv,
// ChemRxiv) implements this interface.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]types.Paper, error)
}

// Query holds the collection parameters.
type Query struct {
	Categories []string
	Keywords   []string
	Since      time.Time
	Until      time.Time
	MaxResults int
}

// QueryFromConfig builds the query for a window of cfg.WindowDays days
// ending at now.
func QueryFromConfig(cfg types.CollectorConfig, now time.Time) Query {
	days := cfg.WindowDays
	if days <= 0 {
		days = 1
	}
	return Query{
		Categories: cfg.Categories,
		Keywords:   cfg.Keywords,
		Since:      now.AddDate(0, 0, -days),
		Until:      now,
		MaxResults: cfg.MaxResults,
	}
}

// CollectionError reports a source that failed. The run continues without it.
type CollectionError struct {
	Source string
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collecting from %s: %v", e.Source, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// Output holds the collected papers and collection statistics.
type Output struct {
	Papers       []types.Paper
	DupsRemoved  int
	OutOfWindow  int
	SourceErrors []*CollectionError
}

// NewSources returns the sources named in cfg.Sources, sharing one HTTP
// client configured from cfg.
func NewSources(cfg types.CollectorConfig) ([]Source, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	var sources []Source
	for _, name := range cfg.Sources {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case types.SourceArxiv:
			sources = append(sources, &ArxivSource{Client: client, UserAgent: cfg.UserAgent})
		case types.SourceChemRxiv:
			sources = append(sources, &ChemRxivSource{Client: client, UserAgent: cfg.UserAgent})
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	return sources, nil
}

// Collect queries each source in turn, pausing delay between sources. A
// failing source is logged and recorded in Output.SourceErrors; the other
// sources still run. Papers submitted outside [q.Since, q.Until) are dropped
// (papers without a date are kept) and duplicates by ID keep the first
// occurrence.
func Collect(ctx context.Context, sources []Source, q Query, delay time.Duration, logger *slog.Logger) (Output, error) {
	if len(sources) == 0 {
		return Output{}, fmt.Errorf("no sources configured")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var out Output
	var all []types.Paper
	for i, src := range sources {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return Output{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		papers, err := src.Fetch(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return Output{}, ctx.Err()
			}
			cerr := &CollectionError{Source: src.Name(), Err: err}
			logger.Warn("source failed", "source", src.Name(), "err", err)
			out.SourceErrors = append(out.SourceErrors, cerr)
			continue
		}
		logger.Info("fetched papers", "source", src.Name(), "count", len(papers))
		all = append(all, papers...)
	}

	seen := make(map[string]bool, len(all))
	for _, p := range all {
		if !inWindow(p, q) {
			out.OutOfWindow++
			continue
		}
		if p.ID == "" {
			logger.Warn("skipping paper without ID", "title", p.Title)
			continue
		}
		if seen[p.ID] {
			out.DupsRemoved++
			continue
		}
		seen[p.ID] = true
		out.Papers = append(out.Papers, p)
	}
	return out, nil
}

func inWindow(p types.Paper, q Query) bool {
	if p.Submitted.IsZero() {
		return true
	}
	if !q.Since.IsZero() && p.Submitted.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !p.Submitted.Before(q.Until) {
		return false
	}
	return true
}
