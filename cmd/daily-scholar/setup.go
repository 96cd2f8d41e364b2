// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/daily-scholar/internal/analyze"
	"github.com/pdiddy/daily-scholar/internal/collect"
	"github.com/pdiddy/daily-scholar/internal/history"
	"github.com/pdiddy/daily-scholar/internal/llm"
	"github.com/pdiddy/daily-scholar/internal/pipeline"
	"github.com/pdiddy/daily-scholar/internal/report"
	"github.com/pdiddy/daily-scholar/internal/score"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

// app holds the configuration and logger shared by one command invocation.
type app struct {
	cfg     types.PipelineConfig
	logger  *slog.Logger
	closers []io.Closer
}

// newApp loads the configuration and builds the logger. logFile, when not
// empty, is used if the config names no log file.
func newApp(logFile string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Log.File == "" {
		cfg.Log.File = logFile
	}
	logger, closer, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return &app{cfg: cfg, logger: logger, closers: []io.Closer{closer}}, nil
}

// Close releases the log file and the history database.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

// stages selects the collaborators a command needs.
type stages struct {
	analyze bool
	deliver bool
}

// pipeline wires a Pipeline from the configuration.
func (a *app) pipeline(s stages) (*pipeline.Pipeline, error) {
	sources, err := collect.NewSources(a.cfg.Collector)
	if err != nil {
		return nil, err
	}
	scorer, err := score.New(a.cfg.Scoring)
	if err != nil {
		return nil, err
	}

	p := &pipeline.Pipeline{
		Config:  a.cfg,
		Sources: sources,
		Scorer:  scorer,
		Now:     time.Now,
		Logger:  a.logger,
	}

	if s.analyze {
		analyzer, err := a.analyzer()
		if err != nil {
			return nil, err
		}
		p.Analyzer = analyzer
	}

	if s.deliver {
		if a.cfg.Email.Enabled {
			m := report.NewMailer(a.cfg.Email)
			if err := m.Check(); err != nil {
				a.logger.Warn("email enabled but not configured", "err", err)
			}
			p.Mailer = m
		}
		if a.cfg.History.Enabled {
			store, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, store)
			p.History = store
		}
	}
	return p, nil
}

func (a *app) analyzer() (*analyze.Analyzer, error) {
	if a.cfg.Analyzer.APIKey == "" {
		return nil, fmt.Errorf("no API key: set analyzer.api_key, DEEPSEEK_API_KEY, or .secrets/deepseek-api-key")
	}
	prompts, err := analyze.LoadPrompts(a.cfg.Analyzer.PromptsFile)
	if err != nil {
		return nil, err
	}
	client := llm.NewClient(a.cfg.Analyzer.AIConfig, nil, a.logger)
	return analyze.New(client, a.cfg.Analyzer, prompts, a.logger)
}

// setupApp is the common prelude of commands that need configuration.
func setupApp(cmd *cobra.Command, logFile string) (*app, error) {
	a, err := newApp(logFile)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("starting command", "command", cmd.Name(), "version", version)
	return a, nil
}
