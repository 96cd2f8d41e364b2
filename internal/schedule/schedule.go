// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule runs a job once a day at a fixed wall-clock time.
package schedule

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// Job is the work run on each tick. An error is logged and the schedule
// continues.
type Job func(ctx context.Context) error

// Scheduler fires a Job daily in a configured timezone.
type Scheduler struct {
	spec     string
	location *time.Location
	schedule cron.Schedule
	logger   *slog.Logger
}

// New builds a Scheduler from cfg. Time is HH:MM; an empty Timezone means
// the local zone.
func New(cfg types.ScheduleConfig, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	loc := time.Local
	if cfg.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
		}
	}

	spec, err := Spec(cfg.Time)
	if err != nil {
		return nil, err
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing cron spec %q: %w", spec, err)
	}

	return &Scheduler{spec: spec, location: loc, schedule: sched, logger: logger}, nil
}

// Spec converts an HH:MM time into a daily five-field cron expression.
func Spec(hhmm string) (string, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return "", fmt.Errorf("invalid time %q: must be HH:MM", hhmm)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 || len(h) > 2 {
		return "", fmt.Errorf("invalid hour in %q: must be 0-23", hhmm)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || len(m) != 2 {
		return "", fmt.Errorf("invalid minute in %q: must be 00-59", hhmm)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// Next returns the first run time after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	return s.schedule.Next(now.In(s.location))
}

// Run blocks until ctx is done, firing job at each scheduled time. Ticks
// that arrive while a previous run is still going are skipped. Run waits
// for an in-flight job before returning.
func (s *Scheduler) Run(ctx context.Context, job Job) error {
	cl := cronLogger{s.logger}
	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(s.spec, s.wrap(ctx, job)); err != nil {
		return fmt.Errorf("adding cron entry: %w", err)
	}

	s.logger.Info("schedule started",
		"cron", s.spec, "timezone", s.location.String(), "next", s.Next(time.Now()).Format(time.RFC3339))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("schedule stopped")
	return nil
}

func (s *Scheduler) wrap(ctx context.Context, job Job) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		s.logger.Info("scheduled run starting")
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled run failed", "err", err, "elapsed", time.Since(start).Round(time.Millisecond))
			return
		}
		s.logger.Info("scheduled run finished",
			"elapsed", time.Since(start).Round(time.Millisecond), "next", s.Next(time.Now()).Format(time.RFC3339))
	}
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"err", err}, keysAndValues...)...)
}
