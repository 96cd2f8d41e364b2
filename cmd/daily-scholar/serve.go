// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/daily-scholar/internal/schedule"
)

const defaultServeLogFile = "data/logs/daily_scholar.log"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily batch every day at the scheduled time",
	Long: `Serve stays in the foreground and runs the whole batch once a day at
schedule.time in schedule.timezone. A failed run is logged and the next day
runs as usual. Logs are also appended to log.file (default
data/logs/daily_scholar.log). Interrupt to stop.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("now", false, "run once immediately before waiting for the schedule")
	serveCmd.Flags().String("at", "", "override schedule.time (HH:MM)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd, defaultServeLogFile)
	if err != nil {
		return err
	}
	defer a.Close()

	if at, _ := cmd.Flags().GetString("at"); at != "" {
		a.cfg.Schedule.Time = at
	}
	sched, err := schedule.New(a.cfg.Schedule, a.logger)
	if err != nil {
		return err
	}
	p, err := a.pipeline(stages{analyze: true, deliver: true})
	if err != nil {
		return err
	}

	job := func(ctx context.Context) error {
		_, err := p.Run(ctx, os.Stdout)
		return err
	}

	ctx := cmd.Context()
	if now, _ := cmd.Flags().GetBool("now"); now {
		if err := job(ctx); err != nil {
			a.logger.Error("initial run failed", "err", err)
		}
	}
	return sched.Run(ctx, job)
}
