// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole daily batch once",
	Long: `Run collects papers, ranks them, analyzes the top K, and writes the
CSV, HTML and analysis files. When enabled, the report is emailed and the
run is recorded in the history database. A failing source, paper, or email
does not fail the run; a report that cannot be written does.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("no-email", false, "skip email delivery for this run")
	runCmd.Flags().Bool("no-history", false, "do not read or write the history database")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.Close()

	if v, _ := cmd.Flags().GetBool("no-email"); v {
		a.cfg.Email.Enabled = false
	}
	if v, _ := cmd.Flags().GetBool("no-history"); v {
		a.cfg.History.Enabled = false
	}

	p, err := a.pipeline(stages{analyze: true, deliver: true})
	if err != nil {
		return err
	}
	_, err = p.Run(cmd.Context(), os.Stdout)
	return err
}
