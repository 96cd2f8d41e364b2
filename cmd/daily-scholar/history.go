// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/daily-scholar/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs and the papers they reported",
	Long: `History reads the run history database. Without flags it lists the
most recent runs. --run prints the ranked papers of one run and --yaml
exports runs with their papers.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to list (0 for all)")
	historyCmd.Flags().Int64("run", 0, "show the papers of this run ID")
	historyCmd.Flags().Bool("yaml", false, "export runs with their papers as YAML")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := history.Open(a.cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	limit, _ := cmd.Flags().GetInt("limit")

	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return store.ExportYAML(ctx, w, limit)
	}

	if runID, _ := cmd.Flags().GetInt64("run"); runID > 0 {
		papers, err := store.RunPapers(ctx, runID)
		if err != nil {
			return err
		}
		if len(papers) == 0 {
			return fmt.Errorf("run %d not found or empty", runID)
		}
		for _, p := range papers {
			mark := " "
			if p.Reported {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %2d  %.4f  %-12s  %s\n", mark, p.Rank, p.Score, p.ID, p.Title)
		}
		return nil
	}

	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}
	history.FormatRuns(runs, w)
	return nil
}
