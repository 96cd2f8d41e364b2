// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/daily-scholar/internal/score"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score and rank papers and print the top K as a table",
	Long: `Rank scores papers on author count, category breadth, methodology and
evaluation keywords in the abstract, and recency, then prints the top K.
Papers come from --in (a file written by collect) or a fresh collection.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("in", "", "YAML paper list written by collect")
	rankCmd.Flags().Int("top", 0, "override scoring.top_k")
	rankCmd.Flags().Bool("all", false, "print every scored paper, not only the top K")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.Close()

	if top, _ := cmd.Flags().GetInt("top"); top > 0 {
		a.cfg.Scoring.TopK = top
	}
	p, err := a.pipeline(stages{})
	if err != nil {
		return err
	}
	papers, err := inputPapers(cmd, p)
	if err != nil {
		return err
	}

	ranking := p.Rank(papers, time.Now())
	if all, _ := cmd.Flags().GetBool("all"); all {
		score.FormatTable(ranking.All, cmd.OutOrStdout())
		return nil
	}
	score.FormatTable(ranking.Top, cmd.OutOrStdout())
	return nil
}
