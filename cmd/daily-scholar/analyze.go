// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/daily-scholar/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify, summarize and translate the top-ranked papers",
	Long: `Analyze ranks papers from --in (or a fresh collection) and sends the
top K to the text-generation API for classification, a structured summary,
and a Korean translation of the abstract. Results are cached per paper and
written to analysis_<stamp>.json in the output directory.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("in", "", "YAML paper list written by collect")
	analyzeCmd.Flags().Int("top", 0, "override scoring.top_k")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.Close()

	if top, _ := cmd.Flags().GetInt("top"); top > 0 {
		a.cfg.Scoring.TopK = top
	}
	p, err := a.pipeline(stages{analyze: true})
	if err != nil {
		return err
	}
	papers, err := inputPapers(cmd, p)
	if err != nil {
		return err
	}

	now := time.Now()
	ranking := p.Rank(papers, now)
	results, sum, err := p.AnalyzeAll(cmd.Context(), ranking.Top, os.Stdout)
	if err != nil {
		return err
	}

	path, err := report.WriteAnalyses(a.cfg.Report.OutputDir, report.Stamp(now), results)
	if err != nil {
		return err
	}
	fmt.Printf("wrote     %s\n", path)
	fmt.Printf("\nanalyzed: %d, cached: %d, failed: %d\n", sum.Analyzed, sum.Cached, sum.Failed)
	if sum.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed analysis", sum.Failed)
	}
	return nil
}
