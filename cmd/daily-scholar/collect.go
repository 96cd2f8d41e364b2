// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/daily-scholar/internal/pipeline"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch recently submitted papers from the configured sources",
	Long: `Collect queries each configured source (arxiv, chemrxiv) for papers
submitted inside the collection window, drops duplicates, and writes the
papers as YAML to --out or stdout. The file can be fed to rank and analyze
with --in.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("out", "", "write papers as YAML to this file instead of stdout")
	collectCmd.Flags().StringSlice("sources", nil, "override collector.sources (arxiv, chemrxiv)")
	collectCmd.Flags().Int("window-days", 0, "override collector.window_days")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	a, err := setupApp(cmd, "")
	if err != nil {
		return err
	}
	defer a.Close()

	if srcs, _ := cmd.Flags().GetStringSlice("sources"); len(srcs) > 0 {
		a.cfg.Collector.Sources = srcs
	}
	if days, _ := cmd.Flags().GetInt("window-days"); days > 0 {
		a.cfg.Collector.WindowDays = days
	}

	p, err := a.pipeline(stages{})
	if err != nil {
		return err
	}
	papers, err := collectPapers(cmd.Context(), p, os.Stderr)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return writePapers(os.Stdout, papers)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := writePapers(f, papers); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d papers to %s\n", len(papers), out)
	return nil
}

// collectPapers runs the collection stage and reports its counts to w.
func collectPapers(ctx context.Context, p *pipeline.Pipeline, w io.Writer) ([]types.Paper, error) {
	out, err := p.Collect(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	for _, e := range out.SourceErrors {
		fmt.Fprintf(w, "failed    %s: %v\n", e.Source, e.Err)
	}
	fmt.Fprintf(w, "collected %d papers (%d duplicates, %d out of window)\n",
		len(out.Papers), out.DupsRemoved, out.OutOfWindow)
	return out.Papers, nil
}

func writePapers(w io.Writer, papers []types.Paper) error {
	if papers == nil {
		papers = []types.Paper{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(papers); err != nil {
		return fmt.Errorf("encoding papers: %w", err)
	}
	return enc.Close()
}

// readPapers loads a YAML paper list written by collect.
func readPapers(path string) ([]types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var papers []types.Paper
	if err := yaml.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return papers, nil
}

// inputPapers reads --in when given and collects otherwise.
func inputPapers(cmd *cobra.Command, p *pipeline.Pipeline) ([]types.Paper, error) {
	if in, _ := cmd.Flags().GetString("in"); in != "" {
		return readPapers(in)
	}
	return collectPapers(cmd.Context(), p, os.Stderr)
}
