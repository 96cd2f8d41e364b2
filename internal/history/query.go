// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// Run is one stored pipeline run.
type Run struct {
	ID         int64      `yaml:"id"`
	StartedAt  time.Time  `yaml:"started_at"`
	Collected  int        `yaml:"collected"`
	Ranked     int        `yaml:"ranked"`
	Analyzed   int        `yaml:"analyzed"`
	ReportPath string     `yaml:"report_path,omitempty"`
	Papers     []RunPaper `yaml:"papers,omitempty"`
}

// RunPaper is a paper as it appeared in one run.
type RunPaper struct {
	ID         string   `yaml:"id"`
	Title      string   `yaml:"title"`
	URL        string   `yaml:"url,omitempty"`
	Authors    []string `yaml:"authors,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
	Rank       int      `yaml:"rank"`
	Score      float64  `yaml:"score"`
	Reported   bool     `yaml:"reported"`
}

// reportedBatch bounds the IN list of one query, well under SQLite's
// host parameter limit.
var reportedBatch = 500

// Reported returns the subset of ids that appeared in a report of an
// earlier run.
func (s *Store) Reported(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for start := 0; start < len(ids); start += reportedBatch {
		end := min(start+reportedBatch, len(ids))
		if err := s.reportedIn(ctx, ids[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) reportedIn(ctx context.Context, ids []string, out map[string]bool) error {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT paper_id FROM run_papers WHERE reported = 1 AND paper_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("querying reported papers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning reported paper: %w", err)
		}
		out[id] = true
	}
	return rows.Err()
}

// FilterReported drops papers that were already reported and returns the
// rest with the number removed. Input order is kept.
func (s *Store) FilterReported(ctx context.Context, papers []types.Paper) ([]types.Paper, int, error) {
	ids := make([]string, len(papers))
	for i, p := range papers {
		ids[i] = p.ID
	}
	seen, err := s.Reported(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	kept := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if !seen[p.ID] {
			kept = append(kept, p)
		}
	}
	return kept, len(papers) - len(kept), nil
}

// Runs returns the most recent runs, newest first. A non-positive limit
// returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, collected, ranked, analyzed, COALESCE(report_path, '') FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Collected, &r.Ranked, &r.Analyzed, &r.ReportPath); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunPapers returns the papers of one run in rank order.
func (s *Store) RunPapers(ctx context.Context, runID int64) ([]RunPaper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.title, COALESCE(p.url, ''), rp.rank, rp.score, rp.reported
		 FROM run_papers rp JOIN papers p ON p.id = rp.paper_id
		 WHERE rp.run_id = ?
		 ORDER BY rp.rank`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run papers: %w", err)
	}

	var papers []RunPaper
	for rows.Next() {
		var p RunPaper
		if err := rows.Scan(&p.ID, &p.Title, &p.URL, &p.Rank, &p.Score, &p.Reported); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run paper: %w", err)
		}
		papers = append(papers, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range papers {
		if papers[i].Authors, err = s.queryStrings(ctx,
			`SELECT name FROM authors WHERE paper_id = ? ORDER BY position`, papers[i].ID); err != nil {
			return nil, fmt.Errorf("querying authors: %w", err)
		}
		if papers[i].Categories, err = s.queryStrings(ctx,
			`SELECT c.name FROM paper_categories pc JOIN categories c ON c.id = pc.category_id
			 WHERE pc.paper_id = ? ORDER BY c.name`, papers[i].ID); err != nil {
			return nil, fmt.Errorf("querying categories: %w", err)
		}
	}
	return papers, nil
}

func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ExportYAML writes the most recent runs with their papers to w.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	runs, err := s.Runs(ctx, limit)
	if err != nil {
		return err
	}
	for i := range runs {
		if runs[i].Papers, err = s.RunPapers(ctx, runs[i].ID); err != nil {
			return err
		}
	}
	if runs == nil {
		runs = []Run{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// FormatRuns writes runs as a human-readable table to w.
func FormatRuns(runs []Run, w io.Writer) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	fmt.Fprintf(w, "%-5s  %-20s  %9s  %6s  %8s  %s\n", "RUN", "STARTED", "COLLECTED", "RANKED", "ANALYZED", "REPORT")
	for _, r := range runs {
		fmt.Fprintf(w, "%-5d  %-20s  %9d  %6d  %8d  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Collected, r.Ranked, r.Analyzed, r.ReportPath)
	}
}
