// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// RunRecord is the outcome of one pipeline run.
type RunRecord struct {
	StartedAt  time.Time
	Collected  int
	ReportPath string

	// Ranked holds the top papers in rank order.
	Ranked []types.ScoredPaper

	// URLs maps paper ID to its landing page. Missing entries store an
	// empty URL.
	URLs map[string]string

	// Analyses holds the papers that made it into the report.
	Analyses map[string]*types.AnalysisResult
}

// RecordRun stores every ranked paper with its authors and categories, and
// a run row linking them. A paper is marked reported when it has an
// analysis. It returns the new run ID.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	analyzed := 0
	for _, sp := range rec.Ranked {
		if rec.Analyses[sp.ID] != nil {
			analyzed++
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, collected, ranked, analyzed, report_path) VALUES (?, ?, ?, ?, ?)`,
		formatTime(rec.StartedAt), rec.Collected, len(rec.Ranked), analyzed, rec.ReportPath,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for i, sp := range rec.Ranked {
		a := rec.Analyses[sp.ID]
		if err := upsertPaper(ctx, tx, sp.Paper, rec.URLs[sp.ID], a, rec.StartedAt); err != nil {
			return 0, fmt.Errorf("storing paper %s: %w", sp.ID, err)
		}
		rank := sp.Rank
		if rank == 0 {
			rank = i + 1
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_papers (run_id, paper_id, rank, score, reported) VALUES (?, ?, ?, ?, ?)`,
			runID, sp.ID, rank, sp.Score, a != nil,
		)
		if err != nil {
			return 0, fmt.Errorf("linking paper %s: %w", sp.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// upsertPaper writes the paper row and replaces its authors and category
// links. An existing summary is kept when a is nil.
func upsertPaper(ctx context.Context, tx *sql.Tx, p types.Paper, url string, a *types.AnalysisResult, now time.Time) error {
	summary, status := "", StatusNew
	if a != nil {
		summary, status = a.Summary, StatusSummarized
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO papers (id, source, title, url, abstract, pdf_url, html_url, submitted, summary, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source=excluded.source, title=excluded.title, url=excluded.url,
			abstract=excluded.abstract, pdf_url=excluded.pdf_url, html_url=excluded.html_url,
			submitted=excluded.submitted,
			summary=CASE WHEN excluded.status = 'summarized' THEN excluded.summary ELSE papers.summary END,
			status=CASE WHEN excluded.status = 'summarized' THEN excluded.status ELSE papers.status END`,
		p.ID, p.Source, p.Title, url, p.Abstract, p.PDFURL, p.HTMLURL,
		formatTime(p.Submitted), summary, status, formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("upserting paper: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE paper_id = ?`, p.ID); err != nil {
		return fmt.Errorf("deleting authors: %w", err)
	}
	for i, name := range p.Authors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO authors (name, position, paper_id) VALUES (?, ?, ?)`, name, i, p.ID,
		); err != nil {
			return fmt.Errorf("inserting author: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM paper_categories WHERE paper_id = ?`, p.ID); err != nil {
		return fmt.Errorf("deleting categories: %w", err)
	}
	for _, name := range p.Categories {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("inserting category: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO paper_categories (paper_id, category_id)
			 SELECT ?, id FROM categories WHERE name = ?`, p.ID, name,
		); err != nil {
			return fmt.Errorf("linking category: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
