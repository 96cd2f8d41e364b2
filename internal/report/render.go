// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders ranked and analyzed papers as a CSV table, a
// self-contained HTML report, and an HTML email body, and delivers the email
// over SMTP.
package report

import (
	"fmt"
	"html/template"
	"time"

	"github.com/pdiddy/daily-scholar/internal/collect"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

// StampLayout formats the timestamp embedded in output file names.
const StampLayout = "20060102_150405"

// Stamp returns the file-name timestamp for t.
func Stamp(t time.Time) string { return t.Format(StampLayout) }

// Report is the rendered output of one run.
type Report struct {
	CSV  []byte
	HTML []byte
}

// RenderError reports a failure to render or write report output. It is
// fatal to a run.
type RenderError struct {
	Op   string
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("report %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("report %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Render produces the CSV of every ranked paper and the HTML report of the
// ranked papers that have an analysis. The output depends only on the
// arguments.
func Render(ranked []types.ScoredPaper, analyses map[string]*types.AnalysisResult, generatedAt time.Time) (*Report, error) {
	csvData, err := renderCSV(ranked)
	if err != nil {
		return nil, &RenderError{Op: "csv", Err: err}
	}
	htmlData, err := renderTemplate(reportTemplate, buildView(ranked, analyses, generatedAt))
	if err != nil {
		return nil, &RenderError{Op: "html", Err: err}
	}
	return &Report{CSV: csvData, HTML: htmlData}, nil
}

// PaperURL returns the landing page for p, built from its ID and source.
func PaperURL(p types.Paper) string {
	switch p.Source {
	case types.SourceChemRxiv:
		return collect.ChemRxivArticleURL(p.ID)
	case types.SourceArxiv:
		return "https://arxiv.org/abs/" + p.ID
	}
	if p.HTMLURL != "" {
		return p.HTMLURL
	}
	return "https://arxiv.org/abs/" + p.ID
}

// view is the content model shared by the report and email templates.
type view struct {
	GeneratedAt string
	Date        string
	Ranked      int
	Papers      []paperView
}

type paperView struct {
	Rank           int
	Title          string
	URL            string
	Authors        string
	Published      string
	Score          string
	Classification string
	Tags           []string
	Metrics        []types.Metric
	Summary        template.HTML
	Translation    template.HTML
}

// buildView keeps ranked order and drops papers without an analysis.
// Summary and translation are fragments produced by analyze.CleanResponse
// and are inserted unescaped.
func buildView(ranked []types.ScoredPaper, analyses map[string]*types.AnalysisResult, generatedAt time.Time) view {
	v := view{
		GeneratedAt: generatedAt.Format("2006-01-02 15:04:05 MST"),
		Date:        generatedAt.Format(types.DateLayout),
		Ranked:      len(ranked),
	}
	for i, sp := range ranked {
		a, ok := analyses[sp.ID]
		if !ok || a == nil {
			continue
		}
		rank := sp.Rank
		if rank == 0 {
			rank = i + 1
		}
		v.Papers = append(v.Papers, paperView{
			Rank:           rank,
			Title:          oneLine(sp.Title),
			URL:            PaperURL(sp.Paper),
			Authors:        joinAuthors(sp.Authors),
			Published:      formatDate(sp.Submitted),
			Score:          fmt.Sprintf("%.2f", sp.Score),
			Classification: a.Classification,
			Tags:           a.Tags,
			Metrics:        a.Metrics,
			Summary:        template.HTML(a.Summary),
			Translation:    template.HTML(a.Translation),
		})
	}
	return v
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(types.DateLayout)
}
