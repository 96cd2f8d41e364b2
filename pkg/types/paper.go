// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the daily-scholar pipeline:
// collected papers, their scores and ranks, analysis results, and the
// per-stage configuration structs.
package types

import "time"

// Paper sources.
const (
	SourceArxiv    = "arxiv"
	SourceChemRxiv = "chemrxiv"
)

// DateLayout is the ISO date layout used in reports and cache files.
const DateLayout = "2006-01-02"

// Paper holds normalized metadata for one paper returned by a collector.
// A Paper is not modified after collection.
type Paper struct {
	// ID is the source-specific identifier (e.g. "2503.21460" for arXiv).
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with line breaks collapsed.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Categories lists subject categories (e.g. "cs.AI", "Catalysis").
	Categories []string `json:"categories" yaml:"categories"`

	// Submitted is the submission (first published) time.
	Submitted time.Time `json:"submitted" yaml:"submitted"`

	// Updated is the time of the latest revision, if known.
	Updated time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`

	PDFURL  string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`
	HTMLURL string `json:"html_url,omitempty" yaml:"html_url,omitempty"`

	// Source identifies the collector that produced the record.
	Source string `json:"source" yaml:"source"`

	// ChemRxiv-only metadata.
	DOI      string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Subject  string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// ScoredPaper is a Paper with its quality score and rank.
type ScoredPaper struct {
	Paper `yaml:",inline"`

	// Score is the non-negative weighted quality score.
	Score float64 `json:"score" yaml:"score"`

	// Rank is the 1-based position after ranking. Zero means unranked.
	Rank int `json:"rank" yaml:"rank"`
}
