// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Metric is a headline statistic detected in a paper summary
// (e.g. Label "accuracy", Value "78.8%").
type Metric struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// AnalysisResult holds the text-generation output for one paper. It is
// produced once per paper ID and cached on disk as JSON.
type AnalysisResult struct {
	PaperID string `json:"paper_id" yaml:"paper_id"`
	Title   string `json:"title" yaml:"title"`

	// Classification is the single primary subject label.
	Classification string `json:"classification" yaml:"classification"`

	// Tags is deduplicated and keeps the order the model produced.
	Tags []string `json:"tags" yaml:"tags"`

	// Summary and Translation are HTML fragments.
	Summary     string `json:"summary" yaml:"summary"`
	Translation string `json:"translation" yaml:"translation"`

	Metrics []Metric `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// SubmissionDate is the paper's submission date as YYYY-MM-DD.
	SubmissionDate string `json:"submission_date" yaml:"submission_date"`

	AnalyzedAt time.Time `json:"analyzed_at" yaml:"analyzed_at"`
}
