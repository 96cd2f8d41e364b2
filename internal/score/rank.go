// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// DefaultTopK is used when Rank receives a non-positive topK.
const DefaultTopK = 10

// Ranking holds both views of a ranked batch.
type Ranking struct {
	// All is every paper sorted by score descending. Only the first TopK
	// entries carry a rank; the rest keep rank 0.
	All []types.ScoredPaper

	// Top is the first TopK entries of All.
	Top []types.ScoredPaper
}

// Rank sorts a copy of papers by score descending, keeping input order for
// equal scores, and assigns ranks 1..topK. The input slice is not modified.
func Rank(papers []types.ScoredPaper, topK int) Ranking {
	if topK <= 0 {
		topK = DefaultTopK
	}

	all := make([]types.ScoredPaper, len(papers))
	copy(all, papers)
	for i := range all {
		all[i].Rank = 0
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	n := min(topK, len(all))
	for i := 0; i < n; i++ {
		all[i].Rank = i + 1
	}

	top := make([]types.ScoredPaper, n)
	copy(top, all[:n])
	return Ranking{All: all, Top: top}
}

// FormatTable writes ranked papers as a human-readable table to w.
func FormatTable(papers []types.ScoredPaper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers ranked.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-6s  %-7s  %-20s  %s\n",
		"Rank", "Title", "Score", "Authors", "Categories", "Published")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, p := range papers {
		published := ""
		if !p.Submitted.IsZero() {
			published = p.Submitted.Format(types.DateLayout)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-6.2f  %-7d  %-20s  %s\n",
			p.Rank, truncate(p.Title, 60), p.Score, len(p.Authors),
			truncate(strings.Join(p.Categories, ", "), 20), published)
	}
	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
