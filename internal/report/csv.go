// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// csvHeader names the columns. The authors column holds the author count.
var csvHeader = []string{"rank", "title", "url", "score", "authors", "categories", "published", "updated", "abstract"}

// renderCSV writes one row per ranked paper in ranked order.
func renderCSV(ranked []types.ScoredPaper) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for i, sp := range ranked {
		rank := sp.Rank
		if rank == 0 {
			rank = i + 1
		}
		row := []string{
			strconv.Itoa(rank),
			oneLine(sp.Title),
			PaperURL(sp.Paper),
			strconv.FormatFloat(sp.Score, 'f', 4, 64),
			strconv.Itoa(len(sp.Authors)),
			strings.Join(sp.Categories, ", "),
			formatDate(sp.Submitted),
			formatDate(sp.Updated),
			oneLine(sp.Abstract),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// oneLine collapses newlines and runs of whitespace to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}
