// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

const sampleChemRxivJSON = `{
  "totalCount": 3,
  "itemHits": [
    {"item": {
      "id": "67f0a1b2c3d4e5f6a7b8c9d0",
      "doi": "10.26434/chemrxiv-2025-abc12",
      "title": "  Machine-Learned\n  Catalysts ",
      "abstract": "We screen catalysts with graph networks.",
      "authors": [{"firstName": "Marie", "lastName": "Curie"}, {"firstName": "", "lastName": ""}, {"firstName": "Linus", "lastName": "Pauling"}],
      "categories": [{"name": "Catalysis"}, {"name": "Machine Learning"}],
      "subject": {"name": "Physical Chemistry"},
      "keywords": ["catalysis", "GNN"],
      "submittedDate": "2025-04-01T10:15:00.000Z",
      "publishedDate": "2025-04-02T08:00:00.000Z",
      "asset": {"original": {"url": "https://chemrxiv.org/assets/paper.pdf"}}
    }},
    {"item": {"id": "", "title": "No ID"}},
    {"item": {"id": "abc", "title": "   "}}
  ]
}`

func withChemRxivServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	old := chemrxivAPIBase
	chemrxivAPIBase = ts.URL
	t.Cleanup(func() {
		chemrxivAPIBase = old
		ts.Close()
	})
	return ts
}

func TestChemRxivSourceFetch(t *testing.T) {
	var got url.Values
	ts := withChemRxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleChemRxivJSON)
	})

	s := &ChemRxivSource{Client: ts.Client()}
	since := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	papers, err := s.Fetch(context.Background(), Query{
		Keywords:   []string{"catalysis", "machine learning"},
		Since:      since,
		MaxResults: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, "catalysis machine learning", got.Get("term"))
	assert.Equal(t, "20", got.Get("limit"))
	assert.Equal(t, "2025-04-01T00:00:00.000Z", got.Get("searchDateFrom"))

	require.Len(t, papers, 1, "items without ID or title are skipped")
	want := types.Paper{
		ID:         "67f0a1b2c3d4e5f6a7b8c9d0",
		Title:      "Machine-Learned Catalysts",
		Abstract:   "We screen catalysts with graph networks.",
		Authors:    []string{"Marie Curie", "Linus Pauling"},
		Categories: []string{"Catalysis", "Machine Learning"},
		Submitted:  time.Date(2025, 4, 1, 10, 15, 0, 0, time.UTC),
		Updated:    time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC),
		PDFURL:     "https://chemrxiv.org/assets/paper.pdf",
		HTMLURL:    "https://chemrxiv.org/engage/chemrxiv/article-details/67f0a1b2c3d4e5f6a7b8c9d0",
		Source:     types.SourceChemRxiv,
		DOI:        "10.26434/chemrxiv-2025-abc12",
		Subject:    "Physical Chemistry",
		Keywords:   []string{"catalysis", "GNN"},
	}
	assert.Equal(t, want, papers[0])
}

func TestChemRxivSourceNeedsKeyword(t *testing.T) {
	s := &ChemRxivSource{}
	_, err := s.Fetch(context.Background(), Query{Categories: []string{"cs.AI"}})
	assert.ErrorContains(t, err, "keyword")
}

func TestChemRxivSourceLimitCapped(t *testing.T) {
	var limit string
	ts := withChemRxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		limit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `{"itemHits": []}`)
	})

	s := &ChemRxivSource{Client: ts.Client()}
	papers, err := s.Fetch(context.Background(), Query{Keywords: []string{"x"}, MaxResults: 500})
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Equal(t, "50", limit)
}

func TestChemRxivSourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusBadGateway, ""},
		{"malformed json", http.StatusOK, "{itemHits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withChemRxivServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			s := &ChemRxivSource{Client: ts.Client()}
			_, err := s.Fetch(context.Background(), Query{Keywords: []string{"x"}})
			assert.Error(t, err)
		})
	}
}

func TestParseChemRxivTime(t *testing.T) {
	want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, parseChemRxivTime("2025-04-01").Equal(want))
	assert.True(t, parseChemRxivTime("2025-04-01T00:00:00Z").Equal(want))
	assert.True(t, parseChemRxivTime("").IsZero())
	assert.True(t, parseChemRxivTime("yesterday").IsZero())
}
