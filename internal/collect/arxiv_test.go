// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/daily-scholar/internal/httputil"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

const sampleArxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title>arXiv Query</title>
  <id>http://arxiv.org/api/abc</id>
  <updated>2025-04-02T00:00:00-04:00</updated>
  <entry>
    <id>http://arxiv.org/abs/2504.01234v2</id>
    <updated>2025-04-01T20:00:00Z</updated>
    <published>2025-04-01T17:30:00Z</published>
    <title>Energy-Efficient Spiking
      Detectors</title>
    <summary>  We propose a spiking
  neural network detector.  </summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <link href="http://arxiv.org/abs/2504.01234v2" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2504.01234v2" rel="related" type="application/pdf"/>
    <arxiv:primary_category term="cs.CV" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.CV" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.NE" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/cs/0101001v1</id>
    <updated>2001-01-01T00:00:00Z</updated>
    <published>2001-01-01T00:00:00Z</published>
    <title>An Old-Style Identifier</title>
    <summary>Legacy.</summary>
    <author><name>Grace Hopper</name></author>
    <link href="http://arxiv.org/abs/cs/0101001v1" rel="alternate" type="text/html"/>
    <category term="cs.AI" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
</feed>`

func withArxivServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	old := arxivAPIBase
	arxivAPIBase = ts.URL
	t.Cleanup(func() {
		arxivAPIBase = old
		ts.Close()
	})
	return ts
}

func TestArxivSourceFetch(t *testing.T) {
	var gotQuery map[string]string
	ts := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"search_query": q.Get("search_query"),
			"max_results":  q.Get("max_results"),
			"sortBy":       q.Get("sortBy"),
			"sortOrder":    q.Get("sortOrder"),
			"ua":           r.Header.Get("User-Agent"),
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, sampleArxivFeed)
	})

	s := &ArxivSource{Client: ts.Client(), UserAgent: "daily-scholar/test"}
	papers, err := s.Fetch(context.Background(), Query{Categories: []string{"cs.CV", "cs.AI"}, MaxResults: 25})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	want := map[string]string{
		"search_query": "(cat:cs.CV OR cat:cs.AI)",
		"max_results":  "25",
		"sortBy":       "submittedDate",
		"sortOrder":    "descending",
		"ua":           "daily-scholar/test",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("%s = %q, want %q", k, gotQuery[k], v)
		}
	}

	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	p := papers[0]
	if p.ID != "2504.01234" {
		t.Errorf("ID = %q, want version stripped", p.ID)
	}
	if p.Title != "Energy-Efficient Spiking Detectors" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Abstract != "We propose a spiking neural network detector." {
		t.Errorf("Abstract = %q", p.Abstract)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Ada Lovelace" || p.Authors[1] != "Alan Turing" {
		t.Errorf("Authors = %v", p.Authors)
	}
	if len(p.Categories) != 2 || p.Categories[0] != "cs.CV" || p.Categories[1] != "cs.NE" {
		t.Errorf("Categories = %v", p.Categories)
	}
	if !p.Submitted.Equal(time.Date(2025, 4, 1, 17, 30, 0, 0, time.UTC)) {
		t.Errorf("Submitted = %v", p.Submitted)
	}
	if !p.Updated.Equal(time.Date(2025, 4, 1, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("Updated = %v", p.Updated)
	}
	if !strings.Contains(p.PDFURL, "arxiv.org/pdf/2504.01234") {
		t.Errorf("PDFURL = %q", p.PDFURL)
	}
	if !strings.Contains(p.HTMLURL, "arxiv.org/abs/2504.01234") {
		t.Errorf("HTMLURL = %q", p.HTMLURL)
	}
	if p.Source != types.SourceArxiv {
		t.Errorf("Source = %q", p.Source)
	}

	if papers[1].ID != "cs/0101001" {
		t.Errorf("old-style ID = %q, want cs/0101001", papers[1].ID)
	}
}

func TestArxivSourceHTTPError(t *testing.T) {
	ts := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	s := &ArxivSource{Client: ts.Client()}
	if _, err := s.Fetch(context.Background(), Query{Categories: []string{"cs.AI"}}); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestArxivSourceRetriesRateLimit(t *testing.T) {
	calls := 0
	ts := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, sampleArxivFeed)
	})

	s := &ArxivSource{Client: ts.Client()}
	papers, err := s.Fetch(context.Background(), Query{Categories: []string{"cs.AI"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls != 2 || len(papers) != 2 {
		t.Errorf("calls = %d, papers = %d; want 2, 2", calls, len(papers))
	}
}

func TestArxivSourceMalformedFeed(t *testing.T) {
	ts := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	})

	s := &ArxivSource{Client: ts.Client()}
	if _, err := s.Fetch(context.Background(), Query{Categories: []string{"cs.AI"}}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestArxivSourceEmptyQuery(t *testing.T) {
	s := &ArxivSource{}
	if _, err := s.Fetch(context.Background(), Query{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"single category", Query{Categories: []string{"cs.AI"}}, "cat:cs.AI"},
		{"categories ORed", Query{Categories: []string{"cs.AI", "cs.LG"}}, "(cat:cs.AI OR cat:cs.LG)"},
		{"keywords only", Query{Keywords: []string{"diffusion"}}, "all:diffusion"},
		{
			"categories and keywords",
			Query{Categories: []string{"cs.CV"}, Keywords: []string{"underwater", "object detection"}},
			`cat:cs.CV AND (all:underwater OR all:"object detection")`,
		},
		{"blank entries ignored", Query{Categories: []string{" "}, Keywords: []string{""}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildArxivQuery(tt.q); got != tt.want {
				t.Errorf("buildArxivQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041v12", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/hep-th/9901001v3", "hep-th/9901001"},
		{"http://arxiv.org/abs/cs/0101001v1", "cs/0101001"},
		{"http://arxiv.org/abs/solv-int/9901001", "solv-int/9901001"},
		{"https://arxiv.org/pdf/2301.07041v2.pdf", "2301.07041"},
		{"https://arxiv.org/abs/2301.07041v2?context=cs", "2301.07041"},
		{"http://arxiv.org/api/errors#incorrect_id", ""},
	}
	for _, tt := range tests {
		if got := extractArxivID(tt.in); got != tt.want {
			t.Errorf("extractArxivID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
