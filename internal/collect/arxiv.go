// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/daily-scholar/internal/httputil"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom API.
type ArxivSource struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return types.SourceArxiv }

// Fetch returns the newest submissions matching q, newest first.
func (s *ArxivSource) Fetch(ctx context.Context, q Query) ([]types.Paper, error) {
	sq := buildArxivQuery(q)
	if sq == "" {
		return nil, fmt.Errorf("empty arXiv query: configure categories or keywords")
	}

	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	params := url.Values{}
	params.Set("search_query", sq)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv feed: %w", err)
	}

	var papers []types.Paper
	for _, item := range feed.Items {
		if p, ok := arxivPaper(item); ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// arxivPaper maps one Atom entry to a Paper. Entries without an arXiv ID
// (such as the error entry the API returns for a bad query) are skipped.
func arxivPaper(item *gofeed.Item) (types.Paper, bool) {
	id := extractArxivID(item.GUID)
	if id == "" {
		id = extractArxivID(item.Link)
	}
	if id == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:         id,
		Title:      collapseSpace(item.Title),
		Abstract:   collapseSpace(item.Description),
		Categories: item.Categories,
		HTMLURL:    "https://arxiv.org/abs/" + id,
		Source:     types.SourceArxiv,
	}
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
	}
	if item.PublishedParsed != nil {
		p.Submitted = item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		p.Updated = item.UpdatedParsed.UTC()
	}
	p.PDFURL = "https://arxiv.org/pdf/" + id
	for _, link := range item.Links {
		if strings.Contains(link, "/pdf/") {
			p.PDFURL = link
			break
		}
	}
	if item.Link != "" && strings.Contains(item.Link, "/abs/") {
		p.HTMLURL = item.Link
	}
	return p, true
}

// buildArxivQuery ORs the category terms together and ANDs that block with
// the ORed keyword terms.
func buildArxivQuery(q Query) string {
	var cats, kws []string
	for _, c := range q.Categories {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, "cat:"+c)
		}
	}
	for _, kw := range q.Keywords {
		terms := strings.Fields(kw)
		switch len(terms) {
		case 0:
			continue
		case 1:
			kws = append(kws, "all:"+terms[0])
		default:
			kws = append(kws, `all:"`+strings.Join(terms, " ")+`"`)
		}
	}

	var blocks []string
	for _, b := range [][]string{cats, kws} {
		switch len(b) {
		case 0:
		case 1:
			blocks = append(blocks, b[0])
		default:
			blocks = append(blocks, "("+strings.Join(b, " OR ")+")")
		}
	}
	return strings.Join(blocks, " AND ")
}

// arxivIDPattern captures the ID in an abs or pdf link, old style
// ("hep-th/9901001") or new style ("2301.07041"), without the version.
var arxivIDPattern = regexp.MustCompile(`/(?:abs|pdf)/([^?#]+?)(?:v\d+)?(?:\.pdf)?(?:[?#].*)?$`)

// extractArxivID returns the version-less arXiv ID of an entry link, or ""
// when the link is not an abs or pdf URL.
func extractArxivID(link string) string {
	m := arxivIDPattern.FindStringSubmatch(strings.TrimSpace(link))
	if m == nil {
		return ""
	}
	return m[1]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
