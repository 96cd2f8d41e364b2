// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/daily-scholar/internal/httputil"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

// chemrxivAPIBase is the ChemRxiv public items endpoint. Package-level var
// for test substitution.
var chemrxivAPIBase = "https://chemrxiv.org/engage/chemrxiv/public-api/v1/items"

// chemrxivArticleBase prefixes a ChemRxiv item ID to form its landing page.
const chemrxivArticleBase = "https://chemrxiv.org/engage/chemrxiv/article-details/"

// ChemRxivArticleURL returns the landing page for a ChemRxiv item.
func ChemRxivArticleURL(id string) string { return chemrxivArticleBase + id }

// ChemRxivSource queries the ChemRxiv public API.
type ChemRxivSource struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the source identifier.
func (s *ChemRxivSource) Name() string { return types.SourceChemRxiv }

type chemrxivResponse struct {
	TotalCount int `json:"totalCount"`
	ItemHits   []struct {
		Item chemrxivItem `json:"item"`
	} `json:"itemHits"`
}

type chemrxivItem struct {
	ID       string `json:"id"`
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Authors  []struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"authors"`
	Categories []struct {
		Name string `json:"name"`
	} `json:"categories"`
	Subject *struct {
		Name string `json:"name"`
	} `json:"subject"`
	Keywords      []string `json:"keywords"`
	SubmittedDate string   `json:"submittedDate"`
	PublishedDate string   `json:"publishedDate"`
	StatusDate    string   `json:"statusDate"`
	Asset         *struct {
		Original struct {
			URL string `json:"url"`
		} `json:"original"`
	} `json:"asset"`
}

// Fetch searches ChemRxiv for the query keywords submitted since q.Since.
func (s *ChemRxivSource) Fetch(ctx context.Context, q Query) ([]types.Paper, error) {
	term := strings.TrimSpace(strings.Join(q.Keywords, " "))
	if term == "" {
		return nil, fmt.Errorf("ChemRxiv needs at least one keyword")
	}

	limit := q.MaxResults
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	params := url.Values{}
	params.Set("term", term)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "PUBLISHED_DATE_DESC")
	if !q.Since.IsZero() {
		params.Set("searchDateFrom", q.Since.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	if !q.Until.IsZero() {
		params.Set("searchDateTo", q.Until.UTC().Format("2006-01-02T15:04:05.000Z"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chemrxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("ChemRxiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ChemRxiv API returned HTTP %d", resp.StatusCode)
	}

	var cr chemrxivResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing ChemRxiv response: %w", err)
	}

	var papers []types.Paper
	for _, hit := range cr.ItemHits {
		if p, ok := chemrxivPaper(hit.Item); ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// chemrxivPaper maps one API item to a Paper. Items without an ID or title
// are skipped.
func chemrxivPaper(it chemrxivItem) (types.Paper, bool) {
	if it.ID == "" || strings.TrimSpace(it.Title) == "" {
		return types.Paper{}, false
	}
	p := types.Paper{
		ID:       it.ID,
		Title:    collapseSpace(it.Title),
		Abstract: collapseSpace(it.Abstract),
		HTMLURL:  ChemRxivArticleURL(it.ID),
		Source:   types.SourceChemRxiv,
		DOI:      it.DOI,
		Keywords: it.Keywords,
	}
	for _, a := range it.Authors {
		if name := strings.TrimSpace(a.FirstName + " " + a.LastName); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, c := range it.Categories {
		if c.Name != "" {
			p.Categories = append(p.Categories, c.Name)
		}
	}
	if it.Subject != nil {
		p.Subject = it.Subject.Name
	}
	if it.Asset != nil {
		p.PDFURL = it.Asset.Original.URL
	}

	submitted := it.SubmittedDate
	if submitted == "" {
		submitted = it.PublishedDate
	}
	p.Submitted = parseChemRxivTime(submitted)
	updated := it.StatusDate
	if updated == "" {
		updated = it.PublishedDate
	}
	p.Updated = parseChemRxivTime(updated)
	return p, true
}

func parseChemRxivTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", types.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
