// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

const (
	// maxMetrics caps the headline statistics kept per paper.
	maxMetrics = 4
	// metricWindow is how many bytes after a keyword are searched for a value.
	metricWindow = 48
)

// metricKeywords maps lower-case keywords to the label they report under.
var metricKeywords = []struct {
	keyword string
	label   string
}{
	{"accuracy", "accuracy"},
	{"정확도", "accuracy"},
	{"precision", "precision"},
	{"정밀도", "precision"},
	{"recall", "recall"},
	{"재현율", "recall"},
	{"f1", "F1"},
	{"bleu", "BLEU"},
	{"parameters", "parameters"},
	{"파라미터", "parameters"},
	{"매개변수", "parameters"},
	{"energy", "energy"},
	{"에너지", "energy"},
	{"latency", "latency"},
	{"지연", "latency"},
	{"speedup", "speedup"},
	{"속도 향상", "speedup"},
	{"improvement", "improvement"},
	{"개선", "improvement"},
	{"향상", "improvement"},
	{"reduction", "reduction"},
	{"감소", "reduction"},
}

// metricValue matches a number carrying a unit, or a bare decimal.
var metricValue = regexp.MustCompile(`\d+(?:\.\d+)?\s?(?:%|×|배|ms|mJ|points?|포인트|[xX]\b|[MBK]\b)|\d+\.\d+`)

// ExtractMetrics pulls headline statistics out of an HTML summary. A value
// is the first percentage or measurement within a short window after a known
// metric keyword. Results are ordered by position, one per label, at most
// four.
func ExtractMetrics(summaryHTML string) []types.Metric {
	text := plainText(summaryHTML)
	lower := asciiLower(text)

	type hit struct {
		pos    int
		metric types.Metric
	}
	var hits []hit
	for _, mk := range metricKeywords {
		for from := 0; ; {
			i := strings.Index(lower[from:], mk.keyword)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(mk.keyword)
			from = end
			if partOfLongerKeyword(lower, start, mk.keyword) {
				continue
			}
			if v := metricValue.FindString(window(text, end)); v != "" {
				hits = append(hits, hit{start, types.Metric{Label: mk.label, Value: strings.TrimSpace(v)}})
				break
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var out []types.Metric
	seen := make(map[string]bool)
	for _, h := range hits {
		if seen[h.metric.Label] {
			continue
		}
		seen[h.metric.Label] = true
		out = append(out, h.metric)
		if len(out) == maxMetrics {
			break
		}
	}
	return out
}

// partOfLongerKeyword reports whether the keyword found at start is the tail
// or middle of a longer keyword, as "향상" is within "속도 향상".
func partOfLongerKeyword(lower string, start int, keyword string) bool {
	for _, mk := range metricKeywords {
		if len(mk.keyword) <= len(keyword) {
			continue
		}
		off := strings.Index(mk.keyword, keyword)
		if off < 0 || start < off {
			continue
		}
		if strings.HasPrefix(lower[start-off:], mk.keyword) {
			return true
		}
	}
	return false
}

// window returns up to metricWindow bytes of text starting at from, cut back
// to a rune boundary.
func window(text string, from int) string {
	end := from + metricWindow
	if end >= len(text) {
		return text[from:]
	}
	for end > from && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[from:end]
}

// asciiLower lower-cases ASCII letters only, so byte offsets into the result
// are valid in the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// plainText strips markup from an HTML fragment, keeping block and line
// breaks as newlines.
func plainText(fragment string) string {
	fragment = strings.ReplaceAll(fragment, "<br>", "\n")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	var parts []string
	doc.Find("p, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	if len(parts) == 0 {
		return doc.Text()
	}
	return strings.Join(parts, "\n")
}
