// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoClassification is returned when a response has neither a
// classification line nor a tags line.
var ErrNoClassification = errors.New("no classification in response")

// minTags is the tag count below which FallbackTags supplies a bundle.
const minTags = 3

// Classification is the parsed answer to the classification prompt.
type Classification struct {
	Field string
	Tags  []string
}

var (
	classificationLabels = []string{"분류:", "classification:"}
	tagLabels            = []string{"태그:", "tags:"}
)

// fallbackRules are checked in order; the first whose keyword appears in the
// classification supplies the tags.
var fallbackRules = []struct {
	keywords []string
	tags     []string
}{
	{
		keywords: []string{"수중", "underwater"},
		tags:     []string{"Underwater Vision", "Object Detection", "Spiking Neural Networks", "Energy Efficiency", "Computer Vision"},
	},
	{
		keywords: []string{"컴퓨터 비전", "computer vision", "vision"},
		tags:     []string{"Computer Vision", "Object Detection", "Deep Learning", "Image Processing", "Neural Networks"},
	},
	{
		keywords: []string{"인공지능", "강화학습", "artificial intelligence", "reinforcement learning"},
		tags:     []string{"Artificial Intelligence", "Machine Learning", "Neural Networks", "Reinforcement Learning", "Deep Learning"},
	},
}

// blockedTag matches infrastructure words that never make useful paper tags.
var blockedTag = regexp.MustCompile(`(?i)\b(backend|api|server|database)\b`)

// ParseClassification reads the labelled classification and tag lines from
// a model response. Labels may be Korean or English, wrapped in markdown bold
// markers, and values may be bracketed. Fewer than three tags triggers
// FallbackTags; blocked tags are removed afterwards and the result is
// deduplicated case-insensitively.
func ParseClassification(resp string) (Classification, error) {
	var c Classification
	var found bool
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}
		if v, ok := cutLabel(line, classificationLabels); ok {
			c.Field = strings.TrimSpace(strings.Trim(v, "[] "))
			found = true
			continue
		}
		if v, ok := cutLabel(line, tagLabels); ok {
			c.Tags = splitTags(v)
			found = true
		}
	}
	if !found {
		return Classification{}, ErrNoClassification
	}

	if len(c.Tags) < minTags {
		if fb := FallbackTags(c.Field); fb != nil {
			c.Tags = fb
		}
	}
	c.Tags = dedupe(FilterBlocked(c.Tags))
	return c, nil
}

func cutLabel(line string, labels []string) (string, bool) {
	lower := strings.ToLower(line)
	for _, l := range labels {
		if strings.HasPrefix(lower, l) {
			return line[len(l):], true
		}
	}
	return "", false
}

func splitTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(strings.Trim(strings.TrimSpace(part), "[]"))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// FallbackTags returns the fixed tag bundle for a classification, or nil
// when no rule matches. Matching is case-insensitive.
func FallbackTags(classification string) []string {
	lower := strings.ToLower(classification)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return append([]string(nil), rule.tags...)
			}
		}
	}
	return nil
}

// FilterBlocked drops tags containing an infrastructure word as a whole word.
func FilterBlocked(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !blockedTag.MatchString(t) {
			out = append(out, t)
		}
	}
	return out
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
