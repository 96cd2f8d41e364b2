// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	headingPattern = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)
	rulePattern    = regexp.MustCompile(`^-{3,}$`)
	blockquoteTags = strings.NewReplacer("<blockquote>", "", "</blockquote>", "")
	// strongTags restores the only markup the prompts ask the model for.
	strongTags = strings.NewReplacer("&lt;strong&gt;", "<strong>", "&lt;/strong&gt;", "</strong>")
)

// translationEchoes mark where a model starts repeating the translation
// prompt's instructions. Everything from the first marker on is dropped.
var translationEchoes = []string{"번역 규칙", "---", "번역 특징"}

// CleanResponse converts a markdown-flavoured model response into an HTML
// fragment. Headings become h2/h3, bold markers become strong, rule lines
// become hr, and blank-line-separated runs of text become paragraphs whose
// lines are joined with <br>. Any other markup in the response is escaped,
// so the fragment only ever carries p, br, h2, h3, strong and hr tags.
func CleanResponse(text string) string {
	text = blockquoteTags.Replace(text)

	var blocks []string
	var para []string
	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, "<p>"+strings.Join(para, "<br>")+"</p>")
			para = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), ">"))
		if line == "" {
			flush()
			continue
		}
		line = escapeLine(strings.Join(strings.Fields(line), " "))

		if rulePattern.MatchString(line) {
			flush()
			blocks = append(blocks, "<hr>")
			continue
		}
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flush()
			tag := "h2"
			if len(m[1]) == 3 {
				tag = "h3"
			}
			blocks = append(blocks, "<"+tag+">"+bold(m[2])+"</"+tag+">")
			continue
		}
		para = append(para, bold(line))
	}
	flush()
	return strings.Join(blocks, "\n")
}

func escapeLine(s string) string {
	return strongTags.Replace(html.EscapeString(s))
}

func bold(s string) string {
	return boldPattern.ReplaceAllString(s, "<strong>$1</strong>")
}

// trimTranslation removes any echo of the translation prompt's rules that
// follows the translated text.
func trimTranslation(text string) string {
	for _, marker := range translationEchoes {
		if before, _, found := strings.Cut(text, marker); found {
			text = before
		}
	}
	return strings.TrimSpace(text)
}
