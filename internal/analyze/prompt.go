// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"go.yaml.in/yaml/v3"
)

// defaultSystemPrompt frames every call to the text-generation API.
const defaultSystemPrompt = `You are a helpful AI assistant that analyzes academic papers.
When analyzing papers:
1. For classification, provide one main field and 5-8 tags
2. For summary, structure the content clearly with sections
3. For translation, maintain academic tone while being clear
Always format your response according to the specified format in the prompt.`

const defaultClassificationPrompt = `다음 논문의 분류와 태그를 분석해주세요.
분류는 가장 주요한 분야 하나만 선택하고, 태그는 5-8개 정도의 키워드를 추가해주세요.
태그는 다음 카테고리별로 선택해주세요:
1. 기술적 용어 (2-3개): 논문에서 사용된 핵심 기술이나 알고리즘
2. 실용적 용어 (2-3개): 실제 적용 분야나 사용 사례
3. 혁신적 용어 (1-2개): 논문의 주요 기여점이나 혁신적인 부분

제목: {{.Title}}
초록: {{.Abstract}}

분류와 태그를 다음과 같은 형식으로 반환해주세요:
분류: [분류]
태그: [태그1], [태그2], [태그3], ...
`

const defaultSummaryPrompt = `다음 논문의 내용을 일반 독자도 이해하기 쉽게 요약해주세요.
다음 구조로 작성해주세요:

[연구의 중요성과 배경]
• 이 연구가 필요한 이유
• 현재까지의 한계점
• 이 연구의 혁신적인 점

[주요 내용과 방법]
• 핵심 아이디어
• 구체적인 방법
• 주요 기술적 특징

[기대되는 효과와 기여점]
• 성능 향상 수치 (정량적 개선, 비교 결과)
• 실제 적용 가능성
• 미래 발전 방향

제목: {{.Title}}
초록: {{.Abstract}}

중요한 용어는 **용어**와 같이 굵게 표시하고, 구체적인 수치나 예시를 포함해주세요.
불필요한 마크다운 기호(#, -, * 등)는 사용하지 말고, 일반 텍스트로 작성해주세요.
`

const defaultTranslationPrompt = `다음은 논문 초록을 한국어로 번역하는 요구사항입니다:

1. 번역 대상: 다음 영문 초록을 한국어로 번역해주세요.
2. 번역 규칙:
   - 모든 전문 용어는 원문(영어)을 병기하고 <strong>태그로 강조 표시합니다.
   - 의미 단위로 개행해 가독성을 높입니다.
   - '-입니다' 체계를 유지하며 자연스러운 전문성을 확보합니다.
   - 핵심물질, 실험방법, 성능 지표 등은 <strong>태그로 굵게 표시해 시각적 강조를 적용합니다.

영문 초록:
{{.Abstract}}

한국어 번역:`

// Prompts holds the system prompt and the three analysis prompt templates.
// Templates are text/template sources over promptData.
type Prompts struct {
	System         string `yaml:"system"`
	Classification string `yaml:"classification"`
	Summary        string `yaml:"summary"`
	Translation    string `yaml:"translation"`
}

// DefaultPrompts returns the built-in prompts.
func DefaultPrompts() Prompts {
	return Prompts{
		System:         defaultSystemPrompt,
		Classification: defaultClassificationPrompt,
		Summary:        defaultSummaryPrompt,
		Translation:    defaultTranslationPrompt,
	}
}

// LoadPrompts reads a YAML prompts file and overlays its non-empty fields on
// DefaultPrompts. An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	p := DefaultPrompts()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("reading prompts file: %w", err)
	}
	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Prompts{}, fmt.Errorf("parsing prompts file %s: %w", path, err)
	}
	if override.System != "" {
		p.System = override.System
	}
	if override.Classification != "" {
		p.Classification = override.Classification
	}
	if override.Summary != "" {
		p.Summary = override.Summary
	}
	if override.Translation != "" {
		p.Translation = override.Translation
	}
	return p, nil
}

type promptData struct {
	Title    string
	Abstract string
}

// promptSet is Prompts with the templates parsed.
type promptSet struct {
	system         string
	classification *template.Template
	summary        *template.Template
	translation    *template.Template
}

func compilePrompts(p Prompts) (*promptSet, error) {
	set := &promptSet{system: p.System}
	for _, t := range []struct {
		name string
		src  string
		dst  **template.Template
	}{
		{"classification", p.Classification, &set.classification},
		{"summary", p.Summary, &set.summary},
		{"translation", p.Translation, &set.translation},
	} {
		tmpl, err := template.New(t.name).Option("missingkey=error").Parse(t.src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s prompt: %w", t.name, err)
		}
		*t.dst = tmpl
	}
	return set, nil
}

// renderPrompt executes tmpl with the paper's title and abstract.
func renderPrompt(tmpl *template.Template, title, abstract string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Title: title, Abstract: abstract}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
