// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"html/template"
	"time"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// Templates are parsed at init time to fail fast on template errors.
var (
	reportTemplate = template.Must(template.New("report").Parse(reportHTML))
	emailTemplate  = template.Must(template.New("email").Parse(emailHTML))
)

func renderTemplate(t *template.Template, v view) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Subject returns the email subject for a report generated at now.
func Subject(now time.Time) string {
	return "Daily AI Paper Report - " + now.Format("2006-01-02")
}

// EmailBody renders the same content as the HTML report in a lighter layout
// suited to mail clients.
func EmailBody(ranked []types.ScoredPaper, analyses map[string]*types.AnalysisResult, generatedAt time.Time) ([]byte, error) {
	out, err := renderTemplate(emailTemplate, buildView(ranked, analyses, generatedAt))
	if err != nil {
		return nil, &RenderError{Op: "email", Err: err}
	}
	return out, nil
}

const reportHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>AI 논문 분석 보고서 {{.Date}}</title>
<style>
:root { --primary: #2c3e50; --accent: #3498db; --border: #e0e6ed; --bg: #f5f7fa; }
body { font-family: 'Noto Sans KR', -apple-system, 'Segoe UI', sans-serif; line-height: 1.7; color: #333; background: var(--bg); margin: 0; }
.container { max-width: 1100px; margin: 0 auto; padding: 30px; }
.header { background: var(--primary); color: white; padding: 30px; border-radius: 12px; margin-bottom: 30px; }
.header h1 { margin: 0 0 8px; font-size: 2.1em; }
.header p { margin: 0; opacity: 0.85; }
.paper { background: white; border: 1px solid var(--border); border-radius: 12px; padding: 28px; margin-bottom: 28px; transition: box-shadow 0.2s ease; }
.paper:hover { box-shadow: 0 6px 18px rgba(0,0,0,0.08); }
.rank { display: inline-block; background: var(--accent); color: white; border-radius: 50%; width: 2em; height: 2em; line-height: 2em; text-align: center; font-weight: 700; margin-right: 10px; }
.title { font-size: 1.4em; font-weight: 700; color: var(--primary); }
.meta { color: #777; font-size: 0.9em; margin: 8px 0 16px; }
.section { margin-top: 22px; }
.section h3 { color: var(--primary); border-bottom: 2px solid var(--border); padding-bottom: 6px; }
.classification { display: inline-block; background: var(--accent); color: white; padding: 4px 12px; border-radius: 14px; font-weight: 500; }
.tags { margin-top: 10px; }
.tag { display: inline-block; background: #eaf4fc; color: #1f6fa8; padding: 3px 10px; border-radius: 12px; margin: 3px; font-size: 0.9em; }
.tag:hover { background: #d4e9f9; }
.stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 14px; }
.stat-item { text-align: center; padding: 14px; background: var(--bg); border-radius: 10px; transition: transform 0.2s ease; }
.stat-item:hover { transform: translateY(-2px); }
.stat-label { font-size: 0.9em; color: #666; }
.stat-value { font-size: 1.4em; font-weight: 700; color: var(--primary); }
.translation-section { background: var(--bg); padding: 14px 18px; border-radius: 8px; }
.paper-link { display: inline-block; margin-top: 18px; padding: 8px 18px; background: var(--primary); color: white; border-radius: 6px; text-decoration: none; }
.paper-link:hover { background: var(--accent); }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>AI 논문 분석 보고서</h1>
<p>생성일: <span class="generated-at">{{.GeneratedAt}}</span> · 분석 논문 <span class="paper-count">{{len .Papers}}</span>편 / 순위 {{.Ranked}}편</p>
</div>
{{- range .Papers}}
<div class="paper" id="rank-{{.Rank}}">
<div><span class="rank">{{.Rank}}</span><span class="title">{{.Title}}</span></div>
<div class="meta">{{.Authors}}{{if .Published}} · {{.Published}}{{end}} · 점수 {{.Score}}</div>
<div class="section">
<h3>분류 및 태그</h3>
{{- if .Classification}}
<div class="classification">{{.Classification}}</div>
{{- end}}
<div class="tags">{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</div>
</div>
{{- if .Metrics}}
<div class="section">
<h3>주요 성능 지표</h3>
<div class="stats">{{range .Metrics}}<div class="stat-item"><div class="stat-label">{{.Label}}</div><div class="stat-value">{{.Value}}</div></div>{{end}}</div>
</div>
{{- end}}
<div class="section">
<h3>논문 설명</h3>
<div class="summary-section">{{.Summary}}</div>
</div>
<div class="section">
<h3>한국어 번역</h3>
<div class="translation-section">{{.Translation}}</div>
</div>
<a class="paper-link" href="{{.URL}}" target="_blank" rel="noopener">논문 보기</a>
</div>
{{- end}}
</div>
</body>
</html>
`

const emailHTML = `<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.paper { margin-bottom: 30px; padding: 20px; border: 1px solid #ddd; border-radius: 5px; }
.title { font-size: 1.2em; font-weight: bold; color: #2c3e50; margin-bottom: 10px; }
.classification { font-weight: bold; color: #1f6fa8; }
.tag { display: inline-block; background: #e1f5fe; padding: 3px 8px; border-radius: 12px; margin: 2px; font-size: 0.9em; }
.translation { margin: 10px 0; padding: 10px; background: #f5f5f5; }
.meta { font-size: 0.9em; color: #666; margin-top: 10px; }
</style>
</head>
<body>
<h1>Daily AI Paper Report</h1>
<p>Generated on: {{.GeneratedAt}}</p>
{{- range .Papers}}
<div class="paper">
<div class="title">{{.Rank}}. {{.Title}}</div>
{{- if .Classification}}
<div class="classification">{{.Classification}}</div>
{{- end}}
<div class="tags">{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</div>
{{- if .Metrics}}
<ul class="metrics">{{range .Metrics}}<li>{{.Label}}: {{.Value}}</li>{{end}}</ul>
{{- end}}
<div class="summary"><h3>Summary</h3>{{.Summary}}</div>
<div class="translation"><h3>Korean Translation</h3>{{.Translation}}</div>
<div class="meta">{{if .Published}}<p>Publication Date: {{.Published}}</p>{{end}}<p><a href="{{.URL}}">View Paper</a></p></div>
</div>
{{- end}}
</body>
</html>
`
