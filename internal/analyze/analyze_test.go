// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/daily-scholar/internal/llm"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

// fakeGenerator replays canned responses in call order and records requests.
type fakeGenerator struct {
	responses []string
	failAt    int // 1-based call that fails; 0 never fails
	err       error
	requests  []llm.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	n := len(f.requests)
	if f.failAt == n {
		return "", f.err
	}
	if n > len(f.responses) {
		return "", errors.New("unexpected call")
	}
	return f.responses[n-1], nil
}

var (
	testNow   = time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	testPaper = types.Paper{
		ID:        "2504.01234",
		Title:     "Energy-Efficient Spiking Detectors for Underwater Scenes",
		Abstract:  "We propose a spiking neural network detector for underwater imagery.",
		Submitted: time.Date(2025, 4, 1, 17, 30, 0, 0, time.UTC),
		Source:    types.SourceArxiv,
	}
	cannedResponses = []string{
		"분류: Vision\n태그: [cv], [detection], [nn]",
		"## 핵심 결과\n\n**SNN** 기반 탐지기는 정확도 78.8%를 달성합니다.\n에너지 소비는 크게 줄었습니다.",
		"본 논문은 <strong>스파이킹 신경망</strong>을 제안합니다.\n---\n번역 특징: 자연스러운 어조",
	}
)

func testConfig(t *testing.T) types.AnalyzerConfig {
	return types.AnalyzerConfig{
		AIConfig:       types.AIConfig{Model: "deepseek-chat"},
		ReasoningModel: "deepseek-reasoner",
		CacheDir:       filepath.Join(t.TempDir(), "cache"),
	}
}

func newTestAnalyzer(t *testing.T, gen TextGenerator, cfg types.AnalyzerConfig) *Analyzer {
	t.Helper()
	a, err := New(gen, cfg, DefaultPrompts(), nil)
	require.NoError(t, err)
	a.now = func() time.Time { return testNow }
	return a
}

func TestAnalyze(t *testing.T) {
	gen := &fakeGenerator{responses: cannedResponses}
	a := newTestAnalyzer(t, gen, testConfig(t))

	got, err := a.Analyze(context.Background(), testPaper)
	require.NoError(t, err)

	want := &types.AnalysisResult{
		PaperID:        testPaper.ID,
		Title:          testPaper.Title,
		Classification: "Vision",
		Tags:           []string{"cv", "detection", "nn"},
		Summary:        "<h2>핵심 결과</h2>\n<p><strong>SNN</strong> 기반 탐지기는 정확도 78.8%를 달성합니다.<br>에너지 소비는 크게 줄었습니다.</p>",
		Translation:    "<p>본 논문은 <strong>스파이킹 신경망</strong>을 제안합니다.</p>",
		Metrics:        []types.Metric{{Label: "accuracy", Value: "78.8%"}},
		SubmissionDate: "2025-04-01",
		AnalyzedAt:     testNow,
	}
	assert.Equal(t, want, got)

	require.Len(t, gen.requests, 3)
	assert.Equal(t, "deepseek-reasoner", gen.requests[0].Model, "classification")
	assert.Equal(t, "deepseek-reasoner", gen.requests[1].Model, "summary")
	assert.Equal(t, "deepseek-chat", gen.requests[2].Model, "translation")
	for _, req := range gen.requests {
		assert.Equal(t, defaultSystemPrompt, req.System)
		assert.Contains(t, req.Prompt, testPaper.Abstract)
	}
	assert.Contains(t, gen.requests[0].Prompt, testPaper.Title)
	assert.Contains(t, gen.requests[1].Prompt, testPaper.Title)

	assert.Equal(t, Stats{Hits: 0, Misses: 1}, a.Stats())
	assert.FileExists(t, filepath.Join(a.cache.Dir(), "2504.01234.json"))
}

func TestAnalyzeRepeatedCallHitsMemory(t *testing.T) {
	gen := &fakeGenerator{responses: cannedResponses}
	a := newTestAnalyzer(t, gen, testConfig(t))

	first, err := a.Analyze(context.Background(), testPaper)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), testPaper)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, gen.requests, 3, "second analyze makes no external calls")
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, a.Stats())
}

func TestAnalyzeDiskCacheSurvivesRestart(t *testing.T) {
	cfg := testConfig(t)
	first := newTestAnalyzer(t, &fakeGenerator{responses: cannedResponses}, cfg)
	want, err := first.Analyze(context.Background(), testPaper)
	require.NoError(t, err)

	gen := &fakeGenerator{}
	second := newTestAnalyzer(t, gen, cfg)
	assert.True(t, second.Cached(testPaper.ID))

	got, err := second.Analyze(context.Background(), testPaper)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Empty(t, gen.requests)
}

func TestAnalyzeMalformedCacheIsMiss(t *testing.T) {
	cfg := testConfig(t)
	gen := &fakeGenerator{responses: cannedResponses}
	a := newTestAnalyzer(t, gen, cfg)
	require.NoError(t, os.WriteFile(a.cache.Path(testPaper.ID), []byte("garbage"), 0o644))

	got, err := a.Analyze(context.Background(), testPaper)
	require.NoError(t, err)
	assert.Equal(t, "Vision", got.Classification)
	assert.Len(t, gen.requests, 3)
	assert.Equal(t, Stats{Misses: 1}, a.Stats())
}

func TestAnalyzeGenerationFailure(t *testing.T) {
	tests := []struct {
		name      string
		failAt    int
		wantStage string
	}{
		{"classification", 1, StageClassification},
		{"summary", 2, StageSummary},
		{"translation", 3, StageTranslation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boom := errors.New("503 from upstream")
			gen := &fakeGenerator{responses: cannedResponses, failAt: tt.failAt, err: boom}
			a := newTestAnalyzer(t, gen, testConfig(t))

			got, err := a.Analyze(context.Background(), testPaper)
			assert.Nil(t, got)

			var ae *AnalysisError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, testPaper.ID, ae.PaperID)
			assert.Equal(t, tt.wantStage, ae.Stage)
			assert.ErrorIs(t, err, boom)

			assert.False(t, a.Cached(testPaper.ID), "failures are not cached")
		})
	}
}

func TestAnalyzeUnparseableClassificationDegrades(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"I am not sure.", "요약", "번역"}}
	a := newTestAnalyzer(t, gen, testConfig(t))

	got, err := a.Analyze(context.Background(), testPaper)
	require.NoError(t, err)
	assert.Empty(t, got.Classification)
	assert.Empty(t, got.Tags)
	assert.Equal(t, "<p>요약</p>", got.Summary)
}

func TestAnalyzeBlockedTagsRemoved(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		"분류: Distributed Systems\n태그: Database API, Scheduling, Fault Tolerance, Consensus",
		"요약",
		"번역",
	}}
	a := newTestAnalyzer(t, gen, testConfig(t))

	got, err := a.Analyze(context.Background(), testPaper)
	require.NoError(t, err)
	assert.Equal(t, []string{"Scheduling", "Fault Tolerance", "Consensus"}, got.Tags)
}

func TestAnalyzeDelayHonorsContext(t *testing.T) {
	cfg := testConfig(t)
	cfg.RequestDelay = time.Hour
	gen := &fakeGenerator{responses: cannedResponses}
	a := newTestAnalyzer(t, gen, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.Analyze(ctx, testPaper)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, gen.requests, 1)
}

func TestAnalyzeUndatedPaper(t *testing.T) {
	p := testPaper
	p.Submitted = time.Time{}
	a := newTestAnalyzer(t, &fakeGenerator{responses: cannedResponses}, testConfig(t))

	got, err := a.Analyze(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, got.SubmissionDate)
}

func TestNewRejectsBadTemplate(t *testing.T) {
	prompts := DefaultPrompts()
	prompts.Summary = "{{.Title"
	_, err := New(&fakeGenerator{}, testConfig(t), prompts, nil)
	assert.ErrorContains(t, err, "summary prompt")
}

func TestNewRequiresGenerator(t *testing.T) {
	_, err := New(nil, testConfig(t), DefaultPrompts(), nil)
	assert.Error(t, err)
}
