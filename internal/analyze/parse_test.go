// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	visionBundle     = []string{"Computer Vision", "Object Detection", "Deep Learning", "Image Processing", "Neural Networks"}
	aiBundle         = []string{"Artificial Intelligence", "Machine Learning", "Neural Networks", "Reinforcement Learning", "Deep Learning"}
	underwaterBundle = []string{"Underwater Vision", "Object Detection", "Spiking Neural Networks", "Energy Efficiency", "Computer Vision"}
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name      string
		resp      string
		wantField string
		wantTags  []string
	}{
		{
			name:      "korean labels with brackets",
			resp:      "분류: Vision\n태그: [cv], [detection], [nn]",
			wantField: "Vision",
			wantTags:  []string{"cv", "detection", "nn"},
		},
		{
			name:      "english bold labels and surrounding chatter",
			resp:      "Here you go.\n\n  **Classification:** [Natural Language Processing]  \n**Tags:** LLM, Reasoning, Benchmarks, Evaluation\n",
			wantField: "Natural Language Processing",
			wantTags:  []string{"LLM", "Reasoning", "Benchmarks", "Evaluation"},
		},
		{
			name:      "few tags fall back to vision bundle",
			resp:      "분류: 컴퓨터 비전\n태그: [segmentation]",
			wantField: "컴퓨터 비전",
			wantTags:  visionBundle,
		},
		{
			name:      "underwater wins over vision",
			resp:      "분류: 수중 컴퓨터 비전\n태그: sonar",
			wantField: "수중 컴퓨터 비전",
			wantTags:  underwaterBundle,
		},
		{
			name:      "reinforcement learning bundle",
			resp:      "분류: 강화학습\n태그:",
			wantField: "강화학습",
			wantTags:  aiBundle,
		},
		{
			name:      "no rule keeps parsed tags",
			resp:      "분류: Chemistry\n태그: catalysis",
			wantField: "Chemistry",
			wantTags:  []string{"catalysis"},
		},
		{
			name:      "dedupe is case-insensitive and keeps first spelling",
			resp:      "분류: NLP\n태그: LLM, llm, Transformers, LLM",
			wantField: "NLP",
			wantTags:  []string{"LLM", "Transformers"},
		},
		{
			name:      "infrastructure tags removed as whole words",
			resp:      "분류: Systems\n태그: Database API, distributed training, Serverless, databases, Backend Server",
			wantField: "Systems",
			wantTags:  []string{"distributed training", "Serverless", "databases"},
		},
		{
			name:      "blocklist applies to fallback tags too",
			resp:      "Tags: [x]\nClassification: vision api server",
			wantField: "vision api server",
			wantTags:  visionBundle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClassification(tt.resp)
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, got.Field)
			assert.Equal(t, tt.wantTags, got.Tags)
		})
	}
}

func TestParseClassificationNoLabels(t *testing.T) {
	_, err := ParseClassification("I could not classify this paper.")
	assert.ErrorIs(t, err, ErrNoClassification)
}

func TestFallbackTags(t *testing.T) {
	assert.Nil(t, FallbackTags("Organic Chemistry"))
	assert.Equal(t, underwaterBundle, FallbackTags("Underwater robotics"))
	assert.Equal(t, aiBundle, FallbackTags("인공지능"))

	got := FallbackTags("Computer Vision")
	got[0] = "changed"
	assert.Equal(t, "Computer Vision", FallbackTags("vision")[0], "bundles are returned as copies")
}

func TestFilterBlocked(t *testing.T) {
	got := FilterBlocked([]string{"REST API", "apis", "Server-side rendering", "graph databases", "GNN"})
	assert.Equal(t, []string{"apis", "graph databases", "GNN"}, got)
}
