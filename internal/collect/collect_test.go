// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

type mockSource struct {
	name   string
	papers []types.Paper
	err    error
	calls  int
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Fetch(_ context.Context, _ Query) ([]types.Paper, error) {
	m.calls++
	return m.papers, m.err
}

var (
	windowStart = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
)

func paperAt(id string, submitted time.Time) types.Paper {
	return types.Paper{ID: id, Title: "Paper " + id, Submitted: submitted}
}

func TestCollect(t *testing.T) {
	inside := windowStart.Add(6 * time.Hour)
	arxiv := &mockSource{name: "arxiv", papers: []types.Paper{
		paperAt("a1", inside),
		paperAt("a2", windowStart.Add(-time.Minute)),
		paperAt("shared", inside),
		paperAt("a3", windowEnd),
		paperAt("undated", time.Time{}),
	}}
	chem := &mockSource{name: "chemrxiv", papers: []types.Paper{
		{ID: "shared", Title: "Second copy", Submitted: inside},
		paperAt("c1", windowStart),
		paperAt("", inside),
	}}

	out, err := Collect(context.Background(), []Source{arxiv, chem},
		Query{Since: windowStart, Until: windowEnd}, 0, nil)
	require.NoError(t, err)

	var ids []string
	for _, p := range out.Papers {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a1", "shared", "undated", "c1"}, ids)
	assert.Equal(t, "Paper shared", out.Papers[1].Title, "first occurrence wins")
	assert.Equal(t, 1, out.DupsRemoved)
	assert.Equal(t, 2, out.OutOfWindow)
	assert.Empty(t, out.SourceErrors)
}

func TestCollectSourceFailureDegrades(t *testing.T) {
	boom := errors.New("connection refused")
	bad := &mockSource{name: "chemrxiv", err: boom}
	good := &mockSource{name: "arxiv", papers: []types.Paper{paperAt("a1", windowStart)}}

	out, err := Collect(context.Background(), []Source{bad, good},
		Query{Since: windowStart, Until: windowEnd}, 0, nil)
	require.NoError(t, err)
	require.Len(t, out.Papers, 1)
	require.Len(t, out.SourceErrors, 1)

	cerr := out.SourceErrors[0]
	assert.Equal(t, "chemrxiv", cerr.Source)
	assert.ErrorIs(t, cerr, boom)
	assert.Equal(t, 1, good.calls)
}

func TestCollectAllSourcesFailIsEmptyNotError(t *testing.T) {
	bad := &mockSource{name: "arxiv", err: errors.New("down")}
	out, err := Collect(context.Background(), []Source{bad}, Query{}, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Papers)
	assert.Len(t, out.SourceErrors, 1)
}

func TestCollectNoSources(t *testing.T) {
	_, err := Collect(context.Background(), nil, Query{}, 0, nil)
	assert.Error(t, err)
}

func TestCollectDelayHonorsContext(t *testing.T) {
	first := &mockSource{name: "arxiv"}
	second := &mockSource{name: "chemrxiv"}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Collect(ctx, []Source{first, second}, Query{}, time.Hour, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestQueryFromConfig(t *testing.T) {
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	cfg := types.CollectorConfig{
		Categories: []string{"cs.AI"},
		Keywords:   []string{"agents"},
		MaxResults: 50,
	}
	q := QueryFromConfig(cfg, now)
	assert.Equal(t, now.AddDate(0, 0, -1), q.Since, "window defaults to one day")
	assert.Equal(t, now, q.Until)
	assert.Equal(t, 50, q.MaxResults)

	cfg.WindowDays = 7
	assert.Equal(t, now.AddDate(0, 0, -7), QueryFromConfig(cfg, now).Since)
}

func TestNewSources(t *testing.T) {
	srcs, err := NewSources(types.CollectorConfig{Sources: []string{"arxiv", " ChemRxiv "}})
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	assert.Equal(t, types.SourceArxiv, srcs[0].Name())
	assert.Equal(t, types.SourceChemRxiv, srcs[1].Name())

	_, err = NewSources(types.CollectorConfig{Sources: []string{"biorxiv"}})
	assert.ErrorContains(t, err, "biorxiv")

	_, err = NewSources(types.CollectorConfig{})
	assert.Error(t, err)
}
