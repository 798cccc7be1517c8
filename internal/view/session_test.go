package view

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/kds-visual/internal/observability"
	"github.com/ziadkadry99/kds-visual/internal/render"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

const scenarioDoc = `{"name":"Life","tree":{"branch_length":0,"children":[
	{"children":[{"name":"Mammalia","branch_length":1,"children":[
		{"name":"Panthera_tigris_sumatrae","branch_length":2},
		{"name":"Pongo_pygmaeus","branch_length":2}]}]},
	{"children":[{"name":"Aves","branch_length":1,"children":[
		{"name":"Cacatua_sulphurea","branch_length":1}]}]}]}}`

func writeDoc(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func setupCache(t *testing.T) *taxonomy.Cache {
	t.Helper()
	dir := t.TempDir()
	writeDoc(t, dir, "life.json", scenarioDoc)
	return taxonomy.NewCache(filepath.Join(dir, "*.json"), observability.Discard())
}

func newTestSession(t *testing.T, cache *taxonomy.Cache) *Session {
	t.Helper()
	s := NewSession(cache, Options{
		Debounce: 10 * time.Millisecond,
		Logger:   observability.Discard(),
		Metrics:  observability.NewMetrics(),
	})
	t.Cleanup(s.Close)
	return s
}

func TestSessionAwaitsSizeBeforeLayout(t *testing.T) {
	s := newTestSession(t, setupCache(t))
	assert.Equal(t, StateLoading, s.Snapshot().State)

	require.NoError(t, s.Load(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, StateAwaitingSize, snap.State)
	assert.Nil(t, snap.Scene)
	assert.Empty(t, snap.Error)

	snap = s.ResizeNow(800, 600)
	assert.Equal(t, StateReady, snap.State)
	require.NotNil(t, snap.Scene)
	assert.Len(t, snap.Scene.Nodes, 6)

	snap = s.ResizeNow(0, 600)
	assert.Equal(t, StateAwaitingSize, snap.State)
	assert.Nil(t, snap.Scene, "no rendering with a degenerate viewport")
}

func TestSessionKeepsTargetAcrossResize(t *testing.T) {
	s := newTestSession(t, setupCache(t))
	s.ResizeNow(1200, 700)
	s.SetTarget("panthera tigris sumatrae")
	require.NoError(t, s.Load(context.Background()))

	snap := s.Snapshot()
	require.Equal(t, StateReady, snap.State)
	assert.Equal(t, "Panthera tigris sumatrae", snap.Target)

	wide := snap.Scene
	snap = s.ResizeNow(300, 700)
	assert.Equal(t, "Panthera tigris sumatrae", snap.Scene.Target)
	assert.True(t, snap.Scene.Compact)
	assert.Less(t, snap.Scene.Extent.Width, wide.Extent.Width)
	assert.Len(t, snap.Scene.Nodes, len(wide.Nodes), "scene is replaced, not appended to")
}

func TestSessionRerenderIsIdempotent(t *testing.T) {
	s := newTestSession(t, setupCache(t))
	s.ResizeNow(800, 600)
	require.NoError(t, s.Load(context.Background()))

	first := s.SetTarget("Aves")
	second := s.SetTarget("Aves")
	assert.Equal(t, first.Scene, second.Scene)
	assert.Greater(t, second.Generation, first.Generation)
}

func TestSessionNoMatch(t *testing.T) {
	s := newTestSession(t, setupCache(t))
	s.ResizeNow(800, 600)
	require.NoError(t, s.Load(context.Background()))

	snap := s.SetTarget("Nonexistent species")
	assert.Equal(t, StateReady, snap.State)
	assert.Empty(t, snap.Target)
	assert.NotEmpty(t, snap.Message)
	assert.Empty(t, snap.Scene.Path)
}

func TestSessionZoomCommands(t *testing.T) {
	s := newTestSession(t, setupCache(t))

	_, err := s.Apply(render.Action{Kind: render.ActionZoomIn})
	assert.Error(t, err, "nothing to zoom before the first render")

	s.ResizeNow(800, 600)
	require.NoError(t, s.Load(context.Background()))
	initial := s.Snapshot().Scene.Transform
	nodes := s.Snapshot().Scene.Nodes

	snap, err := s.Apply(render.Action{Kind: render.ActionZoomIn})
	require.NoError(t, err)
	assert.InDelta(t, initial.K*render.ZoomStep, snap.Scene.Transform.K, 1e-9)
	assert.Equal(t, snap.Scene.Transform.Percent(), snap.Scene.Zoom)
	assert.Equal(t, nodes, snap.Scene.Nodes, "zoom never moves layout positions")

	for i := 0; i < 50; i++ {
		snap, err = s.Apply(render.Action{Kind: render.ActionZoomIn})
		require.NoError(t, err)
	}
	assert.Equal(t, render.FreeZoom.Max, snap.Scene.Transform.K)

	snap, err = s.Apply(render.Action{Kind: render.ActionReset})
	require.NoError(t, err)
	assert.Equal(t, initial, snap.Scene.Transform)

	_, err = s.Apply(render.Action{Kind: "twirl"})
	assert.Error(t, err)
}

func TestSessionDebouncedResizeLastWins(t *testing.T) {
	s := newTestSession(t, setupCache(t))
	require.NoError(t, s.Load(context.Background()))

	var mu sync.Mutex
	var ready []Snapshot
	s.Subscribe(func(snap Snapshot) {
		if snap.State == StateReady {
			mu.Lock()
			ready = append(ready, snap)
			mu.Unlock()
		}
	})

	for w := 300.0; w <= 1000; w += 100 {
		s.Resize(w, 600)
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ready) > 0
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ready, 1, "a burst of resizes lays out once")
	assert.Equal(t, 1000.0, ready[0].Width)
}

func TestSessionResizeNowSupersedesPendingResize(t *testing.T) {
	s := newTestSession(t, setupCache(t))
	require.NoError(t, s.Load(context.Background()))

	s.Resize(300, 600)
	s.ResizeNow(900, 600)
	time.Sleep(60 * time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, 900.0, snap.Width, "stale debounced resize was dropped")
}

func TestSessionLoadErrorAndRetry(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "life.json", `{"name":`)
	cache := taxonomy.NewCache(filepath.Join(dir, "*.json"), observability.Discard())

	s := newTestSession(t, cache)
	s.ResizeNow(800, 600)

	err := s.Load(context.Background())
	require.Error(t, err)
	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.True(t, snap.Retry)
	assert.NotEmpty(t, snap.Error)

	require.NoError(t, os.WriteFile(path, []byte(scenarioDoc), 0o644))
	require.NoError(t, s.Retry(context.Background()))
	snap = s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.False(t, snap.Retry)
	assert.Empty(t, snap.Error)
}

func TestSessionSubscribeAndClose(t *testing.T) {
	s := newTestSession(t, setupCache(t))

	var got []State
	cancel := s.Subscribe(func(snap Snapshot) { got = append(got, snap.State) })
	require.NoError(t, s.Load(context.Background()))
	s.ResizeNow(640, 480)
	assert.Equal(t, []State{StateLoading, StateAwaitingSize, StateReady}, got)

	cancel()
	s.ResizeNow(700, 480)
	assert.Len(t, got, 3)

	s.Close()
	s.Close()
}
