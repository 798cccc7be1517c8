// Package view runs the tree pipeline for one viewer: it loads the canonical
// tree, re-lays it out on resize, re-highlights on target changes and keeps
// the pan/zoom transform.
package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"

	"github.com/ziadkadry99/kds-visual/internal/highlight"
	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/observability"
	"github.com/ziadkadry99/kds-visual/internal/render"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

// State is the lifecycle state of a session.
type State string

const (
	StateLoading      State = "loading"
	StateReady        State = "ready"
	StateError        State = "error"
	StateAwaitingSize State = "awaiting_size"
)

// DefaultDebounce is the quiet period before a streamed resize is applied.
const DefaultDebounce = 150 * time.Millisecond

// Options configure a session.
type Options struct {
	Document string
	Layout   layout.Config
	Render   render.Options
	Extent   render.ScaleExtent
	Debounce time.Duration
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Snapshot is an immutable view of a session, as sent to subscribers.
type Snapshot struct {
	SessionID  string        `json:"session_id"`
	State      State         `json:"state"`
	Error      string        `json:"error,omitempty"`
	Retry      bool          `json:"retry,omitempty"`
	Generation uint64        `json:"generation"`
	Target     string        `json:"target,omitempty"`
	Message    string        `json:"message,omitempty"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Scene      *render.Scene `json:"scene,omitempty"`
}

// Session is one viewer's pipeline state. Methods are safe for concurrent
// use: debounced resizes fire on a timer goroutine while commands arrive from
// the connection loop. Every pipeline run bumps the generation, and the
// latest run always wins.
type Session struct {
	ID string

	cache    *taxonomy.Cache
	opts     Options
	logger   *slog.Logger
	debounce func(func())

	mu         sync.Mutex
	state      State
	err        error
	tree       *taxonomy.CanonicalTree
	width      float64
	height     float64
	sizeSeq    uint64
	target     string
	hl         highlight.Set
	result     *layout.Result
	scene      *render.Scene
	ctrl       *render.Controller
	generation uint64
	subs       map[int]func(Snapshot)
	nextSub    int
	closed     bool
}

// NewSession creates a session in the loading state. Call Load to fetch the tree.
func NewSession(cache *taxonomy.Cache, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Extent == (render.ScaleExtent{}) {
		opts.Extent = render.FreeZoom
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	id := uuid.NewString()
	s := &Session{
		ID:       id,
		cache:    cache,
		opts:     opts,
		logger:   opts.Logger.With("session", id),
		debounce: debounce.New(opts.Debounce),
		state:    StateLoading,
		ctrl:     render.NewController(opts.Extent),
		subs:     make(map[int]func(Snapshot)),
	}
	opts.Metrics.SessionOpened()
	return s
}

// Load fetches the canonical tree and runs the pipeline. A load failure puts
// the session in the error state; Retry tries again.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.err = nil
	s.generation++
	s.publishLocked()

	tree, err := s.cache.Get(ctx, s.opts.Document)

	s.mu.Lock()
	if err != nil {
		s.state = StateError
		s.err = err
		s.generation++
		s.opts.Metrics.LoadFailed()
		s.logger.Error("tree load failed", "document", s.opts.Document, "error", err)
		s.publishLocked()
		return err
	}
	s.tree = tree
	s.opts.Metrics.MalformedNodes(len(tree.Warnings()))
	s.hl = s.lookup(s.target)
	s.runLocked()
	s.publishLocked()
	return nil
}

// Retry drops the cached document and loads it again.
func (s *Session) Retry(ctx context.Context) error {
	s.cache.Invalidate(s.opts.Document)
	return s.Load(ctx)
}

// Resize records a new container size and applies it after the debounce
// period. Only the last size of a burst is laid out.
func (s *Session) Resize(width, height float64) {
	s.mu.Lock()
	s.sizeSeq++
	seq := s.sizeSeq
	s.mu.Unlock()

	s.debounce(func() {
		s.mu.Lock()
		if s.closed || seq != s.sizeSeq {
			// a newer resize superseded this one
			s.mu.Unlock()
			return
		}
		s.width, s.height = width, height
		s.runLocked()
		s.publishLocked()
	})
}

// ResizeNow applies a container size immediately.
func (s *Session) ResizeNow(width, height float64) Snapshot {
	s.mu.Lock()
	s.sizeSeq++
	s.width, s.height = width, height
	s.runLocked()
	return s.publishLocked()
}

// SetTarget changes the highlighted species and re-renders.
func (s *Session) SetTarget(name string) Snapshot {
	s.mu.Lock()
	s.target = name
	s.hl = s.lookup(name)
	s.runLocked()
	return s.publishLocked()
}

// Apply runs a pan/zoom command. Layout positions are untouched; only the
// transform on the current scene changes.
func (s *Session) Apply(a render.Action) (Snapshot, error) {
	s.mu.Lock()
	if s.scene == nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, errors.New("no scene to transform yet")
	}
	t, err := s.ctrl.Apply(a)
	if err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	sc := *s.scene
	sc.Transform = t
	sc.Zoom = t.Percent()
	s.scene = &sc
	s.generation++
	return s.publishLocked(), nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Highlight returns the current highlight set.
func (s *Session) Highlight() highlight.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hl
}

// Layout returns the current layout, or nil before the first successful run.
func (s *Session) Layout() *layout.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Tree returns the loaded canonical tree, or nil while loading.
func (s *Session) Tree() *taxonomy.CanonicalTree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Subscribe registers fn to receive every new snapshot. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close stops delivering updates. Pending debounced resizes are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.subs = make(map[int]func(Snapshot))
	s.opts.Metrics.SessionClosed()
}

func (s *Session) lookup(name string) highlight.Set {
	hl := highlight.Find(s.tree, name)
	switch {
	case hl.Query == "":
		s.opts.Metrics.ObserveHighlight(observability.OutcomeEmpty)
	case hl.Matched():
		s.opts.Metrics.ObserveHighlight(observability.OutcomeMatched)
	default:
		s.opts.Metrics.ObserveHighlight(observability.OutcomeNoMatch)
		s.logger.Debug("target not in tree", "target", hl.Query)
	}
	return hl
}

// runLocked re-runs layout and render from scratch, replacing the previous
// scene. Caller holds s.mu.
func (s *Session) runLocked() {
	s.generation++
	if s.tree == nil {
		return
	}

	start := time.Now()
	res, err := layout.Compute(s.tree, s.width, s.height, s.opts.Layout)
	if err != nil {
		s.result, s.scene = nil, nil
		if errors.Is(err, layout.ErrDegenerateViewport) {
			s.state = StateAwaitingSize
			s.err = nil
			s.opts.Metrics.LayoutDeferred()
			return
		}
		s.state = StateError
		s.err = err
		s.logger.Error("layout failed", "error", err)
		return
	}

	s.result = res
	t := s.ctrl.Attach(res)
	s.scene = s.opts.Render.Render(res, s.hl, t)
	s.state = StateReady
	s.err = nil
	s.opts.Metrics.ObserveLayout(time.Since(start))
	s.logger.Debug("scene rendered",
		"generation", s.generation,
		"width", s.width, "height", s.height,
		"nodes", len(s.scene.Nodes), "target", s.hl.Target)
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:  s.ID,
		State:      s.state,
		Generation: s.generation,
		Target:     s.hl.Target,
		Message:    s.hl.Message(),
		Width:      s.width,
		Height:     s.height,
		Scene:      s.scene,
	}
	if s.err != nil {
		snap.Error = s.err.Error()
		var loadErr *taxonomy.DataLoadError
		snap.Retry = errors.As(s.err, &loadErr)
	}
	return snap
}

// publishLocked snapshots the state, releases s.mu and notifies subscribers.
func (s *Session) publishLocked() Snapshot {
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}
