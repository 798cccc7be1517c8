package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/kds-visual/internal/highlight"
	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/render"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

// Handler serves the tree endpoints. Stateless endpoints compute from query
// parameters; /ws/tree opens a Session per connection.
type Handler struct {
	cache *taxonomy.Cache
	opts  Options
}

// NewHandler creates the tree endpoints over cache. opts are the defaults for
// every request and session.
func NewHandler(cache *taxonomy.Cache, opts Options) *Handler {
	if opts.Extent == (render.ScaleExtent{}) {
		opts.Extent = render.FreeZoom
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{cache: cache, opts: opts}
}

// RegisterRoutes mounts the tree endpoints on the given router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/api/tree", h.treeHandler())
	r.Get("/api/tree/documents", h.documentsHandler())
	r.Get("/api/tree/layout", h.layoutHandler())
	r.Get("/api/tree/highlight", h.highlightHandler())
	r.Get("/api/tree/scene", h.sceneHandler())
	r.Get("/api/tree/svg", h.svgHandler())
	r.Post("/api/tree/transform", h.transformHandler())
	r.Get("/tree", h.chartHandler())
	r.Get("/ws/tree", h.handleWebSocket)
}

type treeResponse struct {
	Document string              `json:"document,omitempty"`
	Root     *taxonomy.TaxonNode `json:"root"`
	Nodes    int                 `json:"nodes"`
	Leaves   int                 `json:"leaves"`
	Depth    int                 `json:"depth"`
	Warnings []taxonomy.Warning  `json:"warnings,omitempty"`
}

type highlightResponse struct {
	highlight.Set
	Matched bool   `json:"matched"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	State State  `json:"state"`
	Error string `json:"error"`
	Retry bool   `json:"retry,omitempty"`
}

type transformRequest struct {
	Document  string            `json:"document"`
	Width     float64           `json:"width"`
	Height    float64           `json:"height"`
	Transform *render.Transform `json:"transform"`
	Action    render.Action     `json:"action"`
}

func (h *Handler) treeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc := r.URL.Query().Get("doc")
		tree, err := h.cache.Get(r.Context(), doc)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, treeResponse{
			Document: doc,
			Root:     tree.Root,
			Nodes:    tree.NodeCount(),
			Leaves:   tree.LeafCount(),
			Depth:    tree.Depth(),
			Warnings: tree.Warnings(),
		})
	}
}

func (h *Handler) documentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := h.cache.Documents()
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

func (h *Handler) layoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, res, err := h.computeLayout(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.opts.Metrics.Rendered("layout")
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handler) highlightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := h.cache.Get(r.Context(), r.URL.Query().Get("doc"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		hl := highlight.Find(tree, r.URL.Query().Get("target"))
		writeJSON(w, http.StatusOK, highlightResponse{Set: hl, Matched: hl.Matched(), Message: hl.Message()})
	}
}

func (h *Handler) sceneHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scene, err := h.computeScene(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.opts.Metrics.Rendered("scene")
		writeJSON(w, http.StatusOK, scene)
	}
}

func (h *Handler) svgHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scene, err := h.computeScene(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		animate, _ := strconv.ParseBool(r.URL.Query().Get("animate"))
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := render.WriteSVG(w, scene, render.SVGOptions{Animate: animate, Title: scene.Target}); err != nil {
			h.opts.Logger.Error("svg write failed", "error", err)
			return
		}
		h.opts.Metrics.Rendered("svg")
	}
}

func (h *Handler) transformHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transformRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		tree, err := h.cache.Get(r.Context(), req.Document)
		if err != nil {
			h.writeError(w, err)
			return
		}
		res, err := layout.Compute(tree, req.Width, req.Height, h.opts.Layout)
		if err != nil {
			h.writeError(w, err)
			return
		}
		ctrl := render.NewController(h.opts.Extent)
		ctrl.Attach(res)
		if req.Transform != nil {
			if _, err := ctrl.Apply(render.Action{Kind: render.ActionSet, Transform: req.Transform}); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		t, err := ctrl.Apply(req.Action)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"transform":    t,
			"zoom_percent": t.Percent(),
			"svg":          t.String(),
		})
	}
}

func (h *Handler) chartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		tree, err := h.cache.Get(r.Context(), q.Get("doc"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		hl := highlight.Find(tree, q.Get("target"))
		width, _ := strconv.ParseFloat(q.Get("width"), 64)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = render.WriteChart(w, tree, hl, render.ChartOptions{
			Title:   "Phylogenetic tree: " + tree.Root.Name,
			Compact: width > 0 && width < h.layoutConfig().CompactWidth,
			Palette: h.opts.Render.Palette,
		})
		if err != nil {
			h.opts.Logger.Error("chart write failed", "error", err)
			return
		}
		h.opts.Metrics.Rendered("chart")
	}
}

func (h *Handler) computeLayout(r *http.Request) (*taxonomy.CanonicalTree, *layout.Result, error) {
	q := r.URL.Query()
	width, err := parseDimension(q.Get("width"))
	if err != nil {
		return nil, nil, err
	}
	height, err := parseDimension(q.Get("height"))
	if err != nil {
		return nil, nil, err
	}
	cfg := h.opts.Layout
	if m := q.Get("mode"); m != "" {
		if cfg.DepthMode, err = layout.ParseDepthMode(m); err != nil {
			return nil, nil, badRequest{err}
		}
	}

	tree, err := h.cache.Get(r.Context(), q.Get("doc"))
	if err != nil {
		return nil, nil, err
	}
	res, err := layout.Compute(tree, width, height, cfg)
	if err != nil {
		return nil, nil, err
	}
	return tree, res, nil
}

func (h *Handler) computeScene(r *http.Request) (*render.Scene, error) {
	tree, res, err := h.computeLayout(r)
	if err != nil {
		return nil, err
	}
	hl := highlight.Find(tree, r.URL.Query().Get("target"))
	return h.opts.Render.Render(res, hl, render.ResetTransform(res)), nil
}

func (h *Handler) layoutConfig() layout.Config {
	cfg := h.opts.Layout
	if cfg.CompactWidth <= 0 {
		cfg.CompactWidth = layout.DefaultConfig().CompactWidth
	}
	return cfg
}

type badRequest struct{ error }

func parseDimension(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, badRequest{fmt.Errorf("invalid dimension %q", s)}
	}
	return v, nil
}

// writeError maps pipeline errors onto HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var loadErr *taxonomy.DataLoadError
	var bad badRequest
	switch {
	case errors.As(err, &loadErr):
		h.opts.Metrics.LoadFailed()
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{State: StateError, Error: err.Error(), Retry: true})
	case errors.Is(err, layout.ErrDegenerateViewport):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{State: StateAwaitingSize, Error: err.Error()})
	case errors.As(err, &bad):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
