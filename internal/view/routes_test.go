package view

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/kds-visual/internal/observability"
	"github.com/ziadkadry99/kds-visual/internal/render"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

func setupRouter(t *testing.T, cache *taxonomy.Cache) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(cache, Options{
		Logger:   observability.Discard(),
		Metrics:  observability.NewMetrics(),
		Debounce: 5 * time.Millisecond,
	}))
	return r
}

func get(t *testing.T, r http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestTreeEndpoint(t *testing.T) {
	r := setupRouter(t, setupCache(t))

	rec := get(t, r, "/api/tree")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Root   taxonomy.TaxonNode `json:"root"`
		Nodes  int                `json:"nodes"`
		Leaves int                `json:"leaves"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Life", resp.Root.Name)
	assert.Equal(t, 6, resp.Nodes)
	assert.Equal(t, 3, resp.Leaves)
	assert.Equal(t, "Panthera tigris sumatrae", resp.Root.Children[0].Children[0].Name)

	rec = get(t, r, "/api/tree/documents")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["life"]`, rec.Body.String())
}

func TestHighlightEndpoint(t *testing.T) {
	r := setupRouter(t, setupCache(t))

	rec := get(t, r, "/api/tree/highlight?target=panthera+tigris+sumatrae")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Target  string   `json:"target"`
		Path    []string `json:"path"`
		Matched bool     `json:"matched"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Matched)
	assert.Equal(t, "Panthera tigris sumatrae", resp.Target)
	assert.Equal(t, []string{"Life", "Mammalia", "Panthera tigris sumatrae"}, resp.Path)

	rec = get(t, r, "/api/tree/highlight?target=Nonexistent+species")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"matched":false`)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestLayoutEndpoint(t *testing.T) {
	r := setupRouter(t, setupCache(t))

	rec := get(t, r, "/api/tree/layout?width=1200&height=700&mode=cluster")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Extent struct{ Width, Height float64 } `json:"extent"`
		Mode   string                          `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cluster", resp.Mode)
	assert.InDelta(t, 1200*0.7*4, resp.Extent.Width, 1e-6)

	rec = get(t, r, "/api/tree/layout?width=0&height=700")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), string(StateAwaitingSize))

	rec = get(t, r, "/api/tree/layout?width=wide&height=700")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, r, "/api/tree/layout?width=800&height=700&mode=radial")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSceneAndSVGEndpoints(t *testing.T) {
	r := setupRouter(t, setupCache(t))

	rec := get(t, r, "/api/tree/scene?width=800&height=600&target=Aves")
	require.Equal(t, http.StatusOK, rec.Code)
	var scene render.Scene
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scene))
	assert.Equal(t, "Aves", scene.Target)
	assert.Len(t, scene.Nodes, 6)
	assert.Len(t, scene.Edges, 5)

	rec = get(t, r, "/api/tree/svg?width=800&height=600&target=Aves&animate=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
	assert.Contains(t, rec.Body.String(), "<animate")
}

func TestTransformEndpoint(t *testing.T) {
	r := setupRouter(t, setupCache(t))

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tree/transform", bytes.NewBufferString(body)))
		return rec
	}

	rec := post(`{"width":800,"height":600,"transform":{"x":0,"y":0,"k":9},"action":{"type":"zoom_in"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Transform render.Transform `json:"transform"`
		Zoom      int              `json:"zoom_percent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10.0, resp.Transform.K)
	assert.Equal(t, 1000, resp.Zoom)

	rec = post(`{"width":800,"height":600,"transform":{"x":5,"y":5,"k":3},"action":{"type":"reset"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1.0, resp.Transform.K)

	assert.Equal(t, http.StatusBadRequest, post(`{"width":800,"height":600,"action":{"type":"spin"}}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)
}

func TestChartEndpoint(t *testing.T) {
	r := setupRouter(t, setupCache(t))

	rec := get(t, r, "/tree?target=Pongo_pygmaeus")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Pongo pygmaeus")
}

func TestLoadFailureIsRetryable(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "broken.json", `{"name":`)
	r := setupRouter(t, taxonomy.NewCache(filepath.Join(dir, "*.json"), observability.Discard()))

	rec := get(t, r, "/api/tree")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StateError, resp.State)
	assert.True(t, resp.Retry)
}

func TestWebSocketSession(t *testing.T) {
	srv := httptest.NewServer(setupRouter(t, setupCache(t)))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tree?target=Aves"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() serverMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg serverMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}
	waitFor := func(state State) *Snapshot {
		t.Helper()
		for i := 0; i < 10; i++ {
			msg := read()
			if msg.Snapshot != nil && msg.Snapshot.State == state {
				return msg.Snapshot
			}
		}
		t.Fatalf("state %s never arrived", state)
		return nil
	}

	waitFor(StateAwaitingSize)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "resize_now", Width: 900, Height: 600}))
	snap := waitFor(StateReady)
	require.NotNil(t, snap.Scene)
	assert.Equal(t, "Aves", snap.Scene.Target)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "zoom_in"}))
	snap = waitFor(StateReady)
	assert.Equal(t, 130, snap.Scene.Zoom)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "select", Target: "Cacatua sulphurea"}))
	snap = waitFor(StateReady)
	assert.Equal(t, "Cacatua sulphurea", snap.Target)
	assert.Equal(t, 100, snap.Scene.Zoom, "re-render restores the initial framing")

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "dance"}))
	msg := read()
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "unknown message type")
}
