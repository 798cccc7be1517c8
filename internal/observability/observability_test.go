package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogOptions{Level: "debug", Format: "json", Service: "kdsvisual", Version: "1.2.3"})
	require.NoError(t, err)

	logger.WithGroup("layout").Debug("computed", "nodes", 12)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kdsvisual", rec["service"])
	assert.Equal(t, "1.2.3", rec["version"])
	assert.Equal(t, "computed", rec["msg"])
	assert.Equal(t, map[string]any{"nodes": float64(12)}, rec["layout"])
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LogOptions{Level: "warn"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewLogger(io.Discard, LogOptions{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(io.Discard, LogOptions{Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, "error": slog.LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()
	m.ObserveLayout(3 * time.Millisecond)
	m.ObserveLayout(5 * time.Millisecond)
	m.ObserveHighlight(OutcomeMatched)
	m.ObserveHighlight(OutcomeNoMatch)
	m.ObserveHighlight(OutcomeNoMatch)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.MalformedNodes(3)
	m.MalformedNodes(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.layoutRuns))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.highlights.WithLabelValues(OutcomeNoMatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.nodeWarnings))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kdsvisual_layout_runs_total 2")
	assert.Contains(t, rec.Body.String(), `kdsvisual_highlight_lookups_total{outcome="matched"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLayout(time.Second)
		m.LayoutDeferred()
		m.ObserveHighlight(OutcomeEmpty)
		m.Rendered("svg")
		m.LoadFailed()
		m.MalformedNodes(2)
		m.SessionOpened()
		m.SessionClosed()
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
