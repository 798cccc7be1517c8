// Package observability builds the structured logger and the Prometheus
// metrics shared by the server, the CLI and view sessions.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	attrService = "service"
	attrVersion = "version"
)

// LogOptions select the handler and level of the process logger.
type LogOptions struct {
	Level   string // debug, info, warn, error
	Format  string // text or json
	Service string
	Version string
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewLogger creates the process logger writing to w.
func NewLogger(w io.Writer, o LogOptions) (*slog.Logger, error) {
	level, err := ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(o.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, hopts)
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		return nil, fmt.Errorf("unknown log format %q", o.Format)
	}
	if o.Service != "" {
		h = NewServiceHandler(h, o.Service, o.Version)
	}
	return slog.New(h), nil
}

// ServiceHandler is an [slog.Handler] that stamps service metadata on every
// record. The attributes are attached to the inner handler up front so they
// stay at the top level when groups are used.
type ServiceHandler struct {
	inner slog.Handler
}

// NewServiceHandler wraps inner with service and version attributes.
func NewServiceHandler(inner slog.Handler, service, version string) *ServiceHandler {
	attrs := []slog.Attr{slog.String(attrService, service)}
	if version != "" {
		attrs = append(attrs, slog.String(attrVersion, version))
	}
	return &ServiceHandler{inner: inner.WithAttrs(attrs)}
}

// Enabled delegates to the inner handler.
func (sh *ServiceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.inner.Enabled(ctx, level)
}

// Handle delegates to the inner handler.
func (sh *ServiceHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := sh.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("service handler: %w", err)
	}
	return nil
}

// WithAttrs returns a new ServiceHandler with additional attributes.
func (sh *ServiceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ServiceHandler{inner: sh.inner.WithAttrs(attrs)}
}

// WithGroup returns a new ServiceHandler with a group prefix.
func (sh *ServiceHandler) WithGroup(name string) slog.Handler {
	return &ServiceHandler{inner: sh.inner.WithGroup(name)}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}
