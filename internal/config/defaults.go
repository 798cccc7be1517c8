package config

import (
	"time"

	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/render"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Data: DataConfig{
			TreePath: "data/*.json",
			DBPath:   ".kdsvisual/biodiversity.db",
		},
		Layout: layout.DefaultConfig(),
		View: ViewConfig{
			Zoom:      render.FreeZoom,
			Debounce:  150 * time.Millisecond,
			RevealCap: render.DefaultRevealCap,
			Palette:   render.DefaultPalette(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Atlas: AtlasConfig{
			OutputDir: "atlas",
			Width:     1200,
			Height:    800,
		},
	}
}

// zoomPresets maps wizard choices to scale extents.
var zoomPresets = map[string]render.ScaleExtent{
	"free":       render.FreeZoom,
	"simplified": render.SimplifiedZoom,
}
