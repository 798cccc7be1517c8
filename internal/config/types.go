package config

import (
	"time"

	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/render"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = ".kdsvisual.yml"

// Config is the top-level kdsvisual configuration, corresponding to .kdsvisual.yml.
type Config struct {
	Server ServerConfig  `yaml:"server" koanf:"server"`
	Data   DataConfig    `yaml:"data" koanf:"data"`
	Layout layout.Config `yaml:"layout" koanf:"layout"`
	View   ViewConfig    `yaml:"view" koanf:"view"`
	Log    LogConfig     `yaml:"log" koanf:"log"`
	Atlas  AtlasConfig   `yaml:"atlas" koanf:"atlas"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port" koanf:"port"`
	CORSOrigins []string `yaml:"cors_origins" koanf:"cors_origins"`
}

// DataConfig locates the tree documents and the species database.
type DataConfig struct {
	TreePath string `yaml:"tree_path" koanf:"tree_path"` // doublestar glob
	Document string `yaml:"document" koanf:"document"`   // default document, empty for the first
	DBPath   string `yaml:"db_path" koanf:"db_path"`
}

// ViewConfig holds rendering and interaction settings.
type ViewConfig struct {
	Zoom      render.ScaleExtent `yaml:"zoom" koanf:"zoom"`
	Debounce  time.Duration      `yaml:"debounce" koanf:"debounce"`
	RevealCap time.Duration      `yaml:"reveal_cap" koanf:"reveal_cap"`
	Palette   render.Palette     `yaml:"palette" koanf:"palette"`
}

// RenderOptions returns the scene options for this view configuration.
func (v ViewConfig) RenderOptions() render.Options {
	return render.Options{Palette: v.Palette, RevealCap: v.RevealCap}
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"` // text or json
}

// AtlasConfig controls the static atlas export.
type AtlasConfig struct {
	OutputDir string  `yaml:"output_dir" koanf:"output_dir"`
	Width     float64 `yaml:"width" koanf:"width"`
	Height    float64 `yaml:"height" koanf:"height"`
}
