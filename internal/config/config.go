package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/observability"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: KDS_LAYOUT__STRETCH -> layout.stretch.
const EnvPrefix = "KDS_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (KDS_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	if c.Data.TreePath == "" {
		return fmt.Errorf("data.tree_path is required")
	}
	if c.Data.DBPath == "" {
		return fmt.Errorf("data.db_path is required")
	}

	if c.Layout.DesiredLeafSeparation <= 0 {
		return fmt.Errorf("layout.leaf_separation must be positive")
	}
	if c.Layout.BranchStretchFactor <= 0 {
		return fmt.Errorf("layout.stretch must be positive")
	}
	if c.Layout.CompactWidth < 0 {
		return fmt.Errorf("layout.compact_width must be non-negative")
	}
	if _, err := layout.ParseDepthMode(string(c.Layout.DepthMode)); err != nil {
		return fmt.Errorf("layout.depth_mode: %w", err)
	}

	if err := c.View.Zoom.Validate(); err != nil {
		return fmt.Errorf("view.zoom: %w", err)
	}
	if c.View.Debounce < 0 {
		return fmt.Errorf("view.debounce must be non-negative")
	}
	if c.View.RevealCap < 0 {
		return fmt.Errorf("view.reveal_cap must be non-negative")
	}

	if _, err := observability.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}

	if c.Atlas.Width < 0 || c.Atlas.Height < 0 {
		return fmt.Errorf("atlas dimensions must be non-negative")
	}

	return nil
}

// LogOptions returns the logger options for this configuration.
func (c *Config) LogOptions(service, version string) observability.LogOptions {
	return observability.LogOptions{
		Level:   c.Log.Level,
		Format:  c.Log.Format,
		Service: service,
		Version: version,
	}
}
