package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/ziadkadry99/kds-visual/internal/config"
	"github.com/ziadkadry99/kds-visual/internal/db"
	"github.com/ziadkadry99/kds-visual/internal/observability"
	"github.com/ziadkadry99/kds-visual/internal/species"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
	"github.com/ziadkadry99/kds-visual/internal/view"
)

// loadConfig loads and validates the config, providing a user-friendly error.
// A missing file is not an error: the defaults apply.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `kdsvisual init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger on stderr. --verbose forces debug level.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	opts := cfg.LogOptions("kdsvisual", Version)
	if verbose {
		opts.Level = "debug"
	}
	logger, err := observability.NewLogger(os.Stderr, opts)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	slog.SetDefault(logger)
	return logger, nil
}

// openStore opens the species database named in the config.
func openStore(cfg *config.Config) (*db.DB, *species.Store, error) {
	database, err := db.Open(cfg.Data.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return database, species.NewStore(database), nil
}

func newCache(cfg *config.Config, logger *slog.Logger) *taxonomy.Cache {
	return taxonomy.NewCache(cfg.Data.TreePath, logger)
}

func viewOptions(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) view.Options {
	return view.Options{
		Document: cfg.Data.Document,
		Layout:   cfg.Layout,
		Render:   cfg.View.RenderOptions(),
		Extent:   cfg.View.Zoom,
		Debounce: cfg.View.Debounce,
		Metrics:  metrics,
		Logger:   logger,
	}
}

// warnf prints a highlighted warning to stderr.
func warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// successf prints a highlighted success line to stdout.
func successf(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(os.Stdout, format+"\n", args...)
}
