package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kds-visual/internal/observability"
	"github.com/ziadkadry99/kds-visual/internal/server"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the tree viewer server",
	Long:  `Starts the kdsvisual HTTP server with the tree and species REST APIs, websocket view sessions, the interactive chart page and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		database, _, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		cache := newCache(cfg, logger)
		docs, err := discoverDocuments(cache, cfg.Data.TreePath)
		if err != nil {
			return err
		}

		metrics := observability.NewMetrics()
		srv := server.New(server.Config{
			Port:        cfg.Server.Port,
			CORSOrigins: cfg.Server.CORSOrigins,
			View:        viewOptions(cfg, metrics, logger),
		}, database, cache, metrics, logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("kdsvisual server starting",
			"version", Version,
			"port", cfg.Server.Port,
			"database", database.Path(),
			"documents", len(docs),
		)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// discoverDocuments lists the tree documents available at startup. A missing
// or unreadable document only warns: the server still starts and the viewer
// reports the load error until one is added.
func discoverDocuments(cache *taxonomy.Cache, pattern string) ([]string, error) {
	docs, err := cache.Documents()
	var loadErr *taxonomy.DataLoadError
	switch {
	case errors.As(err, &loadErr):
		warnf("no tree documents loaded from %s (%v); the viewer will report a load error until one is added", pattern, loadErr.Err)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("discovering tree documents: %w", err)
	}
	return docs, nil
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
