package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/kds-visual/internal/mcp"
	"github.com/ziadkadry99/kds-visual/internal/species"
)

var serveNoDB bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing tree lineage, tree rendering and species lookup tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		var store *species.Store
		if !serveNoDB {
			database, s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer database.Close()
			store = s

			if n, err := store.Count(cmd.Context()); err == nil && n == 0 {
				warnf("species database %s is empty; run `kdsvisual species seed` to load it", database.Path())
			}
		}

		mcpserver.Version = Version

		logger.Info("kdsvisual MCP server started on stdio", "trees", cfg.Data.TreePath, "species_tools", store != nil)

		srv := mcpserver.NewServer(newCache(cfg, logger), store, mcpserver.Options{
			Document: cfg.Data.Document,
			Layout:   cfg.Layout,
			Render:   cfg.View.RenderOptions(),
		})
		return srv.Serve()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoDB, "no-db", false, "offer only the tree tools, without opening the species database")
	rootCmd.AddCommand(serveCmd)
}
