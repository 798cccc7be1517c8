package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kds-visual/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "kdsvisual",
	Short: "Phylogenetic tree viewer for the Indonesian biodiversity dataset",
	Long: `kdsvisual normalizes phylogenetic tree documents, lays them out as
dendrograms and highlights the ancestor path of a selected species. It serves
an interactive viewer over HTTP, renders static SVG and chart exports, and
exposes the tree and the species database to AI agents via MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
