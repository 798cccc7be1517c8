package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kds-visual/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kdsvisual configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to locate tree documents and the species database, and writes a .kdsvisual.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
