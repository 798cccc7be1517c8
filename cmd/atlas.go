package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kds-visual/internal/progress"
	"github.com/ziadkadry99/kds-visual/internal/site"
	"github.com/ziadkadry99/kds-visual/internal/species"
)

var atlasCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Generate the static species atlas",
	Long:  `Generates a self-contained static HTML atlas with one page per species, each showing the phylogenetic tree with the species' lineage highlighted.`,
	RunE:  runAtlas,
}

func init() {
	atlasCmd.Flags().String("output", "", "override output directory (defaults to atlas.output_dir)")
	atlasCmd.Flags().Bool("serve", false, "start a local HTTP server after generating")
	atlasCmd.Flags().Int("port", 8090, "port for the local atlas server")
	atlasCmd.Flags().Bool("open", false, "open browser automatically when serving")
	rootCmd.AddCommand(atlasCmd)
}

func runAtlas(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = cfg.Atlas.OutputDir
	}

	database, store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	generator := &site.AtlasGenerator{
		Store:     store,
		Cache:     newCache(cfg, logger),
		Document:  cfg.Data.Document,
		OutputDir: outputDir,
		Width:     cfg.Atlas.Width,
		Height:    cfg.Atlas.Height,
		Layout:    cfg.Layout,
		Render:    cfg.View.RenderOptions(),
		Logger:    logger,
	}

	reporter := progress.NewReporter(os.Stderr, "Generating atlas")
	started := false
	res, err := generator.Generate(cmd.Context(), func(current, total int, name string) {
		if !started {
			reporter.Start(total)
			started = true
		}
		reporter.Update(current, name)
	})
	if started {
		reporter.Finish()
	}
	if err != nil {
		return fmt.Errorf("generating atlas: %w", err)
	}

	successf("Atlas generated: %s (%d pages)", outputDir, res.Pages)
	if len(res.NotInTree) > 0 {
		warnf("%d species have no node in the tree: %v", len(res.NotInTree), res.NotInTree)
	}

	serve, _ := cmd.Flags().GetBool("serve")
	if !serve {
		return nil
	}
	port, _ := cmd.Flags().GetInt("port")
	openBrowser, _ := cmd.Flags().GetBool("open")

	var search *species.Store
	if n, err := store.Count(cmd.Context()); err == nil && n > 0 {
		search = store
	}
	fmt.Printf("Serving at http://localhost:%d (press Ctrl+C to stop)\n", port)
	if err := site.Serve(outputDir, port, openBrowser, search); err != nil {
		return fmt.Errorf("serving atlas: %w", err)
	}
	return nil
}
