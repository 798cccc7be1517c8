package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/kds-visual/internal/config"
	"github.com/ziadkadry99/kds-visual/internal/highlight"
	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/progress"
	"github.com/ziadkadry99/kds-visual/internal/render"
	"github.com/ziadkadry99/kds-visual/internal/site"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

var renderCmd = &cobra.Command{
	Use:   "render [species]",
	Short: "Render the tree to SVG, scene JSON or an interactive chart page",
	Long: `Renders a tree document with the ancestor path of the given species
highlighted. With --all, writes one highlighted SVG per leaf into a directory.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("format", "f", "svg", "output format: svg, json or chart")
	renderCmd.Flags().StringP("output", "o", "", "output file (default stdout), or directory with --all")
	renderCmd.Flags().String("document", "", "tree document name (default from config)")
	renderCmd.Flags().Float64("width", 0, "viewport width (default atlas.width)")
	renderCmd.Flags().Float64("height", 0, "viewport height (default atlas.height)")
	renderCmd.Flags().Bool("animate", false, "include the reveal animation in SVG output")
	renderCmd.Flags().Bool("all", false, "render every leaf of the tree into --output")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	doc, _ := cmd.Flags().GetString("document")
	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")
	animate, _ := cmd.Flags().GetBool("animate")
	all, _ := cmd.Flags().GetBool("all")

	if doc == "" {
		doc = cfg.Data.Document
	}
	if width == 0 {
		width = cfg.Atlas.Width
	}
	if height == 0 {
		height = cfg.Atlas.Height
	}
	switch format {
	case "svg", "json", "chart":
	default:
		return fmt.Errorf("unknown format %q: must be svg, json or chart", format)
	}

	tree, err := newCache(cfg, logger).Get(cmd.Context(), doc)
	if err != nil {
		return err
	}
	if n := len(tree.Warnings()); n > 0 {
		warnf("%d malformed tree entries were skipped or renamed; run with -v for details", n)
	}

	res, err := layout.Compute(tree, width, height, cfg.Layout)
	if errors.Is(err, layout.ErrDegenerateViewport) {
		return fmt.Errorf("width and height must be positive (got %gx%g)", width, height)
	}
	if err != nil {
		return err
	}

	if all {
		if output == "" {
			return fmt.Errorf("--all requires --output <directory>")
		}
		return renderAll(cmd, cfg, tree, res, output, animate)
	}

	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	hl := highlight.Find(tree, target)
	if msg := hl.Message(); msg != "" {
		warnf("%s (%s)", msg, target)
	}

	var buf bytes.Buffer
	switch format {
	case "svg":
		scene := cfg.View.RenderOptions().Render(res, hl, render.ResetTransform(res))
		err = render.WriteSVG(&buf, scene, render.SVGOptions{Animate: animate, Title: hl.Target})
	case "json":
		scene := cfg.View.RenderOptions().Render(res, hl, render.ResetTransform(res))
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(scene)
	case "chart":
		err = render.WriteChart(&buf, tree, hl, render.ChartOptions{
			Title:   tree.Root.Name,
			Compact: width < cfg.Layout.CompactWidth,
			Palette: cfg.View.Palette,
		})
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", format, err)
	}

	if output == "" || output == "-" {
		_, err = io.Copy(os.Stdout, &buf)
		return err
	}
	size := buf.Len()
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	successf("Wrote %s (%s)", output, humanize.Bytes(uint64(size)))
	return nil
}

// renderAll writes one highlighted SVG per leaf, reusing a single layout.
func renderAll(cmd *cobra.Command, cfg *config.Config, tree *taxonomy.CanonicalTree, res *layout.Result, dir string, animate bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	leaves := res.Leaves()
	opts := cfg.View.RenderOptions()
	reporter := progress.NewReporter(os.Stderr, "Rendering species")
	reporter.Start(len(leaves))

	var total uint64
	for i, leaf := range leaves {
		if err := cmd.Context().Err(); err != nil {
			reporter.Finish()
			return err
		}
		hl := highlight.Find(tree, leaf.Name)
		scene := opts.Render(res, hl, render.ResetTransform(res))

		var buf bytes.Buffer
		if err := render.WriteSVG(&buf, scene, render.SVGOptions{Animate: animate, Title: leaf.Name}); err != nil {
			reporter.Finish()
			return fmt.Errorf("rendering %s: %w", leaf.Name, err)
		}
		path := filepath.Join(dir, site.Slug(leaf.Name)+".svg")
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			reporter.Finish()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		total += uint64(buf.Len())
		reporter.Update(i+1, leaf.Name)
	}
	reporter.Finish()

	successf("Rendered %d species into %s (%s)", len(leaves), dir, humanize.Bytes(total))
	return nil
}
