// Package site exports the species atlas: a static HTML site with one page
// per species showing its description, observation sites, DNA records and
// the phylogenetic tree with the species' ancestor path highlighted.
package site

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/kds-visual/internal/highlight"
	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/render"
	"github.com/ziadkadry99/kds-visual/internal/species"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

// AtlasGenerator renders the species atlas into OutputDir.
type AtlasGenerator struct {
	Store     *species.Store
	Cache     *taxonomy.Cache
	Document  string // tree document, empty for the first
	OutputDir string
	Width     float64
	Height    float64
	Layout    layout.Config
	Render    render.Options
	Logger    *slog.Logger
}

// Result summarizes a generation run.
type Result struct {
	Pages int
	// NotInTree lists species that have no node in the tree. Their pages
	// render the tree without a highlight.
	NotInTree []string
}

// ProgressFunc is called after each species page is written.
type ProgressFunc func(current, total int, name string)

type speciesPage struct {
	Title    string
	Species  *species.Detail
	Content  template.HTML
	TreeSVG  template.HTML
	Path     []string
	InTree   bool
	Families []familyNav
	BasePath string
}

type familyNav struct {
	Family  string
	Entries []navEntry
}

type navEntry struct {
	Name string
	Href string
}

type indexPage struct {
	Title    string
	Count    int
	TreeSVG  template.HTML
	Families []familyNav
	BasePath string
}

// SearchEntry is one row of the atlas search index.
type SearchEntry struct {
	ScientificName string `json:"scientific_name"`
	CommonName     string `json:"common_name,omitempty"`
	Family         string `json:"family,omitempty"`
	Href           string `json:"href"`
}

// Generate builds the full atlas. It returns the number of species pages written.
func (g *AtlasGenerator) Generate(ctx context.Context, progress ProgressFunc) (*Result, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	list, err := g.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.New("no species in the database; run 'kdsvisual species seed' first")
	}

	tree, err := g.Cache.Get(ctx, g.Document)
	if err != nil {
		return nil, err
	}
	// Layout is computed once; only the highlight changes per page.
	res, err := layout.Compute(tree, g.Width, g.Height, g.Layout)
	if err != nil {
		return nil, fmt.Errorf("laying out tree: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(g.OutputDir, "species"), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(g.OutputDir, "style.css"), []byte(cssContent), 0o644); err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	nav := buildNav(list)
	result := &Result{}
	index := make([]SearchEntry, 0, len(list))

	for i, sp := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		detail, err := g.Store.Get(ctx, sp.ID)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", sp.ScientificName, err)
		}

		hl := highlight.Find(tree, sp.ScientificName)
		if !hl.Matched() {
			result.NotInTree = append(result.NotInTree, sp.ScientificName)
			logger.Debug("species not in tree", "species", sp.ScientificName)
		}

		svg, err := g.treeSVG(res, hl, sp.ScientificName)
		if err != nil {
			return nil, err
		}

		var content bytes.Buffer
		if err := md.Convert([]byte(speciesMarkdown(detail)), &content); err != nil {
			return nil, fmt.Errorf("converting markdown for %s: %w", sp.ScientificName, err)
		}

		page := speciesPage{
			Title:    sp.ScientificName,
			Species:  detail,
			Content:  template.HTML(content.String()),
			TreeSVG:  svg,
			Path:     hl.Path,
			InTree:   hl.Matched(),
			Families: nav,
			BasePath: "../",
		}
		href := pageHref(sp.ScientificName)
		if err := writeTemplate(filepath.Join(g.OutputDir, filepath.FromSlash(href)), speciesTemplate, page); err != nil {
			return nil, fmt.Errorf("writing page for %s: %w", sp.ScientificName, err)
		}
		index = append(index, SearchEntry{
			ScientificName: sp.ScientificName,
			CommonName:     sp.CommonName,
			Family:         sp.Family,
			Href:           href,
		})
		result.Pages++
		if progress != nil {
			progress(i+1, len(list), sp.ScientificName)
		}
	}

	full, err := g.treeSVG(res, highlight.Set{}, tree.Root.Name)
	if err != nil {
		return nil, err
	}
	err = writeTemplate(filepath.Join(g.OutputDir, "index.html"), indexTemplate, indexPage{
		Title:    "Species atlas",
		Count:    len(list),
		TreeSVG:  full,
		Families: nav,
	})
	if err != nil {
		return nil, fmt.Errorf("writing index: %w", err)
	}

	if err := writeSearchIndex(filepath.Join(g.OutputDir, "search-index.json"), index); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *AtlasGenerator) treeSVG(res *layout.Result, hl highlight.Set, title string) (template.HTML, error) {
	scene := g.Render.Render(res, hl, render.ResetTransform(res))
	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, scene, render.SVGOptions{Title: title}); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// speciesMarkdown renders a species record as markdown. The DNA records end
// up in fenced blocks so the highlighter formats them.
func speciesMarkdown(d *species.Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# *%s*\n\n", d.ScientificName)
	if d.CommonName != "" {
		fmt.Fprintf(&b, "**%s**", d.CommonName)
		if d.Family != "" {
			fmt.Fprintf(&b, " · %s", d.Family)
		}
		b.WriteString("\n\n")
	}
	if d.Description != "" {
		b.WriteString(d.Description + "\n\n")
	}

	if len(d.Locations) > 0 {
		b.WriteString("## Observation sites\n\n")
		b.WriteString("| Location | Latitude | Longitude | Observed | Source |\n")
		b.WriteString("|---|---:|---:|---|---|\n")
		for _, l := range d.Locations {
			observed := ""
			if l.ObservationDate != nil {
				observed = l.ObservationDate.Format("2006-01-02")
			}
			fmt.Fprintf(&b, "| %s | %.4f | %.4f | %s | %s |\n",
				escapeCell(l.Name), l.Latitude, l.Longitude, observed, escapeCell(l.Source))
		}
		b.WriteString("\n")
	}

	if len(d.Sequences) > 0 {
		b.WriteString("## DNA sequences\n\n")
		for _, s := range d.Sequences {
			fmt.Fprintf(&b, "### %s\n\n", s.GenBankAccession)
			fmt.Fprintf(&b, "Gene %s, %d bp", s.Gene, s.LengthBP)
			if s.Source != "" {
				fmt.Fprintf(&b, " (%s)", s.Source)
			}
			b.WriteString("\n\n```text\n")
			b.WriteString(wrap(s.Sequence, 60))
			b.WriteString("\n```\n\n")
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// wrap splits s into lines of at most n characters.
func wrap(s string, n int) string {
	var lines []string
	for len(s) > n {
		lines = append(lines, s[:n])
		s = s[n:]
	}
	lines = append(lines, s)
	return strings.Join(lines, "\n")
}

// Slug turns a scientific name into a file name: "Pongo pygmaeus" -> "pongo-pygmaeus".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func pageHref(name string) string {
	return "species/" + Slug(name) + ".html"
}

// buildNav groups species by family, families and names sorted.
func buildNav(list []species.Species) []familyNav {
	groups := make(map[string][]navEntry)
	for _, sp := range list {
		fam := sp.Family
		if fam == "" {
			fam = "Unclassified"
		}
		groups[fam] = append(groups[fam], navEntry{Name: sp.ScientificName, Href: pageHref(sp.ScientificName)})
	}
	nav := make([]familyNav, 0, len(groups))
	for fam, entries := range groups {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		nav = append(nav, familyNav{Family: fam, Entries: entries})
	}
	sort.Slice(nav, func(i, j int) bool { return nav[i].Family < nav[j].Family })
	return nav
}

func writeTemplate(path string, tmpl *template.Template, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

func writeSearchIndex(path string, entries []SearchEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling search index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing search index: %w", err)
	}
	return nil
}
