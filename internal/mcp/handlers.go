package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/kds-visual/internal/highlight"
	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/render"
	"github.com/ziadkadry99/kds-visual/internal/species"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

func (s *Server) tree(ctx context.Context, request mcp.CallToolRequest) (*taxonomy.CanonicalTree, error) {
	doc := request.GetString("document", s.opts.Document)
	return s.cache.Get(ctx, doc)
}

// handleFindHighlightPath locates a species and returns its lineage.
func (s *Server) handleFindHighlightPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: target"), nil
	}

	tree, err := s.tree(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load tree: %v", err)), nil
	}

	hl := highlight.Find(tree, target)
	if !hl.Matched() {
		return mcp.NewToolResultText(hl.Message()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Target: %s\n", hl.Target)
	fmt.Fprintf(&sb, "Lineage (%d nodes): %s\n", len(hl.Path), strings.Join(hl.Path, " > "))
	return mcp.NewToolResultText(sb.String()), nil
}

// handleTreeSummary describes the shape of a tree document.
func (s *Server) handleTreeSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := s.tree(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load tree: %v", err)), nil
	}
	return mcp.NewToolResultText(formatTreeSummary(tree)), nil
}

// handleRenderTreeSVG renders the tree, highlighting target when given.
func (s *Server) handleRenderTreeSVG(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	width := request.GetFloat("width", 1200)
	height := request.GetFloat("height", 800)

	tree, err := s.tree(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load tree: %v", err)), nil
	}
	res, err := layout.Compute(tree, width, height, s.opts.Layout)
	if errors.Is(err, layout.ErrDegenerateViewport) {
		return mcp.NewToolResultError("width and height must be positive"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("layout failed: %v", err)), nil
	}

	hl := highlight.Find(tree, request.GetString("target", ""))
	scene := s.opts.Render.Render(res, hl, render.ResetTransform(res))

	var sb strings.Builder
	if err := render.WriteSVG(&sb, scene, render.SVGOptions{Title: hl.Target}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	if msg := hl.Message(); msg != "" {
		return mcp.NewToolResultText(msg + "\n\n" + sb.String()), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetSpecies returns one species record.
func (s *Server) handleGetSpecies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	d, err := s.store.GetByName(ctx, name)
	if errors.Is(err, species.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No species named %q. Try search_species with a prefix.", name)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatSpecies(d)), nil
}

// handleSearchSpecies runs a prefix search over species names.
func (s *Server) handleSearchSpecies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	list, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No species found. The dataset may not be seeded yet. Run `kdsvisual species seed` to load it."), nil
	}
	return mcp.NewToolResultText(formatSpeciesList(list)), nil
}

// handleSpeciesAtLocation lists species observed at a location.
func (s *Server) handleSpeciesAtLocation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := request.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: location"), nil
	}

	list, err := s.store.SpeciesAt(ctx, location)
	if errors.Is(err, species.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No location named %q.", location)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No species recorded at %s.", location)), nil
	}
	return mcp.NewToolResultText(formatSpeciesList(list)), nil
}

func formatTreeSummary(tree *taxonomy.CanonicalTree) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Root: %s\n", tree.Root.Name)
	fmt.Fprintf(&sb, "Nodes: %d\nLeaves: %d\nDepth: %d\n", tree.NodeCount(), tree.LeafCount(), tree.Depth())

	if len(tree.Root.Children) > 0 {
		sb.WriteString("\nTop-level clades:\n")
		for _, c := range tree.Root.Children {
			leaves := 0
			c.Walk(func(n *taxonomy.TaxonNode, _ int) bool {
				if n.IsLeaf() {
					leaves++
				}
				return true
			})
			fmt.Fprintf(&sb, "- %s (%d species)\n", c.Name, leaves)
		}
	}

	if w := tree.Warnings(); len(w) > 0 {
		fmt.Fprintf(&sb, "\nMalformed entries dropped or repaired: %d\n", len(w))
		for _, warn := range w {
			fmt.Fprintf(&sb, "- %s\n", warn.String())
		}
	}
	return sb.String()
}

// formatSpecies renders a species record for AI agent consumption.
func formatSpecies(d *species.Detail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scientific name: %s\n", d.ScientificName)
	if d.CommonName != "" {
		fmt.Fprintf(&sb, "Common name: %s\n", d.CommonName)
	}
	if d.Family != "" {
		fmt.Fprintf(&sb, "Family: %s\n", d.Family)
	}
	if d.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", d.Description)
	}

	if len(d.Locations) > 0 {
		sb.WriteString("\nObserved at:\n")
		for _, l := range d.Locations {
			fmt.Fprintf(&sb, "- %s (%.4f, %.4f)\n", l.Name, l.Latitude, l.Longitude)
		}
	}
	if len(d.Sequences) > 0 {
		sb.WriteString("\nDNA sequences:\n")
		for _, q := range d.Sequences {
			fmt.Fprintf(&sb, "- %s: %s, %d bp\n", q.GenBankAccession, q.Gene, q.LengthBP)
		}
	}
	return sb.String()
}

func formatSpeciesList(list []species.Species) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d species:\n", len(list))
	for _, sp := range list {
		fmt.Fprintf(&sb, "- %s", sp.ScientificName)
		if sp.CommonName != "" {
			fmt.Fprintf(&sb, " (%s)", sp.CommonName)
		}
		if sp.Family != "" {
			fmt.Fprintf(&sb, " [%s]", sp.Family)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
