package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/kds-visual/internal/db"
	"github.com/ziadkadry99/kds-visual/internal/highlight"
	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/observability"
	"github.com/ziadkadry99/kds-visual/internal/render"
	"github.com/ziadkadry99/kds-visual/internal/species"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

const testTree = `{"name":"Root","tree":{"children":[
	{"children":[{"name":"Mammals","children":[
		{"name":"Carnivores","children":[{"name":"Panthera_tigris_sumatrae"},{"name":"Helarctos_malayanus"}]},
		{"name":"Primates","children":[{"name":"Pongo_pygmaeus"}]}]}]},
	{"children":[{"name":"Reptiles","children":[{"name":"Varanus_komodoensis"}]}]}]}}`

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tree.json"), []byte(testTree), 0o644); err != nil {
		t.Fatal(err)
	}
	cache := taxonomy.NewCache(filepath.Join(dir, "*.json"), observability.Discard())

	var store *species.Store
	if withStore {
		d, err := db.OpenMemory()
		if err != nil {
			t.Fatalf("OpenMemory: %v", err)
		}
		t.Cleanup(func() { d.Close() })
		store = species.NewStore(d)
		if _, err := store.Seed(context.Background(), nil); err != nil {
			t.Fatalf("Seed: %v", err)
		}
	}
	return NewServer(cache, store, Options{Layout: layout.DefaultConfig(), Render: render.DefaultOptions()})
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText concatenates the text content of a tool result.
func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	var sb strings.Builder
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func TestToolDefinitions(t *testing.T) {
	// Verify tool names and required properties.
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"find_highlight_path", findHighlightPathTool, "find_highlight_path"},
		{"tree_summary", treeSummaryTool, "tree_summary"},
		{"render_tree_svg", renderTreeSVGTool, "render_tree_svg"},
		{"get_species", getSpeciesTool, "get_species"},
		{"search_species", searchSpeciesTool, "search_species"},
		{"species_at_location", speciesAtLocationTool, "species_at_location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t, false)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.store != nil {
		t.Error("store should be nil")
	}
}

func TestHandleFindHighlightPath(t *testing.T) {
	srv := newTestServer(t, false)
	ctx := context.Background()

	t.Run("match", func(t *testing.T) {
		result, err := srv.handleFindHighlightPath(ctx, call(map[string]any{"target": "panthera tigris sumatrae"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "Root > Mammals > Carnivores > Panthera tigris sumatrae") {
			t.Errorf("unexpected lineage:\n%s", text)
		}
	})

	t.Run("no match", func(t *testing.T) {
		result, _ := srv.handleFindHighlightPath(ctx, call(map[string]any{"target": "Nonexistent species"}))
		if result.IsError {
			t.Error("no match should not be a tool error")
		}
		if resultText(t, result) != highlight.NoMatchMessage {
			t.Errorf("unexpected text: %q", resultText(t, result))
		}
	})

	t.Run("missing target", func(t *testing.T) {
		result, _ := srv.handleFindHighlightPath(ctx, call(map[string]any{}))
		if !result.IsError {
			t.Error("expected error for missing target")
		}
	})

	t.Run("unknown document", func(t *testing.T) {
		result, _ := srv.handleFindHighlightPath(ctx, call(map[string]any{"target": "x", "document": "atlantis"}))
		if !result.IsError {
			t.Error("expected error for unknown document")
		}
	})
}

func TestHandleTreeSummary(t *testing.T) {
	srv := newTestServer(t, false)

	result, err := srv.handleTreeSummary(context.Background(), call(map[string]any{}))
	if err != nil || result.IsError {
		t.Fatalf("unexpected error: %v %v", err, result.Content)
	}
	text := resultText(t, result)
	for _, want := range []string{"Root: Root", "Leaves: 4", "- Mammals (3 species)", "- Reptiles (1 species)"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestHandleRenderTreeSVG(t *testing.T) {
	srv := newTestServer(t, false)
	ctx := context.Background()

	result, _ := srv.handleRenderTreeSVG(ctx, call(map[string]any{"target": "Pongo pygmaeus", "width": 900.0, "height": 600.0}))
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text := resultText(t, result)
	if !strings.HasPrefix(text, "<svg") || !strings.Contains(text, render.ColorTarget) {
		t.Errorf("expected highlighted svg, got:\n%.200s", text)
	}

	result, _ = srv.handleRenderTreeSVG(ctx, call(map[string]any{"width": 0.0}))
	if !result.IsError {
		t.Error("expected error for zero width")
	}
}

func TestSpeciesTools(t *testing.T) {
	srv := newTestServer(t, true)
	ctx := context.Background()

	t.Run("get species", func(t *testing.T) {
		result, _ := srv.handleGetSpecies(ctx, call(map[string]any{"name": "Varanus komodoensis"}))
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		for _, want := range []string{"Common name: Komodo", "Pulau Komodo", "MK628540.1: COX1, 680 bp"} {
			if !strings.Contains(text, want) {
				t.Errorf("result missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("unknown species", func(t *testing.T) {
		result, _ := srv.handleGetSpecies(ctx, call(map[string]any{"name": "Dodo"}))
		if !result.IsError {
			t.Error("expected error for unknown species")
		}
	})

	t.Run("search", func(t *testing.T) {
		result, _ := srv.handleSearchSpecies(ctx, call(map[string]any{"query": "kakatua"}))
		text := resultText(t, result)
		if !strings.Contains(text, "Found 2 species") {
			t.Errorf("unexpected search result:\n%s", text)
		}
	})

	t.Run("empty search", func(t *testing.T) {
		result, _ := srv.handleSearchSpecies(ctx, call(map[string]any{"query": "zzz"}))
		if result.IsError {
			t.Error("empty results should not be an error")
		}
	})

	t.Run("location", func(t *testing.T) {
		result, _ := srv.handleSpeciesAtLocation(ctx, call(map[string]any{"location": "Taman Nasional Gunung Leuser"}))
		text := resultText(t, result)
		if !strings.Contains(text, "Panthera tigris sumatrae") || !strings.Contains(text, "Dicerorhinus sumatrensis") {
			t.Errorf("unexpected location result:\n%s", text)
		}
	})
}
