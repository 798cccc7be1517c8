// Package mcp exposes the phylogenetic tree and the species dataset to AI
// agents over the Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/render"
	"github.com/ziadkadry99/kds-visual/internal/species"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Options configure tree rendering for the tools.
type Options struct {
	Document string // default tree document, empty for the first
	Layout   layout.Config
	Render   render.Options
}

// Server wraps an MCP server that exposes tree and species tools.
type Server struct {
	cache *taxonomy.Cache
	store *species.Store
	opts  Options
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server. store may be nil, in which case the
// species tools are not offered.
func NewServer(cache *taxonomy.Cache, store *species.Store, opts Options) *Server {
	s := &Server{
		cache: cache,
		store: store,
		opts:  opts,
	}

	s.mcp = server.NewMCPServer(
		"kdsvisual",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(findHighlightPathTool, s.handleFindHighlightPath)
	s.mcp.AddTool(treeSummaryTool, s.handleTreeSummary)
	s.mcp.AddTool(renderTreeSVGTool, s.handleRenderTreeSVG)
	if s.store != nil {
		s.mcp.AddTool(getSpeciesTool, s.handleGetSpecies)
		s.mcp.AddTool(searchSpeciesTool, s.handleSearchSpecies)
		s.mcp.AddTool(speciesAtLocationTool, s.handleSpeciesAtLocation)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
