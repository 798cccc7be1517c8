package mcp

import "github.com/mark3labs/mcp-go/mcp"

// findHighlightPathTool defines the find_highlight_path MCP tool.
var findHighlightPathTool = mcp.NewTool("find_highlight_path",
	mcp.WithDescription("Find a species in the phylogenetic tree and return its lineage from the root. Matching ignores case and treats underscores as spaces."),
	mcp.WithString("target",
		mcp.Required(),
		mcp.Description("Scientific name of the species or clade, e.g. \"Panthera tigris sumatrae\""),
	),
	mcp.WithString("document",
		mcp.Description("Tree document name (default: the configured document)"),
	),
)

// treeSummaryTool defines the tree_summary MCP tool.
var treeSummaryTool = mcp.NewTool("tree_summary",
	mcp.WithDescription("Summarize a phylogenetic tree: node and leaf counts, depth, top-level clades and any malformed entries dropped while loading."),
	mcp.WithString("document",
		mcp.Description("Tree document name (default: the configured document)"),
	),
)

// renderTreeSVGTool defines the render_tree_svg MCP tool.
var renderTreeSVGTool = mcp.NewTool("render_tree_svg",
	mcp.WithDescription("Render the phylogenetic tree as an SVG document, optionally highlighting a species and its ancestors."),
	mcp.WithString("target",
		mcp.Description("Species to highlight"),
	),
	mcp.WithNumber("width",
		mcp.Description("Viewport width in pixels (default 1200)"),
	),
	mcp.WithNumber("height",
		mcp.Description("Viewport height in pixels (default 800)"),
	),
	mcp.WithString("document",
		mcp.Description("Tree document name (default: the configured document)"),
	),
)

// getSpeciesTool defines the get_species MCP tool.
var getSpeciesTool = mcp.NewTool("get_species",
	mcp.WithDescription("Get a species record with its observation sites and DNA sequence accessions."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Scientific name of the species"),
	),
)

// searchSpeciesTool defines the search_species MCP tool.
var searchSpeciesTool = mcp.NewTool("search_species",
	mcp.WithDescription("Search species whose scientific or common name starts with the given prefix."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Name prefix"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)

// speciesAtLocationTool defines the species_at_location MCP tool.
var speciesAtLocationTool = mcp.NewTool("species_at_location",
	mcp.WithDescription("List the species observed at a named location."),
	mcp.WithString("location",
		mcp.Required(),
		mcp.Description("Location name, e.g. \"Taman Nasional Ujung Kulon\""),
	),
)
