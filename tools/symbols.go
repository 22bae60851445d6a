package tools

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvarga/codescope-mcp/indexer"
	"github.com/nvarga/codescope-mcp/symbol"
)

// SymbolsArgs defines the input parameters for the codescope_symbols tool.
type SymbolsArgs struct {
	Query      string   `json:"query" jsonschema:"Substring to match against symbol names, case-insensitive (e.g. handleRequest)"`
	Workspace  string   `json:"workspace,omitempty" jsonschema:"Restrict the search to one workspace root; all workspaces when omitted"`
	Kinds      []string `json:"kinds,omitempty" jsonschema:"Restrict to these symbol kinds (e.g. function, method, class, struct, interface)"`
	MaxResults int      `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 100)"`
}

// SymbolsHandler holds the dependencies for the symbols tool.
type SymbolsHandler struct {
	Service    *indexer.Service
	MaxResults int // cap applied when the request does not set one
	Logger     *slog.Logger
}

// Handle processes a codescope_symbols request.
func (h *SymbolsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SymbolsArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" {
		h.Logger.Warn("codescope_symbols called with empty query")
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: query parameter is required"}},
			IsError: true,
		}, nil, nil
	}

	kinds := make([]symbol.Kind, 0, len(args.Kinds))
	for _, kind := range args.Kinds {
		kinds = append(kinds, symbol.Kind(strings.ToLower(kind)))
	}

	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = h.MaxResults
	}

	matches := h.Service.SearchSymbols(args.Query, indexer.SymbolSearchOptions{
		Workspace:  args.Workspace,
		MaxResults: maxResults,
		Kinds:      kinds,
	})

	h.Logger.Info("codescope_symbols",
		"query", args.Query,
		"results", len(matches),
		"elapsed", time.Since(start),
	)

	output := FormatSymbolResults(matches)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}, nil, nil
}
