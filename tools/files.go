package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvarga/codescope-mcp/indexer"
)

// FilesArgs defines the input parameters for the codescope_files tool.
type FilesArgs struct {
	Query      string   `json:"query" jsonschema:"Substring to match against file names, case-insensitive (e.g. handler or .test.ts)"`
	Workspace  string   `json:"workspace,omitempty" jsonschema:"Restrict the search to one workspace root; all workspaces when omitted"`
	FileTypes  []string `json:"fileTypes,omitempty" jsonschema:"Restrict to these language identifiers (e.g. go, typescript, python)"`
	MaxResults int      `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 100)"`
	NameOnly   bool     `json:"nameOnly,omitempty" jsonschema:"If true return only file paths without metadata"`
}

// FilesHandler holds the dependencies for the files tool.
type FilesHandler struct {
	Service    *indexer.Service
	MaxResults int // cap applied when the request does not set one
	Logger     *slog.Logger
}

// Handle processes a codescope_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" {
		h.Logger.Warn("codescope_files called with empty query")
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: query parameter is required"}},
			IsError: true,
		}, nil, nil
	}

	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = h.MaxResults
	}

	results := h.Service.SearchFiles(args.Query, indexer.FileSearchOptions{
		Workspace:  args.Workspace,
		MaxResults: maxResults,
		FileTypes:  args.FileTypes,
	})

	h.Logger.Info("codescope_files",
		"query", args.Query,
		"results", len(results),
		"elapsed", time.Since(start),
	)

	output := FormatFileResults(results, args.NameOnly)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}, nil, nil
}
