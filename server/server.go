package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvarga/codescope-mcp/tools"
)

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	filesHandler *tools.FilesHandler,
	symbolsHandler *tools.SymbolsHandler,
	statusHandler *tools.StatusHandler,
	refreshHandler *tools.RefreshHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "codescope-mcp",
			Version: "0.3.0",
		},
		&mcp.ServerOptions{
			Instructions: `This server maintains an in-memory index of the project's files and code symbols. Its tools are ALWAYS faster than built-in Glob, find, or grepping for declarations because they query a pre-built index instead of scanning the filesystem on every call.

ALWAYS prefer these tools over built-in alternatives:
- Use codescope_files instead of Glob or find to locate files by name
- Use codescope_symbols to find functions, types, classes, and methods by name (instead of grepping for declarations)
- The index updates automatically when files change (via filesystem watcher)
- Use codescope_refresh only if you suspect the index is stale`,
		},
	)

	// Register codescope_files tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "codescope_files",
		Description: `Find files whose name contains a substring, case-insensitively. Faster than find/ls for indexed projects.

Query examples:
  - "handler" - any file with handler in its name
  - ".test.ts" - TypeScript test files
  - "config" - configuration files of any type

Filtering:
  - fileTypes: restrict to languages (e.g. ["go", "typescript"])
  - workspace: restrict to one workspace root`,
	}, filesHandler.Handle)

	// Register codescope_symbols tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "codescope_symbols",
		Description: `Find code symbols (functions, methods, classes, structs, interfaces, ...) whose name contains a substring, case-insensitively. Results list the defining file and line.

Filtering:
  - kinds: restrict to symbol kinds (e.g. ["function", "method"])
  - workspace: restrict to one workspace root`,
	}, symbolsHandler.Handle)

	// Register codescope_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "codescope_status",
		Description: "Show index status per workspace: file count, size, languages, memory usage, and uptime.",
	}, statusHandler.Handle)

	// Register codescope_refresh tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "codescope_refresh",
		Description: "Force a re-index of one workspace (or all). Waits for completion and reports the resulting counts.",
	}, refreshHandler.Handle)

	return mcpServer
}
