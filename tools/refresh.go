package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvarga/codescope-mcp/indexer"
)

// DefaultRefreshTimeout bounds how long a refresh request waits for the
// re-index passes it triggered.
const DefaultRefreshTimeout = 2 * time.Minute

// RefreshArgs defines the input parameters for the codescope_refresh tool.
type RefreshArgs struct {
	Workspace string `json:"workspace,omitempty" jsonschema:"Workspace root to re-index; all workspaces when omitted"`
}

// RefreshHandler holds the dependencies for the refresh tool.
type RefreshHandler struct {
	Service *indexer.Service
	Logger  *slog.Logger
	Timeout time.Duration
}

// Handle processes a codescope_refresh request. It triggers the passes and
// waits for their completion events before reporting.
func (h *RefreshHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RefreshArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	h.Logger.Info("codescope_refresh started", "workspace", args.Workspace)

	// A targeted refresh only counts events from that root; passes completing
	// for other workspaces in the meantime must not satisfy the wait.
	var wantRoot string
	expected := 1
	if args.Workspace == "" {
		expected = len(h.Service.AllStats())
	} else {
		absRoot, err := filepath.Abs(args.Workspace)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Refresh error: %v", err)}},
				IsError: true,
			}, nil, nil
		}
		wantRoot = absRoot
	}
	if expected == 0 {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "No workspaces registered."}},
		}, nil, nil
	}

	// Subscribe before triggering so no completion event can slip past.
	updates, unsubscribe := h.Service.Subscribe()
	defer unsubscribe()

	if err := h.Service.Refresh(args.Workspace); err != nil {
		h.Logger.Error("codescope_refresh failed", "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Refresh error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	done := make(map[string]indexer.UpdateEvent, expected)
	for len(done) < expected {
		select {
		case ev, ok := <-updates:
			if !ok {
				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: "Refresh error: index service closed"}},
					IsError: true,
				}, nil, nil
			}
			if wantRoot != "" && ev.RootPath != wantRoot {
				continue
			}
			done[ev.RootPath] = ev
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-deadline.C:
			h.Logger.Error("codescope_refresh timed out",
				"workspace", args.Workspace, "completed", len(done), "expected", expected)
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(
					"Refresh timed out after %s (%d of %d workspaces completed)",
					timeout, len(done), expected)}},
				IsError: true,
			}, nil, nil
		}
	}

	var builder strings.Builder
	for _, ev := range done {
		builder.WriteString(fmt.Sprintf("reindexed %s: %d files (%s) in %s\n",
			ev.RootPath, ev.FileCount, formatFileSize(ev.TotalSizeBytes), ev.Duration.Round(time.Millisecond)))
	}

	h.Logger.Info("codescope_refresh complete",
		"workspaces", len(done),
		"elapsed", time.Since(start),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: builder.String()}},
	}, nil, nil
}
