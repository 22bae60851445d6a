package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvarga/codescope-mcp/indexer"
)

// StatusArgs defines the input parameters for the codescope_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Service   *indexer.Service
	StartTime time.Time
	Logger    *slog.Logger
}

// Handle processes a codescope_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	stats := h.Service.AllStats()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("codescope_status",
		"workspaces", len(stats),
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	var builder strings.Builder
	builder.WriteString("=== codescope-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))
	builder.WriteString(fmt.Sprintf("Workspaces: %d\n", len(stats)))

	for _, ws := range stats {
		builder.WriteString(fmt.Sprintf("\n── %s ──\n", ws.RootPath))
		builder.WriteString(fmt.Sprintf("  Indexed files: %d\n", ws.FileCount))
		builder.WriteString(fmt.Sprintf("  Indexed symbols: %d\n", ws.SymbolCount))
		builder.WriteString(fmt.Sprintf("  Total indexed size: %s\n", formatFileSize(ws.TotalSizeBytes)))
		if !ws.LastUpdated.IsZero() {
			builder.WriteString(fmt.Sprintf("  Last updated: %s\n", ws.LastUpdated.Format(time.RFC3339)))
		}

		if len(ws.Languages) > 0 {
			builder.WriteString("  Languages:\n")

			// Sort by count descending
			type langEntry struct {
				lang  string
				count int
			}
			entries := make([]langEntry, 0, len(ws.Languages))
			for lang, count := range ws.Languages {
				entries = append(entries, langEntry{lang, count})
			}
			sort.Slice(entries, func(i, j int) bool {
				if entries[i].count != entries[j].count {
					return entries[i].count > entries[j].count
				}
				return entries[i].lang < entries[j].lang
			})

			for _, entry := range entries {
				builder.WriteString(fmt.Sprintf("    %-20s %d files\n", entry.lang, entry.count))
			}
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: builder.String()}},
	}, nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
