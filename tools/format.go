package tools

import (
	"fmt"
	"strings"

	"github.com/nvarga/codescope-mcp/index"
	"github.com/nvarga/codescope-mcp/indexer"
)

// FormatFileResults formats file search results as human-readable text.
func FormatFileResults(results []*index.Entry, nameOnly bool) string {
	if len(results) == 0 {
		return "No files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d files:\n\n", len(results)))

	for _, entry := range results {
		if nameOnly {
			builder.WriteString(entry.RelativePath)
			builder.WriteString("\n")
		} else {
			builder.WriteString(fmt.Sprintf("  %s  (%s, %s, %d lines)\n",
				entry.RelativePath,
				entry.Language,
				formatFileSize(entry.SizeBytes),
				entry.LineCount,
			))
		}
	}

	return builder.String()
}

// FormatSymbolResults formats symbol search results as human-readable text,
// grouped by file in result order.
func FormatSymbolResults(matches []indexer.SymbolMatch) string {
	if len(matches) == 0 {
		return "No symbols matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d symbols:\n\n", len(matches)))

	var currentFile string
	for _, match := range matches {
		if match.Entry.RelativePath != currentFile {
			currentFile = match.Entry.RelativePath
			builder.WriteString(fmt.Sprintf("── %s ──\n", currentFile))
		}
		// Ranges are zero-based rows; display one-based
		builder.WriteString(fmt.Sprintf("  %s  %s (line %d)",
			match.Symbol.Kind, match.Symbol.Name, match.Symbol.Range.Start.Line+1))
		if match.Symbol.Detail != "" {
			builder.WriteString("  ")
			builder.WriteString(match.Symbol.Detail)
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
