package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvarga/codescope-mcp/indexer"
	"github.com/nvarga/codescope-mcp/register"
	"github.com/nvarga/codescope-mcp/server"
	"github.com/nvarga/codescope-mcp/symbol"
	"github.com/nvarga/codescope-mcp/tools"
)

// stringList is a repeatable CLI flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }
func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	// Subcommand dispatch before flag parsing
	if len(os.Args) > 1 && os.Args[1] == "register" {
		register.Run(register.DeriveServerName(os.Args[0]), os.Args[2:])
		return
	}

	// Parse CLI flags
	var roots stringList
	var excludes stringList
	var maxFileSizeBytes int64
	var debounce time.Duration
	var batchSize int
	var syncInterval time.Duration
	var maxResults int
	var noWatch bool
	var logLevel string
	var logFile string

	flag.Var(&roots, "root", "Workspace root directory (repeatable; default: current working directory)")
	flag.Var(&excludes, "exclude", "Extra directory name to ignore (repeatable)")
	flag.Int64Var(&maxFileSizeBytes, "max-file-size", 1024*1024, "Maximum file size in bytes (default: 1MB)")
	flag.DurationVar(&debounce, "debounce", indexer.DefaultDebounce, "Quiet period before change events trigger a re-index")
	flag.IntVar(&batchSize, "batch-size", indexer.DefaultBatchSize, "Files built concurrently per re-index batch")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic full refresh interval (0 disables)")
	flag.IntVar(&maxResults, "max-results", indexer.DefaultMaxResults, "Default max search results")
	flag.BoolVar(&noWatch, "no-watch", false, "Disable the filesystem watcher; refresh on demand only")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.Parse()

	// Resolve workspace roots
	if len(roots) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
			os.Exit(1)
		}
		roots = append(roots, cwd)
	}
	for i, root := range roots {
		roots[i], _ = filepath.Abs(root)
	}

	// Default log file: codescope-mcp.log in the first root
	if logFile == "" {
		logFile = filepath.Join(roots[0], "codescope-mcp.log")
	}

	// Setup logger (always to file or stderr, never to stdout - stdout is for MCP stdio)
	logger := setupLogger(logLevel, logFile)

	logger.Info("starting codescope-mcp",
		"roots", []string(roots),
		"maxFileSize", maxFileSizeBytes,
		"debounce", debounce,
		"batchSize", batchSize,
	)

	startTime := time.Now()

	service := indexer.New(indexer.Options{
		Provider:     symbol.NewTreeSitterProvider(),
		Logger:       logger,
		ExcludedDirs: excludes,
		MaxFileSize:  maxFileSizeBytes,
		Debounce:     debounce,
		BatchSize:    batchSize,
		DisableWatch: noWatch,
	})
	defer service.Close()

	// Wait for initial passes so the first tool call sees a populated index
	updates, unsubscribe := service.Subscribe()
	for _, root := range roots {
		if err := service.AddWorkspace(root); err != nil {
			logger.Error("failed to add workspace", "root", root, "error", err)
			os.Exit(1)
		}
	}
	awaitInitialIndex(updates, len(roots), logger)
	unsubscribe()

	if syncInterval > 0 {
		stop := make(chan struct{})
		defer close(stop)
		go service.RunPeriodicRefresh(syncInterval, stop)
	}

	// Create tool handlers
	filesHandler := &tools.FilesHandler{Service: service, MaxResults: maxResults, Logger: logger}
	symbolsHandler := &tools.SymbolsHandler{Service: service, MaxResults: maxResults, Logger: logger}
	statusHandler := &tools.StatusHandler{Service: service, StartTime: startTime, Logger: logger}
	refreshHandler := &tools.RefreshHandler{Service: service, Logger: logger}

	// Setup and run MCP server on stdio
	mcpServer := server.Setup(filesHandler, symbolsHandler, statusHandler, refreshHandler)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

// awaitInitialIndex blocks until every workspace has published its first
// completion event, or a generous deadline passes.
func awaitInitialIndex(updates <-chan indexer.UpdateEvent, expected int, logger *slog.Logger) {
	deadline := time.NewTimer(5 * time.Minute)
	defer deadline.Stop()

	done := make(map[string]struct{}, expected)
	for len(done) < expected {
		select {
		case ev, ok := <-updates:
			if !ok {
				return
			}
			done[ev.RootPath] = struct{}{}
			logger.Info("initial indexing complete",
				"root", ev.RootPath,
				"files", ev.FileCount,
				"totalSize", ev.TotalSizeBytes,
				"duration", ev.Duration,
			)
		case <-deadline.C:
			logger.Warn("initial indexing still running, serving anyway",
				"completed", len(done), "expected", expected)
			return
		}
	}
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
