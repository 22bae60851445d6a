package tools

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvarga/codescope-mcp/indexer"
	"github.com/nvarga/codescope-mcp/symbol"
)

// fixedProvider returns the same symbol tree for every supported file.
type fixedProvider struct {
	symbols []symbol.Info
}

func (p *fixedProvider) Supports(lang string) bool { return lang == "go" }

func (p *fixedProvider) Extract(ctx context.Context, path string, content []byte, lang string) ([]symbol.Info, error) {
	return p.symbols, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService indexes a temp workspace with the given files and returns
// the service once the initial pass completes.
func newTestService(t *testing.T, provider symbol.Provider, files map[string]string) *indexer.Service {
	t.Helper()
	root := t.TempDir()
	for relativePath, content := range files {
		absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(absolutePath), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(absolutePath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	s := indexer.New(indexer.Options{
		Provider:     provider,
		Logger:       testLogger(),
		Debounce:     50 * time.Millisecond,
		DisableWatch: true,
	})
	t.Cleanup(s.Close)

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()
	if err := s.AddWorkspace(root); err != nil {
		t.Fatalf("AddWorkspace: %v", err)
	}
	select {
	case <-updates:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial index")
	}
	return s
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	return result.Content[0].(*mcp.TextContent).Text
}

func Test_FilesHandler_EmptyQuery(t *testing.T) {
	h := &FilesHandler{
		Service: newTestService(t, nil, nil),
		Logger:  testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, FilesArgs{Query: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for empty query")
	}
	if text := resultText(t, result); !strings.Contains(text, "query parameter is required") {
		t.Errorf("expected error message about empty query, got: %s", text)
	}
}

func Test_FilesHandler_NameSearch(t *testing.T) {
	h := &FilesHandler{
		Service: newTestService(t, nil, map[string]string{
			"src/main.go": "package main\n",
			"README.md":   "# readme\n",
		}),
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, FilesArgs{Query: "main"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success, got error result")
	}

	text := resultText(t, result)
	if !strings.Contains(text, "src/main.go") {
		t.Errorf("expected result to contain src/main.go, got:\n%s", text)
	}
	if strings.Contains(text, "README.md") {
		t.Errorf("expected result to NOT contain README.md, got:\n%s", text)
	}
}

func Test_FilesHandler_FileTypeFilter(t *testing.T) {
	h := &FilesHandler{
		Service: newTestService(t, nil, map[string]string{
			"config.go": "package config\n",
			"config.md": "# config\n",
		}),
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, FilesArgs{
		Query:     "config",
		FileTypes: []string{"go"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "config.go") || strings.Contains(text, "config.md") {
		t.Errorf("expected only config.go, got:\n%s", text)
	}
}

func Test_FilesHandler_NoResults(t *testing.T) {
	h := &FilesHandler{
		Service: newTestService(t, nil, map[string]string{"main.go": "package main\n"}),
		Logger:  testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, FilesArgs{Query: "nosuchfile"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success (no error), got error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "No files matched") {
		t.Errorf("expected 'No files matched', got:\n%s", text)
	}
}

func Test_FilesHandler_NameOnly(t *testing.T) {
	h := &FilesHandler{
		Service: newTestService(t, nil, map[string]string{"main.go": "package main\n"}),
		Logger:  testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, FilesArgs{Query: "main", NameOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "main.go") {
		t.Errorf("expected path in output, got:\n%s", text)
	}
	if strings.Contains(text, "lines)") {
		t.Errorf("nameOnly output should omit metadata, got:\n%s", text)
	}
}
