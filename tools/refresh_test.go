package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvarga/codescope-mcp/indexer"
	"github.com/nvarga/codescope-mcp/symbol"
)

func Test_RefreshHandler_AllWorkspaces(t *testing.T) {
	h := &RefreshHandler{
		Service: newTestService(t, nil, map[string]string{
			"a.go": "package a\n",
			"b.go": "package b\n",
		}),
		Logger:  testLogger(),
		Timeout: 10 * time.Second,
	}

	result, _, err := h.Handle(context.Background(), nil, RefreshArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "reindexed") || !strings.Contains(text, "2 files") {
		t.Errorf("expected reindex summary with 2 files, got:\n%s", text)
	}
}

func Test_RefreshHandler_UnknownWorkspace(t *testing.T) {
	h := &RefreshHandler{
		Service: newTestService(t, nil, map[string]string{"a.go": "package a\n"}),
		Logger:  testLogger(),
		Timeout: 10 * time.Second,
	}

	result, _, err := h.Handle(context.Background(), nil, RefreshArgs{Workspace: "/not/registered"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for unregistered workspace")
	}
	if !strings.Contains(resultText(t, result), "Refresh error") {
		t.Errorf("expected refresh error text, got:\n%s", resultText(t, result))
	}
}

// gatedProvider optionally blocks Extract, letting a test hold a pass open.
type gatedProvider struct {
	mu   sync.Mutex
	gate chan struct{}
}

func (p *gatedProvider) Supports(lang string) bool { return lang == "go" }

func (p *gatedProvider) Extract(ctx context.Context, path string, content []byte, lang string) ([]symbol.Info, error) {
	p.mu.Lock()
	gate := p.gate
	p.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return nil, nil
}

func (p *gatedProvider) hold() chan struct{} {
	ch := make(chan struct{})
	p.mu.Lock()
	p.gate = ch
	p.mu.Unlock()
	return ch
}

func Test_RefreshHandler_TargetedWaitSkipsOtherWorkspaces(t *testing.T) {
	provider := &gatedProvider{}
	s := indexer.New(indexer.Options{
		Provider:     provider,
		Logger:       testLogger(),
		Debounce:     50 * time.Millisecond,
		DisableWatch: true,
	})
	t.Cleanup(s.Close)

	rootA := t.TempDir()
	fileA := filepath.Join(rootA, "a.go")
	if err := os.WriteFile(fileA, []byte("package a\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rootB := t.TempDir()
	for _, name := range []string{"b1.go", "b2.go"} {
		if err := os.WriteFile(filepath.Join(rootB, name), []byte("package b\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	updates, unsubscribe := s.Subscribe()
	if err := s.AddWorkspace(rootA); err != nil {
		t.Fatal(err)
	}
	if err := s.AddWorkspace(rootB); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-updates:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for initial indexing")
		}
	}
	unsubscribe()

	// Change a.go so the next pass re-extracts and parks on the gate.
	if err := os.WriteFile(fileA, []byte("package a\n\nfunc A() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(fileA, time.Now().Add(2*time.Second), time.Now().Add(2*time.Second)); err != nil {
		t.Fatal(err)
	}
	gate := provider.hold()

	// Workspace A's pass starts and blocks; the handler's pass for B queues
	// behind it, so A's completion event lands mid-wait and must be skipped.
	if err := s.Refresh(rootA); err != nil {
		t.Fatal(err)
	}

	h := &RefreshHandler{Service: s, Logger: testLogger(), Timeout: 10 * time.Second}
	type handleResult struct {
		result *mcp.CallToolResult
		err    error
	}
	resultCh := make(chan handleResult, 1)
	go func() {
		result, _, err := h.Handle(context.Background(), nil, RefreshArgs{Workspace: rootB})
		resultCh <- handleResult{result, err}
	}()

	// Give the handler time to subscribe and queue B before A completes.
	time.Sleep(200 * time.Millisecond)
	close(gate)

	var hr handleResult
	select {
	case hr = <-resultCh:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for refresh handler")
	}
	if hr.err != nil {
		t.Fatalf("unexpected error: %v", hr.err)
	}
	if hr.result.IsError {
		t.Fatalf("expected success, got: %s", resultText(t, hr.result))
	}

	text := resultText(t, hr.result)
	if !strings.Contains(text, rootB) || !strings.Contains(text, "2 files") {
		t.Errorf("expected workspace B's summary (2 files), got:\n%s", text)
	}
	if strings.Contains(text, rootA) {
		t.Errorf("targeted refresh reported the wrong workspace, got:\n%s", text)
	}
}
