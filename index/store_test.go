package index

import (
	"fmt"
	"testing"

	"github.com/nvarga/codescope-mcp/symbol"
)

func entry(relativePath string, size int64) *Entry {
	return &Entry{
		Path:         "/ws/" + relativePath,
		RelativePath: relativePath,
		Language:     "go",
		SizeBytes:    size,
	}
}

// checkAggregates verifies the store invariants against the entry map.
func checkAggregates(t *testing.T, wi *WorkspaceIndex) {
	t.Helper()
	entries := wi.Snapshot()
	if wi.FileCount() != len(entries) {
		t.Errorf("FileCount = %d, want %d", wi.FileCount(), len(entries))
	}
	var total int64
	for _, e := range entries {
		total += e.SizeBytes
	}
	if wi.TotalSizeBytes() != total {
		t.Errorf("TotalSizeBytes = %d, want %d", wi.TotalSizeBytes(), total)
	}
}

func Test_WorkspaceIndex_UpsertNew(t *testing.T) {
	wi := NewWorkspaceIndex("/ws")

	wi.Upsert(entry("a.ts", 50))
	wi.Upsert(entry("b.md", 20))

	if wi.FileCount() != 2 {
		t.Errorf("FileCount = %d, want 2", wi.FileCount())
	}
	if wi.TotalSizeBytes() != 70 {
		t.Errorf("TotalSizeBytes = %d, want 70", wi.TotalSizeBytes())
	}
	checkAggregates(t, wi)
}

func Test_WorkspaceIndex_UpsertReplace(t *testing.T) {
	wi := NewWorkspaceIndex("/ws")

	wi.Upsert(entry("a.ts", 50))
	wi.Upsert(entry("a.ts", 80))

	if wi.FileCount() != 1 {
		t.Errorf("FileCount = %d, want 1 after replace", wi.FileCount())
	}
	if wi.TotalSizeBytes() != 80 {
		t.Errorf("TotalSizeBytes = %d, want 80 after replace", wi.TotalSizeBytes())
	}
	checkAggregates(t, wi)
}

func Test_WorkspaceIndex_Remove(t *testing.T) {
	wi := NewWorkspaceIndex("/ws")

	wi.Upsert(entry("a.ts", 50))
	wi.Upsert(entry("b.md", 20))

	if !wi.Remove("a.ts") {
		t.Fatal("expected Remove to report an existing entry")
	}
	if wi.FileCount() != 1 || wi.TotalSizeBytes() != 20 {
		t.Errorf("after remove: count=%d size=%d, want 1/20", wi.FileCount(), wi.TotalSizeBytes())
	}
	if wi.Remove("a.ts") {
		t.Error("expected second Remove to report no entry")
	}
	checkAggregates(t, wi)
}

func Test_WorkspaceIndex_RemovePrefix(t *testing.T) {
	wi := NewWorkspaceIndex("/ws")

	wi.Upsert(entry("src/a.go", 10))
	wi.Upsert(entry("src/sub/b.go", 20))
	wi.Upsert(entry("srcdir/c.go", 30))
	wi.Upsert(entry("main.go", 40))

	removed := wi.RemovePrefix("src")
	if removed != 2 {
		t.Errorf("RemovePrefix removed %d entries, want 2", removed)
	}
	if wi.Get("srcdir/c.go") == nil {
		t.Error("expected srcdir/c.go to survive RemovePrefix(src)")
	}
	if wi.TotalSizeBytes() != 70 {
		t.Errorf("TotalSizeBytes = %d, want 70", wi.TotalSizeBytes())
	}
	checkAggregates(t, wi)
}

func Test_WorkspaceIndex_InvariantsUnderInterleaving(t *testing.T) {
	wi := NewWorkspaceIndex("/ws")

	for i := 0; i < 50; i++ {
		wi.Upsert(entry(fmt.Sprintf("f%02d.go", i), int64(i)))
		if i%3 == 0 {
			wi.Remove(fmt.Sprintf("f%02d.go", i/2))
		}
		if i%7 == 0 {
			wi.Upsert(entry(fmt.Sprintf("f%02d.go", i), int64(i*2)))
		}
		checkAggregates(t, wi)
	}
}

func Test_WorkspaceIndex_SnapshotSorted(t *testing.T) {
	wi := NewWorkspaceIndex("/ws")

	wi.Upsert(entry("zeta.go", 1))
	wi.Upsert(entry("alpha.go", 1))
	wi.Upsert(entry("mid.go", 1))

	snapshot := wi.Snapshot()
	want := []string{"alpha.go", "mid.go", "zeta.go"}
	for i, relativePath := range want {
		if snapshot[i].RelativePath != relativePath {
			t.Errorf("snapshot[%d] = %s, want %s", i, snapshot[i].RelativePath, relativePath)
		}
	}
}

func Test_WorkspaceIndex_LanguageCounts(t *testing.T) {
	wi := NewWorkspaceIndex("/ws")

	a := entry("a.go", 1)
	b := entry("b.go", 1)
	c := entry("c.md", 1)
	c.Language = "markdown"
	wi.Upsert(a)
	wi.Upsert(b)
	wi.Upsert(c)

	counts := wi.LanguageCounts()
	if counts["go"] != 2 || counts["markdown"] != 1 {
		t.Errorf("LanguageCounts = %v, want go:2 markdown:1", counts)
	}
}

func Test_WorkspaceIndex_SymbolCount(t *testing.T) {
	wi := NewWorkspaceIndex("/ws")

	a := entry("a.go", 1)
	a.Symbols = []symbol.Info{
		{Name: "Server", Kind: symbol.KindStruct, Children: []symbol.Info{
			{Name: "Start", Kind: symbol.KindMethod},
		}},
	}
	b := entry("b.md", 1)
	wi.Upsert(a)
	wi.Upsert(b)

	if got := wi.SymbolCount(); got != 2 {
		t.Errorf("SymbolCount = %d, want 2 (nested included)", got)
	}

	wi.Remove("a.go")
	if got := wi.SymbolCount(); got != 0 {
		t.Errorf("SymbolCount after remove = %d, want 0", got)
	}
}

func Test_WorkspaceIndex_LastUpdated(t *testing.T) {
	wi := NewWorkspaceIndex("/ws")

	if !wi.LastUpdated().IsZero() {
		t.Error("expected zero LastUpdated before any mutation")
	}
	wi.Upsert(entry("a.go", 1))
	if wi.LastUpdated().IsZero() {
		t.Error("expected LastUpdated to be set after Upsert")
	}
}
