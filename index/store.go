package index

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nvarga/codescope-mcp/symbol"
)

// WorkspaceIndex is the authoritative in-memory index for one workspace root.
// All mutation flows through Upsert/Remove/RemovePrefix, which keep the
// aggregate counters in step with the entry map. Created once per root and
// never destroyed for the lifetime of the process.
type WorkspaceIndex struct {
	mu          sync.RWMutex
	rootPath    string
	files       map[string]*Entry // key: relative path (forward slashes)
	totalSize   int64
	lastUpdated time.Time
}

// NewWorkspaceIndex creates an empty index for the given root.
func NewWorkspaceIndex(rootPath string) *WorkspaceIndex {
	return &WorkspaceIndex{
		rootPath: rootPath,
		files:    make(map[string]*Entry),
	}
}

// RootPath returns the workspace root this index covers.
func (wi *WorkspaceIndex) RootPath() string {
	return wi.rootPath
}

// Upsert adds or replaces the entry for its relative path, keeping totalSize
// consistent with the stored entries.
func (wi *WorkspaceIndex) Upsert(entry *Entry) {
	wi.mu.Lock()
	defer wi.mu.Unlock()

	if prev, ok := wi.files[entry.RelativePath]; ok {
		wi.totalSize -= prev.SizeBytes
	}
	wi.files[entry.RelativePath] = entry
	wi.totalSize += entry.SizeBytes
	wi.lastUpdated = time.Now()
}

// Remove deletes the entry for relativePath. Returns false if no entry existed.
func (wi *WorkspaceIndex) Remove(relativePath string) bool {
	wi.mu.Lock()
	defer wi.mu.Unlock()

	entry, ok := wi.files[relativePath]
	if !ok {
		return false
	}
	wi.totalSize -= entry.SizeBytes
	delete(wi.files, relativePath)
	wi.lastUpdated = time.Now()
	return true
}

// RemovePrefix deletes every entry under the given directory prefix (no
// trailing slash). Used when the watcher reports a directory removal as a
// single event. Returns the number of entries removed.
func (wi *WorkspaceIndex) RemovePrefix(prefix string) int {
	wi.mu.Lock()
	defer wi.mu.Unlock()

	prefix = strings.TrimSuffix(prefix, "/") + "/"
	removed := 0
	for relativePath, entry := range wi.files {
		if strings.HasPrefix(relativePath, prefix) {
			wi.totalSize -= entry.SizeBytes
			delete(wi.files, relativePath)
			removed++
		}
	}
	if removed > 0 {
		wi.lastUpdated = time.Now()
	}
	return removed
}

// Get returns the entry for relativePath, or nil if not indexed.
func (wi *WorkspaceIndex) Get(relativePath string) *Entry {
	wi.mu.RLock()
	defer wi.mu.RUnlock()
	return wi.files[relativePath]
}

// FileCount returns the number of indexed files.
func (wi *WorkspaceIndex) FileCount() int {
	wi.mu.RLock()
	defer wi.mu.RUnlock()
	return len(wi.files)
}

// TotalSizeBytes returns the aggregate size of all indexed files.
func (wi *WorkspaceIndex) TotalSizeBytes() int64 {
	wi.mu.RLock()
	defer wi.mu.RUnlock()
	return wi.totalSize
}

// LastUpdated returns the time of the most recent mutation, zero if none.
func (wi *WorkspaceIndex) LastUpdated() time.Time {
	wi.mu.RLock()
	defer wi.mu.RUnlock()
	return wi.lastUpdated
}

// SymbolCount returns the total number of indexed symbols, nested included.
func (wi *WorkspaceIndex) SymbolCount() int {
	wi.mu.RLock()
	defer wi.mu.RUnlock()

	n := 0
	for _, entry := range wi.files {
		n += symbol.Count(entry.Symbols)
	}
	return n
}

// LanguageCounts returns a language -> file count breakdown.
func (wi *WorkspaceIndex) LanguageCounts() map[string]int {
	wi.mu.RLock()
	defer wi.mu.RUnlock()

	counts := make(map[string]int)
	for _, entry := range wi.files {
		counts[entry.Language]++
	}
	return counts
}

// Snapshot returns the current entries sorted by relative path. The slice is
// a copy; callers must not retain the entries across index mutations longer
// than one query.
func (wi *WorkspaceIndex) Snapshot() []*Entry {
	wi.mu.RLock()
	defer wi.mu.RUnlock()

	paths := make([]string, 0, len(wi.files))
	for relativePath := range wi.files {
		paths = append(paths, relativePath)
	}
	sort.Strings(paths)

	entries := make([]*Entry, 0, len(paths))
	for _, relativePath := range paths {
		entries = append(entries, wi.files[relativePath])
	}
	return entries
}
