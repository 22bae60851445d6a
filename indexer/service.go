// Package indexer wires the pieces of the project code index together: it
// owns the per-workspace stores, schedules debounced re-index passes, applies
// watcher events, and serves name queries.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nvarga/codescope-mcp/ignore"
	"github.com/nvarga/codescope-mcp/index"
	"github.com/nvarga/codescope-mcp/symbol"
	"github.com/nvarga/codescope-mcp/watcher"
)

const (
	// DefaultDebounce is the quiet period before a burst of change events
	// triggers a re-index pass.
	DefaultDebounce = time.Second
	// DefaultBatchSize bounds how many entries one pass builds concurrently.
	DefaultBatchSize = 100
)

// Options configures a Service.
type Options struct {
	Provider     symbol.Provider // nil disables symbol extraction
	Logger       *slog.Logger
	ExcludedDirs []string // extra directory names to ignore
	MaxFileSize  int64
	Debounce     time.Duration
	BatchSize    int
	DisableWatch bool // no live updates; refresh on demand only
}

// UpdateEvent is published after a re-index pass completes.
type UpdateEvent struct {
	RootPath       string
	FileCount      int
	TotalSizeBytes int64
	Duration       time.Duration
}

// WorkspaceStats is a point-in-time summary of one workspace index.
type WorkspaceStats struct {
	RootPath       string
	FileCount      int
	SymbolCount    int
	TotalSizeBytes int64
	LastUpdated    time.Time
	Languages      map[string]int
}

// workspace bundles the per-root collaborators.
type workspace struct {
	store   *index.WorkspaceIndex
	matcher *ignore.Matcher
	builder *index.Builder
	watcher *watcher.Watcher
}

// Service is the project code index. Construct with New, register roots with
// AddWorkspace, and pass the instance to consumers; there is no package-level
// singleton.
type Service struct {
	opts   Options
	logger *slog.Logger

	mu         sync.RWMutex
	workspaces map[string]*workspace

	scheduler *Scheduler

	subMu     sync.Mutex
	subs      map[int]chan UpdateEvent
	nextSubID int
	subClosed bool
}

// New creates an index service. No workspaces are indexed until AddWorkspace.
func New(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	s := &Service{
		opts:       opts,
		logger:     opts.Logger,
		workspaces: make(map[string]*workspace),
		subs:       make(map[int]chan UpdateEvent),
	}
	s.scheduler = NewScheduler(opts.Debounce, s.runPass)
	return s
}

// AddWorkspace registers a root, starts its watcher, and schedules the
// initial indexing pass. Adding an already-registered root is a no-op.
func (s *Service) AddWorkspace(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving workspace root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return fmt.Errorf("workspace root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace root %s is not a directory", absRoot)
	}

	s.mu.Lock()
	if _, exists := s.workspaces[absRoot]; exists {
		s.mu.Unlock()
		return nil
	}

	matcher := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          absRoot,
		ExcludedDirs:     s.opts.ExcludedDirs,
		MaxFileSizeBytes: s.opts.MaxFileSize,
	})
	ws := &workspace{
		store:   index.NewWorkspaceIndex(absRoot),
		matcher: matcher,
		builder: &index.Builder{
			Root:        absRoot,
			Provider:    s.opts.Provider,
			MaxFileSize: matcher.MaxFileSizeBytes(),
			Logger:      s.logger,
		},
	}

	if !s.opts.DisableWatch {
		w, err := watcher.New(absRoot, matcher, s.logger)
		if err != nil {
			s.logger.Warn("file watcher unavailable, continuing without live updates",
				"root", absRoot, "error", err)
		} else {
			ws.watcher = w
		}
	}

	s.workspaces[absRoot] = ws
	s.mu.Unlock()

	if ws.watcher != nil {
		go ws.watcher.Start()
		go s.consumeEvents(absRoot, ws)
	}

	s.scheduler.Trigger(absRoot)
	return nil
}

// Refresh schedules a re-index of one workspace, or of all registered
// workspaces when root is empty. It returns once the passes are queued, not
// once they complete; await completion through Subscribe.
func (s *Service) Refresh(root string) error {
	if root == "" {
		for _, r := range s.roots() {
			s.scheduler.Trigger(r)
		}
		return nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving workspace root %s: %w", root, err)
	}
	s.mu.RLock()
	_, ok := s.workspaces[absRoot]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("workspace not registered: %s", root)
	}
	s.scheduler.Trigger(absRoot)
	return nil
}

// Workspace returns the index for a registered root.
func (s *Service) Workspace(root string) (*index.WorkspaceIndex, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[absRoot]
	if !ok {
		return nil, false
	}
	return ws.store, true
}

// Stats returns a summary for one registered root.
func (s *Service) Stats(root string) (WorkspaceStats, bool) {
	store, ok := s.Workspace(root)
	if !ok {
		return WorkspaceStats{}, false
	}
	return WorkspaceStats{
		RootPath:       store.RootPath(),
		FileCount:      store.FileCount(),
		SymbolCount:    store.SymbolCount(),
		TotalSizeBytes: store.TotalSizeBytes(),
		LastUpdated:    store.LastUpdated(),
		Languages:      store.LanguageCounts(),
	}, true
}

// AllStats returns summaries for every registered root, sorted by root path.
func (s *Service) AllStats() []WorkspaceStats {
	var stats []WorkspaceStats
	for _, root := range s.roots() {
		if st, ok := s.Stats(root); ok {
			stats = append(stats, st)
		}
	}
	return stats
}

// Subscribe registers for index-updated notifications. The returned function
// unsubscribes and closes the channel. Slow subscribers drop events rather
// than stalling the indexing pass.
func (s *Service) Subscribe() (<-chan UpdateEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan UpdateEvent, 16)
	if s.subClosed {
		close(ch)
		return ch, func() {}
	}
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Close stops watchers and scheduling. Indexed state remains queryable.
func (s *Service) Close() {
	s.scheduler.Close()

	s.mu.Lock()
	for _, ws := range s.workspaces {
		if ws.watcher != nil {
			ws.watcher.Close()
		}
	}
	s.mu.Unlock()

	s.subMu.Lock()
	s.subClosed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.subMu.Unlock()
}

// consumeEvents applies one workspace's watcher events until its channel closes.
func (s *Service) consumeEvents(root string, ws *workspace) {
	for ev := range ws.watcher.Events() {
		relativePath, err := filepath.Rel(root, ev.Path)
		if err != nil {
			continue
		}
		relativePath = filepath.ToSlash(relativePath)

		switch ev.Op {
		case watcher.OpRemove, watcher.OpRename:
			// Deletions bypass the debounce path: they are cheap, idempotent,
			// and must not be masked by in-flight re-index churn.
			if ws.store.Remove(relativePath) {
				s.logger.Debug("removed from index", "root", root, "path", relativePath)
			} else if n := ws.store.RemovePrefix(relativePath); n > 0 {
				s.logger.Debug("removed directory from index",
					"root", root, "path", relativePath, "files", n)
			}

		case watcher.OpCreate, watcher.OpWrite:
			base := filepath.Base(ev.Path)
			if base == ".gitignore" || base == ".codescopeignore" {
				ws.matcher.Reload()
				s.logger.Info("reloaded ignore rules", "root", root, "trigger", base)
			}
			s.scheduler.MarkDirty(root)
		}
	}
}

// runPass executes one full re-index pass for root: enumerate, build in
// concurrent batches, apply to the store sequentially, reconcile deletions,
// notify.
func (s *Service) runPass(root string) {
	s.mu.RLock()
	ws := s.workspaces[root]
	s.mu.RUnlock()
	if ws == nil {
		return
	}

	start := time.Now()
	relPaths := enumerate(root, ws.matcher)

	for lo := 0; lo < len(relPaths); lo += s.opts.BatchSize {
		hi := lo + s.opts.BatchSize
		if hi > len(relPaths) {
			hi = len(relPaths)
		}
		batch := relPaths[lo:hi]

		results := make([]*index.Entry, len(batch))
		g, ctx := errgroup.WithContext(context.Background())
		for i, relativePath := range batch {
			g.Go(func() error {
				entry, status := ws.builder.Build(ctx, relativePath, ws.store.Get(relativePath))
				if status == index.BuildUpdated {
					results[i] = entry
				}
				return nil
			})
		}
		g.Wait()

		// Store mutations are applied sequentially so the aggregate counters
		// never see a half-applied batch.
		for _, entry := range results {
			if entry != nil {
				ws.store.Upsert(entry)
			}
		}
	}

	// Reconcile entries whose files vanished without a watcher event.
	enumerated := make(map[string]struct{}, len(relPaths))
	for _, relativePath := range relPaths {
		enumerated[relativePath] = struct{}{}
	}
	for _, entry := range ws.store.Snapshot() {
		if _, ok := enumerated[entry.RelativePath]; !ok {
			ws.store.Remove(entry.RelativePath)
		}
	}

	ev := UpdateEvent{
		RootPath:       root,
		FileCount:      ws.store.FileCount(),
		TotalSizeBytes: ws.store.TotalSizeBytes(),
		Duration:       time.Since(start),
	}
	s.publish(ev)
	s.logger.Info("index updated",
		"root", root,
		"files", ev.FileCount,
		"totalSize", ev.TotalSizeBytes,
		"duration", ev.Duration,
	)
}

// publish fans an update event out to subscribers without blocking.
func (s *Service) publish(ev UpdateEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// roots returns registered workspace roots in sorted order.
func (s *Service) roots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roots := make([]string, 0, len(s.workspaces))
	for root := range s.workspaces {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// enumerate walks root and returns all indexable relative paths, sorted.
func enumerate(root string, matcher *ignore.Matcher) []string {
	var relPaths []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && matcher.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.ShouldIgnore(path) {
			return nil
		}
		relativePath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPaths = append(relPaths, filepath.ToSlash(relativePath))
		return nil
	})
	sort.Strings(relPaths)
	return relPaths
}
