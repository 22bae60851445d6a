package indexer

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/nvarga/codescope-mcp/index"
	"github.com/nvarga/codescope-mcp/symbol"
)

// DefaultMaxResults caps query results when the caller does not.
const DefaultMaxResults = 100

// FileSearchOptions filters a file name search.
type FileSearchOptions struct {
	Workspace  string   // restrict to one root; empty searches all
	MaxResults int      // default DefaultMaxResults
	FileTypes  []string // language identifiers, e.g. "go", "typescript"
}

// SymbolSearchOptions filters a symbol name search.
type SymbolSearchOptions struct {
	Workspace  string
	MaxResults int
	Kinds      []symbol.Kind
}

// SymbolMatch pairs a matched symbol with the entry it was found in.
type SymbolMatch struct {
	Entry  *index.Entry
	Symbol symbol.Info
}

// SearchFiles returns entries whose base name contains query,
// case-insensitively. Workspaces are scanned in sorted root order and entries
// in sorted path order, so results are deterministic.
func (s *Service) SearchFiles(query string, opts FileSearchOptions) []*index.Entry {
	needle := strings.ToLower(query)
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	languages := make(map[string]struct{}, len(opts.FileTypes))
	for _, lang := range opts.FileTypes {
		languages[strings.ToLower(lang)] = struct{}{}
	}

	var results []*index.Entry
	for _, store := range s.storesFor(opts.Workspace) {
		for _, entry := range store.Snapshot() {
			if len(results) >= maxResults {
				return results
			}
			if len(languages) > 0 {
				if _, ok := languages[entry.Language]; !ok {
					continue
				}
			}
			if strings.Contains(strings.ToLower(path.Base(entry.RelativePath)), needle) {
				results = append(results, entry)
			}
		}
	}
	return results
}

// SearchSymbols returns (entry, symbol) pairs whose symbol name contains
// query, case-insensitively. Each file's tree is walked depth-first, parent
// before children.
func (s *Service) SearchSymbols(query string, opts SymbolSearchOptions) []SymbolMatch {
	needle := strings.ToLower(query)
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	kinds := make(map[symbol.Kind]struct{}, len(opts.Kinds))
	for _, kind := range opts.Kinds {
		kinds[kind] = struct{}{}
	}

	var results []SymbolMatch
	for _, store := range s.storesFor(opts.Workspace) {
		for _, entry := range store.Snapshot() {
			if len(entry.Symbols) == 0 {
				continue
			}
			if !collectSymbolMatches(entry, entry.Symbols, needle, kinds, maxResults, &results) {
				return results
			}
		}
	}
	return results
}

// collectSymbolMatches appends matches from one subtree, depth-first.
// Returns false once maxResults is reached.
func collectSymbolMatches(
	entry *index.Entry,
	symbols []symbol.Info,
	needle string,
	kinds map[symbol.Kind]struct{},
	maxResults int,
	out *[]SymbolMatch,
) bool {
	for _, sym := range symbols {
		if len(*out) >= maxResults {
			return false
		}
		kindOK := len(kinds) == 0
		if !kindOK {
			_, kindOK = kinds[sym.Kind]
		}
		if kindOK && strings.Contains(strings.ToLower(sym.Name), needle) {
			*out = append(*out, SymbolMatch{Entry: entry, Symbol: sym})
		}
		if !collectSymbolMatches(entry, sym.Children, needle, kinds, maxResults, out) {
			return false
		}
	}
	return true
}

// storesFor resolves which workspace stores a query covers, in sorted root
// order. Stores are read-only from the query's perspective.
func (s *Service) storesFor(root string) []*index.WorkspaceIndex {
	if root != "" {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil
		}
		s.mu.RLock()
		defer s.mu.RUnlock()
		if ws, ok := s.workspaces[absRoot]; ok {
			return []*index.WorkspaceIndex{ws.store}
		}
		return nil
	}

	roots := s.roots()
	s.mu.RLock()
	defer s.mu.RUnlock()
	stores := make([]*index.WorkspaceIndex, 0, len(roots))
	for _, r := range roots {
		if ws, ok := s.workspaces[r]; ok {
			stores = append(stores, ws.store)
		}
	}
	return stores
}
