package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvarga/codescope-mcp/language"
	"github.com/nvarga/codescope-mcp/symbol"
)

// BuildStatus reports the outcome of building one entry.
type BuildStatus int

const (
	// BuildUpdated means a fresh entry was produced and should be stored.
	BuildUpdated BuildStatus = iota
	// BuildUnchanged means the stored entry is still current.
	BuildUnchanged
	// BuildSkipped means the file is unreadable, binary, or too large.
	BuildSkipped
)

// Builder assembles index entries from disk. It is pure with respect to the
// store: the scheduler applies results, the builder only reads files.
type Builder struct {
	Root        string
	Provider    symbol.Provider
	MaxFileSize int64
	Logger      *slog.Logger
}

// Build produces the entry for relativePath, given the previously stored
// entry (or nil). Modification time equality short-circuits without reading
// content; hash equality short-circuits symbol extraction, so a touch that
// rewrites identical bytes refreshes metadata without re-parsing.
func (b *Builder) Build(ctx context.Context, relativePath string, prev *Entry) (*Entry, BuildStatus) {
	absolutePath := filepath.Join(b.Root, filepath.FromSlash(relativePath))

	info, err := os.Stat(absolutePath)
	if err != nil {
		// Deleted between enumeration and read
		return nil, BuildSkipped
	}
	if b.MaxFileSize > 0 && info.Size() > b.MaxFileSize {
		return nil, BuildSkipped
	}
	if prev != nil && prev.ModTime.Equal(info.ModTime()) {
		return nil, BuildUnchanged
	}

	content, err := readFileWithRetry(absolutePath)
	if err != nil {
		b.Logger.Debug("unreadable file skipped", "path", relativePath, "error", err)
		return nil, BuildSkipped
	}
	if language.IsBinaryContent(content) {
		return nil, BuildSkipped
	}

	entry := &Entry{
		Path:         absolutePath,
		RelativePath: relativePath,
		Language:     language.Detect(absolutePath),
		SizeBytes:    int64(len(content)),
		ModTime:      info.ModTime(),
		LineCount:    strings.Count(string(content), "\n") + 1,
		Hash:         HashContent(content),
	}

	// Same bytes as before: reuse the symbol tree, skip extraction.
	if prev != nil && prev.Hash == entry.Hash {
		entry.Symbols = prev.Symbols
		return entry, BuildUpdated
	}

	if b.Provider != nil && language.IsSymbolLanguage(entry.Language) && b.Provider.Supports(entry.Language) {
		symbols, err := b.Provider.Extract(ctx, absolutePath, content, entry.Language)
		if err != nil {
			b.Logger.Debug("symbol extraction failed", "path", relativePath, "error", err)
		} else {
			entry.Symbols = symbols
		}
	}

	return entry, BuildUpdated
}

// readFileWithRetry attempts to read a file, retrying once after a short delay
// if the file is locked (common on Windows when editors are saving).
func readFileWithRetry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		time.Sleep(50 * time.Millisecond)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}
