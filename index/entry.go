// Package index holds the per-workspace file index: entry records, the
// authoritative store with aggregate counters, and the builder that assembles
// entries from disk.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/nvarga/codescope-mcp/symbol"
)

// Entry is the stored index record for one file. Entries are immutable once
// stored; the builder always allocates a fresh Entry on change, so readers may
// hold a pointer without locking.
type Entry struct {
	Path         string    // absolute file path
	RelativePath string    // path relative to workspace root (forward slashes), the stable key
	Language     string    // language identifier, "plaintext" if unknown
	SizeBytes    int64     // content length in bytes
	ModTime      time.Time // cheap first-pass change filter
	LineCount    int
	Hash         string        // content fingerprint, suppresses redundant re-extraction
	Symbols      []symbol.Info // nil for non-code files and failed extractions
}

// HashContent returns the hex fingerprint of file content. Identical bytes
// always produce identical fingerprints; collision resistance at workspace
// scale is all that is needed.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
