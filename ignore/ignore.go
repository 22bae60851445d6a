package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides whether a path participates in indexing.
// It layers the baked-in default set, caller-supplied excluded directory names
// (each expanded to **/<name>/** globs), .gitignore rules, and .codescopeignore
// rules. Thread-safe: Reload() acquires a write lock, the Should* methods
// acquire a read lock.
type Matcher struct {
	mu               sync.RWMutex
	rootDir          string
	dirPatterns      []string // expanded doublestar globs from ExcludedDirs
	gitIgnore        gitignore.GitIgnore
	scopeIgnore      gitignore.GitIgnore
	maxFileSizeBytes int64
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir          string
	ExcludedDirs     []string // directory names, e.g. "generated"
	MaxFileSizeBytes int64
}

// NewMatcher creates a matcher rooted at options.RootDir.
func NewMatcher(options MatcherOptions) *Matcher {
	m := &Matcher{
		rootDir:          options.RootDir,
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}

	if m.maxFileSizeBytes <= 0 {
		m.maxFileSizeBytes = 1024 * 1024 // 1MB default
	}

	for _, name := range options.ExcludedDirs {
		name = strings.Trim(strings.TrimSpace(name), "/")
		if name == "" {
			continue
		}
		// Match the directory itself and everything below it, at any depth.
		m.dirPatterns = append(m.dirPatterns, "**/"+name, "**/"+name+"/**")
	}

	m.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	m.scopeIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".codescopeignore"), options.RootDir)

	return m
}

// ShouldIgnore returns true if the given path must be excluded from indexing.
// The path should be absolute or relative to the root directory.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	// Normalize to forward slashes for consistent matching
	relativePath = filepath.ToSlash(relativePath)

	if matchesDefaults(relativePath) {
		return true
	}

	for _, pattern := range m.dirPatterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
	}

	// gitignore matching needs to know whether the path is a directory; a
	// failed stat (file already deleted) falls back to file semantics.
	isDir := false
	if info, err := os.Stat(absolutePath); err == nil {
		isDir = info.IsDir()
	}

	if m.gitIgnore != nil {
		if match := m.gitIgnore.Relative(relativePath, isDir); match != nil && match.Ignore() {
			return true
		}
	}

	if m.scopeIgnore != nil {
		if match := m.scopeIgnore.Relative(relativePath, isDir); match != nil && match.Ignore() {
			return true
		}
	}

	return false
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely
// during traversal.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	dirName := strings.ToLower(filepath.Base(absolutePath))

	// Fast path: baked-in directory names, no lock needed
	if _, ok := defaultDirSet[dirName]; ok {
		return true
	}

	return m.ShouldIgnore(absolutePath)
}

// IsFileTooLarge returns true if the file exceeds the max file size limit.
func (m *Matcher) IsFileTooLarge(fileSize int64) bool {
	return fileSize > m.maxFileSizeBytes
}

// MaxFileSizeBytes returns the configured maximum file size.
func (m *Matcher) MaxFileSizeBytes() int64 {
	return m.maxFileSizeBytes
}

// Reload re-reads .gitignore and .codescopeignore from disk. Called by the
// indexing service when the watcher sees either file change.
func (m *Matcher) Reload() {
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)
	newScopeIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".codescopeignore"), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
	m.scopeIgnore = newScopeIgnore
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses the io.Reader form so the file handle is closed promptly on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
