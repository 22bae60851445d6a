package ignore

import (
	"path"
	"strings"
)

// DefaultIgnoreDirs are directory names that never participate in indexing:
// version control metadata, dependency trees, build output, and caches.
// They are matched against every component of the relative path.
var DefaultIgnoreDirs = []string{
	// Version control
	".git",
	".svn",
	".hg",

	// Dependencies
	"node_modules",
	"vendor",
	"bower_components",
	".npm",
	".yarn",

	// Build output
	"dist",
	"build",
	"out",
	"target",
	"obj",

	// IDE / Editor
	".idea",
	".vscode",
	".vs",

	// Python
	"__pycache__",
	".venv",
	"venv",

	// Frameworks / caches
	".next",
	".nuxt",
	".cache",
	".parcel-cache",

	// Coverage output
	"coverage",
	".nyc_output",
	"htmlcov",
}

// DefaultIgnoreGlobs are basename patterns for files that carry no searchable
// code: compiled artifacts, archives, media, lock files, and logs.
var DefaultIgnoreGlobs = []string{
	// Compiled / binary
	"*.exe", "*.dll", "*.so", "*.dylib", "*.o", "*.a",
	"*.class", "*.jar", "*.war", "*.pyc",

	// Archives
	"*.zip", "*.tar", "*.gz", "*.tgz", "*.rar", "*.7z",

	// Images
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.ico", "*.webp",

	// Fonts
	"*.woff", "*.woff2", "*.ttf", "*.eot", "*.otf",

	// Media
	"*.mp3", "*.mp4", "*.avi", "*.mov", "*.wav",

	// Documents
	"*.pdf", "*.doc", "*.docx", "*.xls", "*.xlsx",

	// Minified / generated
	"*.min.js", "*.min.css", "*.map",

	// Lock files
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
	"go.sum", "Cargo.lock", "poetry.lock", "Gemfile.lock",

	// Editor swap / OS noise
	"*.swp", "*.swo", ".DS_Store", "Thumbs.db",

	// Logs and databases
	"*.log", "*.sqlite", "*.sqlite3", "*.db",
}

var defaultDirSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(DefaultIgnoreDirs))
	for _, name := range DefaultIgnoreDirs {
		set[strings.ToLower(name)] = struct{}{}
	}
	return set
}()

// matchesDefaults reports whether a relative path (forward slashes) is covered
// by the baked-in ignore set.
func matchesDefaults(relativePath string) bool {
	for _, part := range strings.Split(relativePath, "/") {
		if _, ok := defaultDirSet[strings.ToLower(part)]; ok {
			return true
		}
	}

	base := strings.ToLower(path.Base(relativePath))
	for _, pattern := range DefaultIgnoreGlobs {
		if matched, err := path.Match(strings.ToLower(pattern), base); err == nil && matched {
			return true
		}
	}
	return false
}
