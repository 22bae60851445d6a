package language

import (
	"path/filepath"
	"strings"
)

// Plaintext is the sentinel identifier for files whose language is unknown.
const Plaintext = "plaintext"

// extensionToLanguage maps file extensions (without dot) to language identifiers.
var extensionToLanguage = map[string]string{
	// Go
	"go": "go",
	// JavaScript / TypeScript
	"js": "javascript", "jsx": "javascript", "mjs": "javascript", "cjs": "javascript",
	"ts": "typescript", "tsx": "typescript", "mts": "typescript", "cts": "typescript",
	// Python
	"py": "python", "pyi": "python", "pyw": "python",
	// Rust
	"rs": "rust",
	// Java / Kotlin
	"java": "java", "kt": "kotlin", "kts": "kotlin",
	// C / C++
	"c": "c", "h": "c",
	"cpp": "cpp", "cc": "cpp", "cxx": "cpp", "hpp": "cpp", "hxx": "cpp",
	// C#
	"cs": "csharp",
	// Ruby
	"rb": "ruby", "erb": "ruby",
	// PHP
	"php": "php",
	// Swift / Dart
	"swift": "swift",
	"dart":  "dart",
	// Shell
	"sh": "shell", "bash": "shell", "zsh": "shell",
	"ps1": "powershell", "psm1": "powershell",
	// Web
	"html": "html", "htm": "html",
	"css": "css", "scss": "scss", "less": "less",
	// Data / Config
	"json": "json", "jsonc": "json",
	"yaml": "yaml", "yml": "yaml",
	"toml": "toml",
	"xml":  "xml",
	"ini":  "ini",
	// Markup
	"md": "markdown", "mdx": "markdown",
	"rst": "restructuredtext",
	// SQL
	"sql": "sql",
	// GraphQL
	"graphql": "graphql", "gql": "graphql",
	// Protocol Buffers
	"proto": "protobuf",
	// Terraform
	"tf": "terraform", "tfvars": "terraform",
	// Misc languages
	"lua":   "lua",
	"scala": "scala",
	"ex":    "elixir", "exs": "elixir",
	"hs":  "haskell",
	"zig": "zig",
	// Component frameworks
	"vue": "vue", "svelte": "svelte",
}

// symbolLanguages is the subset of identifiers the symbol provider carries
// tree-sitter grammars for. Must stay aligned with symbol.NewTreeSitterProvider.
var symbolLanguages = map[string]struct{}{
	"go":         {},
	"javascript": {},
	"typescript": {},
	"python":     {},
	"rust":       {},
	"java":       {},
	"c":          {},
	"cpp":        {},
	"ruby":       {},
}

// Detect returns the language identifier for a file path based on its
// extension (case-insensitive). Returns Plaintext for unmapped extensions.
func Detect(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if ext == "" {
		// Filename-based detection for extensionless files
		switch strings.ToLower(filepath.Base(filePath)) {
		case "makefile", "gnumakefile":
			return "makefile"
		case "dockerfile":
			return "dockerfile"
		case "gemfile", "rakefile":
			return "ruby"
		}
		return Plaintext
	}

	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}
	return Plaintext
}

// IsSymbolLanguage reports whether symbol extraction is attempted for files of
// the given language.
func IsSymbolLanguage(lang string) bool {
	_, ok := symbolLanguages[lang]
	return ok
}
