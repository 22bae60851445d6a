// Package symbol defines the symbol model stored in the index and the
// Provider boundary to whatever actually parses source files.
package symbol

import "context"

// Kind classifies a symbol.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindType      Kind = "type"
	KindModule    Kind = "module"
	KindVariable  Kind = "variable"
	KindConstant  Kind = "constant"
)

// Position is a zero-based line/column location within a file.
type Position struct {
	Line   int
	Column int
}

// Range spans from Start to End, inclusive of the construct's full extent.
// Providers must deliver Start <= End; the index stores trees as returned.
type Range struct {
	Start Position
	End   Position
}

// Info is one node in a file's symbol tree. Children are the symbols nested
// inside this one (methods of a class, locals of a function), in source order.
type Info struct {
	Name     string
	Kind     Kind
	Range    Range
	Detail   string // optional, e.g. a function's parameter list
	Children []Info
}

// Provider supplies symbol trees for file content. Extraction failures are
// per-file: the caller stores the entry without symbols and moves on.
type Provider interface {
	// Supports reports whether Extract can handle the given language identifier.
	Supports(language string) bool
	// Extract returns the root-level symbols for one file's content.
	Extract(ctx context.Context, path string, content []byte, language string) ([]Info, error)
}

// Count returns the total number of symbols in a tree, nested included.
func Count(symbols []Info) int {
	n := len(symbols)
	for _, s := range symbols {
		n += Count(s.Children)
	}
	return n
}
