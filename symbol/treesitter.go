package symbol

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// nodeSpec maps one tree-sitter node type to a symbol kind and the field
// holding its name.
type nodeSpec struct {
	kind      Kind
	nameField string
}

var goNodes = map[string]nodeSpec{
	"function_declaration": {KindFunction, "name"},
	"method_declaration":   {KindMethod, "name"},
	"type_spec":            {KindType, "name"},
	"const_spec":           {KindConstant, "name"},
	"var_spec":             {KindVariable, "name"},
}

var javascriptNodes = map[string]nodeSpec{
	"function_declaration":           {KindFunction, "name"},
	"generator_function_declaration": {KindFunction, "name"},
	"class_declaration":              {KindClass, "name"},
	"method_definition":              {KindMethod, "name"},
	"variable_declarator":            {KindVariable, "name"},
}

var typescriptNodes = map[string]nodeSpec{
	"function_declaration":           {KindFunction, "name"},
	"generator_function_declaration": {KindFunction, "name"},
	"class_declaration":              {KindClass, "name"},
	"abstract_class_declaration":     {KindClass, "name"},
	"method_definition":              {KindMethod, "name"},
	"variable_declarator":            {KindVariable, "name"},
	"interface_declaration":          {KindInterface, "name"},
	"enum_declaration":               {KindEnum, "name"},
	"type_alias_declaration":         {KindType, "name"},
}

var pythonNodes = map[string]nodeSpec{
	"function_definition": {KindFunction, "name"},
	"class_definition":    {KindClass, "name"},
}

var rustNodes = map[string]nodeSpec{
	"function_item": {KindFunction, "name"},
	"struct_item":   {KindStruct, "name"},
	"enum_item":     {KindEnum, "name"},
	"trait_item":    {KindInterface, "name"},
	"type_item":     {KindType, "name"},
	"const_item":    {KindConstant, "name"},
	"static_item":   {KindVariable, "name"},
	"mod_item":      {KindModule, "name"},
}

var javaNodes = map[string]nodeSpec{
	"class_declaration":       {KindClass, "name"},
	"interface_declaration":   {KindInterface, "name"},
	"enum_declaration":        {KindEnum, "name"},
	"method_declaration":      {KindMethod, "name"},
	"constructor_declaration": {KindMethod, "name"},
}

var cNodes = map[string]nodeSpec{
	"function_definition": {KindFunction, "declarator"},
	"struct_specifier":    {KindStruct, "name"},
	"enum_specifier":      {KindEnum, "name"},
}

var cppNodes = map[string]nodeSpec{
	"function_definition": {KindFunction, "declarator"},
	"class_specifier":     {KindClass, "name"},
	"struct_specifier":    {KindStruct, "name"},
	"enum_specifier":      {KindEnum, "name"},
}

var rubyNodes = map[string]nodeSpec{
	"method":           {KindMethod, "name"},
	"singleton_method": {KindMethod, "name"},
	"class":            {KindClass, "name"},
	"module":           {KindModule, "name"},
}

type grammar struct {
	lang  *sitter.Language
	nodes map[string]nodeSpec
}

// TreeSitterProvider extracts symbol trees with tree-sitter grammars.
// Safe for concurrent use: each Extract call creates its own parser.
type TreeSitterProvider struct {
	grammars map[string]grammar
}

// NewTreeSitterProvider returns a provider covering the languages listed in
// language.IsSymbolLanguage.
func NewTreeSitterProvider() *TreeSitterProvider {
	return &TreeSitterProvider{
		grammars: map[string]grammar{
			"go":         {golang.GetLanguage(), goNodes},
			"javascript": {javascript.GetLanguage(), javascriptNodes},
			"typescript": {ts.GetLanguage(), typescriptNodes},
			"python":     {python.GetLanguage(), pythonNodes},
			"rust":       {rust.GetLanguage(), rustNodes},
			"java":       {java.GetLanguage(), javaNodes},
			"c":          {c.GetLanguage(), cNodes},
			"cpp":        {cpp.GetLanguage(), cppNodes},
			"ruby":       {ruby.GetLanguage(), rubyNodes},
		},
	}
}

// Supports reports whether a grammar is available for the language identifier.
func (p *TreeSitterProvider) Supports(language string) bool {
	_, ok := p.grammars[language]
	return ok
}

// Extract parses content and returns the file's root-level symbols.
func (p *TreeSitterProvider) Extract(ctx context.Context, path string, content []byte, language string) ([]Info, error) {
	g, ok := p.grammars[language]
	if !ok {
		return nil, fmt.Errorf("no grammar for language %q", language)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(g.lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	return collect(tree.RootNode(), content, g.nodes), nil
}

// collect walks the subtree under node and returns the symbols found,
// preserving nesting: a matched node's own subtree becomes its children.
func collect(node *sitter.Node, src []byte, nodes map[string]nodeSpec) []Info {
	var out []Info
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if spec, ok := nodes[child.Type()]; ok {
			if info, ok := makeInfo(child, src, spec, nodes); ok {
				out = append(out, info)
				continue
			}
		}
		out = append(out, collect(child, src, nodes)...)
	}
	return out
}

func makeInfo(node *sitter.Node, src []byte, spec nodeSpec, nodes map[string]nodeSpec) (Info, bool) {
	name := nameOf(node, spec.nameField, src)
	if name == "" {
		return Info{}, false
	}

	return Info{
		Name: name,
		Kind: refineKind(node, spec.kind),
		Range: Range{
			Start: Position{Line: int(node.StartPoint().Row), Column: int(node.StartPoint().Column)},
			End:   Position{Line: int(node.EndPoint().Row), Column: int(node.EndPoint().Column)},
		},
		Detail:   detailOf(node, src),
		Children: collect(node, src, nodes),
	}, true
}

// nameOf resolves the name node, unwrapping C/C++ declarator chains down to
// the underlying identifier.
func nameOf(node *sitter.Node, field string, src []byte) string {
	n := node.ChildByFieldName(field)
	for n != nil {
		switch n.Type() {
		case "identifier", "field_identifier", "type_identifier",
			"property_identifier", "qualified_identifier", "constant":
			return n.Content(src)
		}
		if d := n.ChildByFieldName("declarator"); d != nil {
			n = d
			continue
		}
		if d := n.ChildByFieldName("name"); d != nil {
			n = d
			continue
		}
		break
	}
	if n == nil {
		return ""
	}
	return n.Content(src)
}

// refineKind splits Go's generic type_spec into struct/interface kinds.
func refineKind(node *sitter.Node, kind Kind) Kind {
	if kind != KindType || node.Type() != "type_spec" {
		return kind
	}
	if t := node.ChildByFieldName("type"); t != nil {
		switch t.Type() {
		case "struct_type":
			return KindStruct
		case "interface_type":
			return KindInterface
		}
	}
	return kind
}

// detailOf captures the parameter list for function-like nodes.
func detailOf(node *sitter.Node, src []byte) string {
	if params := node.ChildByFieldName("parameters"); params != nil {
		return params.Content(src)
	}
	return ""
}
