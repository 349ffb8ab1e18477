package cursor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// maxDiagnostics caps how many syntax errors are reported per file.
const maxDiagnostics = 20

// Index parses C/C++ sources into lowered node trees. Safe for concurrent
// use: a fresh tree-sitter parser is created per Parse call.
type Index struct{}

// NewIndex returns a ready-to-use Index.
func NewIndex() *Index {
	return &Index{}
}

// Parse reads and parses one source file. args are clang-style flags; only
// -std= influences parsing (dialect selection), the rest are accepted for
// interface compatibility and ignored. The returned tree is best-effort:
// syntax errors become diagnostics, never a failed parse. Only an
// unreadable file or a failed tree-sitter run returns an error.
func (ix *Index) Parse(ctx context.Context, path string, args []string) (*TranslationUnitResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cursor: read %s: %w", path, err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(path, args))

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("cursor: parse %s: %w", path, err)
	}
	defer tree.Close()

	l := &lowerer{src: content, path: path}
	root := &Node{Kind: TranslationUnit}
	l.lower(tree.RootNode(), root)
	resolveCalls(root)

	return &TranslationUnitResult{
		Path:        path,
		Root:        root,
		Diagnostics: collectDiagnostics(tree.RootNode(), path),
	}, nil
}

// languageFor picks the grammar from an explicit -std= flag, falling back
// to the file extension. ".c" without a C++ standard parses as C;
// everything else (including headers) parses as C++.
func languageFor(path string, args []string) *sitter.Language {
	for _, a := range args {
		if strings.HasPrefix(a, "-std=c++") || strings.HasPrefix(a, "-std=gnu++") {
			return cpp.GetLanguage()
		}
		if strings.HasPrefix(a, "-std=c") || strings.HasPrefix(a, "-std=gnu") {
			return c.GetLanguage()
		}
	}
	if strings.ToLower(filepath.Ext(path)) == ".c" {
		return c.GetLanguage()
	}
	return cpp.GetLanguage()
}

// lowerer walks the concrete syntax tree and emits lowered nodes.
type lowerer struct {
	src  []byte
	path string
}

func (l *lowerer) text(n *sitter.Node) string {
	return compact(n.Content(l.src))
}

// compact collapses whitespace runs so multi-line declarators render as a
// single-line signature.
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// lower recursively translates cst into children of parent. Only scope
// nodes, function-like declarations, and call expressions produce lowered
// nodes; everything else is walked through transparently.
func (l *lowerer) lower(cst *sitter.Node, parent *Node) {
	switch cst.Type() {
	case "namespace_definition":
		ns := &Node{Kind: Namespace, File: l.path, Line: line(cst)}
		if name := cst.ChildByFieldName("name"); name != nil {
			ns.Spelling = l.text(name)
		}
		parent.AddChild(ns)
		if body := cst.ChildByFieldName("body"); body != nil {
			l.lowerChildren(body, ns)
		}

	case "class_specifier", "struct_specifier":
		body := cst.ChildByFieldName("body")
		if body == nil {
			return // forward declaration, no scope to enter
		}
		cls := &Node{Kind: Class, File: l.path, Line: line(cst)}
		if name := cst.ChildByFieldName("name"); name != nil {
			cls.Spelling = l.text(name)
		}
		parent.AddChild(cls)
		l.lowerChildren(body, cls)

	case "template_declaration":
		l.lowerTemplate(cst, parent)

	case "function_definition":
		l.lowerFunction(cst, parent, false)

	case "declaration", "field_declaration":
		if findFunctionDeclarator(cst) != nil {
			l.lowerFunction(cst, parent, false)
			return
		}
		// Non-function declarations may still contain calls (file-scope
		// initializers, member initializers).
		l.lowerChildren(cst, parent)

	case "call_expression":
		call := &Node{Kind: CallExpr, File: l.path, Line: line(cst)}
		if fn := cst.ChildByFieldName("function"); fn != nil {
			call.Spelling = l.text(fn)
		}
		parent.AddChild(call)
		// Nested calls in the argument list become siblings: only the
		// enclosing function context matters for aggregation.
		if argList := cst.ChildByFieldName("arguments"); argList != nil {
			l.lowerChildren(argList, parent)
		}

	default:
		l.lowerChildren(cst, parent)
	}
}

func (l *lowerer) lowerChildren(cst *sitter.Node, parent *Node) {
	for i := 0; i < int(cst.NamedChildCount()); i++ {
		l.lower(cst.NamedChild(i), parent)
	}
}

// lowerTemplate handles template_declaration wrappers: templated functions
// become FunctionTemplate nodes, templated classes become Class nodes.
func (l *lowerer) lowerTemplate(cst *sitter.Node, parent *Node) {
	for i := 0; i < int(cst.NamedChildCount()); i++ {
		inner := cst.NamedChild(i)
		switch inner.Type() {
		case "function_definition", "declaration", "field_declaration":
			if findFunctionDeclarator(inner) != nil {
				l.lowerFunction(inner, parent, true)
				return
			}
		case "class_specifier", "struct_specifier":
			l.lower(inner, parent)
			return
		}
	}
}

// lowerFunction emits a function/method/template node for a definition or
// prototype, then lowers the body (if any) into it.
func (l *lowerer) lowerFunction(decl *sitter.Node, parent *Node, template bool) {
	fd := findFunctionDeclarator(decl)
	if fd == nil {
		return
	}
	nameNode := fd.ChildByFieldName("declarator")
	if nameNode == nil {
		return
	}
	spelling := l.text(nameNode)
	signature := spelling
	if params := fd.ChildByFieldName("parameters"); params != nil {
		signature += l.text(params)
	}

	fn := &Node{
		Spelling:  spelling,
		Signature: signature,
		File:      l.path,
		Line:      line(decl),
	}
	switch {
	case template:
		fn.Kind = FunctionTemplate
	case parent.Kind == Class || nameNode.Type() == "qualified_identifier":
		fn.Kind = Method
	default:
		fn.Kind = FunctionDecl
	}
	if parent.Kind == Class {
		fn.Virtual = hasVirtualSpecifier(decl, l.src)
		fn.PureVirtual = fn.Virtual && isPureVirtual(decl, l.src)
	}
	parent.AddChild(fn)

	if body := decl.ChildByFieldName("body"); body != nil {
		l.lowerChildren(body, fn)
	}
}

// findFunctionDeclarator descends through pointer/reference declarator
// wrappers looking for a function_declarator. Returns nil for
// non-function declarations.
func findFunctionDeclarator(decl *sitter.Node) *sitter.Node {
	d := decl.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			return d
		case "pointer_declarator", "reference_declarator", "parenthesized_declarator":
			d = d.ChildByFieldName("declarator")
			if d == nil {
				return nil
			}
		default:
			return nil
		}
	}
	return nil
}

// hasVirtualSpecifier checks the declaration's direct children for the
// virtual keyword. Both grammar spellings of the node type are accepted.
func hasVirtualSpecifier(decl *sitter.Node, src []byte) bool {
	for i := 0; i < int(decl.ChildCount()); i++ {
		ch := decl.Child(i)
		switch ch.Type() {
		case "virtual", "virtual_function_specifier":
			return true
		}
		if ch.Content(src) == "virtual" {
			return true
		}
	}
	return false
}

// isPureVirtual detects the trailing "= 0" of a pure-virtual declaration.
func isPureVirtual(decl *sitter.Node, src []byte) bool {
	text := strings.TrimRight(compact(decl.Content(src)), " ;")
	return strings.HasSuffix(text, "= 0") || strings.HasSuffix(text, "=0")
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// resolveCalls links every CallExpr to a declaration in the same
// translation unit. Qualified names are matched against the full scope
// path first, then the bare trailing segment. Unresolved calls keep a nil
// Referenced and are skipped by consumers.
func resolveCalls(root *Node) {
	byPath := make(map[string]*Node)
	byName := make(map[string]*Node)

	var index func(n *Node, scope []string)
	index = func(n *Node, scope []string) {
		switch n.Kind {
		case FunctionDecl, Method, FunctionTemplate:
			qualified := strings.Join(append(scope, n.Spelling), "::")
			if _, ok := byPath[qualified]; !ok {
				byPath[qualified] = n
			}
			bare := n.Spelling
			if i := strings.LastIndex(bare, "::"); i >= 0 {
				bare = bare[i+2:]
			}
			if _, ok := byName[bare]; !ok {
				byName[bare] = n
			}
		case Namespace, Class:
			scope = append(scope, n.Spelling)
		}
		for _, c := range n.Children {
			index(c, scope)
		}
	}
	index(root, nil)

	var resolve func(n *Node)
	resolve = func(n *Node) {
		if n.Kind == CallExpr && n.Spelling != "" {
			n.Referenced = lookupCallee(n.Spelling, byPath, byName)
		}
		for _, c := range n.Children {
			resolve(c)
		}
	}
	resolve(root)
}

// lookupCallee tries the callee expression verbatim as a qualified path,
// then strips member-access and template syntax down to a bare name.
func lookupCallee(callee string, byPath, byName map[string]*Node) *Node {
	if n, ok := byPath[callee]; ok {
		return n
	}
	name := callee
	if i := strings.Index(name, "<"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "->"); i >= 0 {
		name = name[i+2:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if n, ok := byPath[name]; ok {
		return n
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if n, ok := byName[name]; ok {
		return n
	}
	return nil
}

// collectDiagnostics walks the CST for ERROR and MISSING nodes, reporting
// each as an Error-severity diagnostic up to maxDiagnostics.
func collectDiagnostics(root *sitter.Node, path string) []Diagnostic {
	if !root.HasError() {
		return nil
	}
	var diags []Diagnostic
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if len(diags) >= maxDiagnostics {
			return
		}
		if n.IsError() {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				File:     path,
				Line:     int(n.StartPoint().Row) + 1,
				Message:  "syntax error",
			})
			return
		}
		if n.IsMissing() {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				File:     path,
				Line:     int(n.StartPoint().Row) + 1,
				Message:  fmt.Sprintf("missing %s", n.Type()),
			})
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return diags
}
