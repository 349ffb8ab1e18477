// Package cursor is a tree-sitter backed C/C++ front-end. It lowers the
// concrete syntax tree of a translation unit into a small typed node tree
// carrying the information the call-graph aggregator needs: declaration
// kinds, spellings, signatures, declaring files, virtual annotations, and
// best-effort call-target resolution.
package cursor

import "fmt"

// Kind classifies a lowered node. The set is closed: consumers dispatch
// with an exhaustive switch rather than runtime type inspection.
type Kind int

const (
	// TranslationUnit is the root of a lowered tree.
	TranslationUnit Kind = iota
	// Namespace is a namespace definition.
	Namespace
	// Class is a class or struct definition.
	Class
	// FunctionDecl is a free function definition or prototype.
	FunctionDecl
	// Method is a member function definition or declaration.
	Method
	// FunctionTemplate is a templated function or method.
	FunctionTemplate
	// CallExpr is a call expression site.
	CallExpr
	// Other covers nodes retained only for structure.
	Other
)

// String returns a short label for the kind, used in logs and tests.
func (k Kind) String() string {
	switch k {
	case TranslationUnit:
		return "translation_unit"
	case Namespace:
		return "namespace"
	case Class:
		return "class"
	case FunctionDecl:
		return "function"
	case Method:
		return "method"
	case FunctionTemplate:
		return "function_template"
	case CallExpr:
		return "call"
	case Other:
		return "other"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is one lowered declaration or call site. Nodes form a tree via
// Parent/Children; the ancestor chain is the semantic scope used for
// qualified naming.
type Node struct {
	Kind Kind

	// Spelling is the bare declared name ("helper", "Foo::bar" for an
	// out-of-class definition, namespace or class name for scopes). For a
	// CallExpr it is the callee expression text.
	Spelling string

	// Signature is the declarator text with its parameter list, e.g.
	// "helper(int n)". Empty for scope nodes and call sites.
	Signature string

	// File is the path of the declaring file. Empty for the translation
	// unit root and for synthesized declarations with no source location.
	File string

	// Line is the 1-based start line in File, 0 when unknown.
	Line int

	// Virtual and PureVirtual annotate member functions.
	Virtual     bool
	PureVirtual bool

	// Referenced is the resolved target of a CallExpr, nil when the
	// provider could not resolve the callee.
	Referenced *Node

	Parent   *Node
	Children []*Node
}

// AddChild appends c to n's children and sets its parent link.
func (n *Node) AddChild(c *Node) *Node {
	c.Parent = n
	n.Children = append(n.Children, c)
	return c
}

// Severity grades a parse diagnostic.
type Severity int

const (
	// SeverityWarning marks recoverable oddities.
	SeverityWarning Severity = iota
	// SeverityError marks syntax errors; the lowered tree is partial but
	// still usable.
	SeverityError
	// SeverityFatal marks failures that produced no usable tree.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Diagnostic is one parse problem reported for a translation unit.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
}

// TranslationUnitResult is the provider's output for one source file: the
// lowered tree plus any diagnostics. The tree is present even when
// diagnostics exist; callers decide whether partial data is acceptable.
type TranslationUnitResult struct {
	Path        string
	Root        *Node
	Diagnostics []Diagnostic
}

// HasErrors reports whether any diagnostic is Error or Fatal severity.
func (tu *TranslationUnitResult) HasErrors() bool {
	for _, d := range tu.Diagnostics {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}
