package liana

import "github.com/jward/liana/internal/cursor"

// Aggregate walks an AST subtree once, pre-order, and populates the
// graph. current tracks the nearest enclosing function-like declaration;
// at file scope it is nil and call edges are recorded under the empty
// caller name (e.g. a file-scope initializer calling a function).
//
// Aggregation never fails: unresolved call targets are skipped, and
// malformed nodes simply contribute nothing. The caller is responsible
// for surfacing parse diagnostics; the walk runs even when the
// translation unit has errors, since a partial graph still aids
// navigation.
func Aggregate(root *cursor.Node, excl Exclusions, g *Graph) {
	aggregate(root, excl, g, nil)
}

func aggregate(n *cursor.Node, excl Exclusions, g *Graph, current *cursor.Node) {
	switch n.Kind {
	case cursor.FunctionDecl, cursor.Method, cursor.FunctionTemplate:
		if !excl.Excludes(n) {
			current = n
			g.RegisterSymbol(CanonicalKey(n), DisplayName(n), n.File)
		}

	case cursor.CallExpr:
		target := n.Referenced
		if target != nil && !excl.Excludes(target) {
			caller := DisplayName(current)
			callerFile := ""
			if current != nil {
				callerFile = current.File
			} else {
				callerFile = n.File
			}
			g.AddCall(caller, Symbol{
				Canonical: CanonicalKey(target),
				Display:   DisplayName(target),
			}, callerFile)
			g.AddReference(DisplayName(target), caller)
		}

	case cursor.TranslationUnit, cursor.Namespace, cursor.Class, cursor.Other:
		// Scope and structural nodes contribute nothing themselves.
	}

	for _, c := range n.Children {
		aggregate(c, excl, g, current)
	}
}
