package liana

import "github.com/jward/liana/internal/cursor"

// Symbol naming derives the two string identities every declaration
// carries. CanonicalKey groups overloads (bare names, scope-qualified);
// DisplayName distinguishes them (full signatures) and keys the graph.
// Both are pure functions of a node and its ancestor chain: a nil node or
// the translation-unit root yields "", and a malformed chain yields an
// incomplete string rather than an error.

// CanonicalKey returns the scope-qualified bare name of n: ancestor
// spellings joined by "::", rooted at the translation unit.
func CanonicalKey(n *cursor.Node) string {
	if n == nil || n.Kind == cursor.TranslationUnit {
		return ""
	}
	if prefix := CanonicalKey(n.Parent); prefix != "" {
		return prefix + "::" + n.Spelling
	}
	return n.Spelling
}

// DisplayName returns the scope-qualified full signature of n, with a
// trailing " virtual" or " = 0" suffix for virtual and pure-virtual
// methods. Scope ancestors contribute their spellings; only the innermost
// segment uses the signature.
func DisplayName(n *cursor.Node) string {
	if n == nil || n.Kind == cursor.TranslationUnit {
		return ""
	}
	last := n.Signature
	if last == "" {
		last = n.Spelling
	}
	name := last
	if prefix := CanonicalKey(n.Parent); prefix != "" {
		name = prefix + "::" + last
	}
	switch {
	case n.PureVirtual:
		name += " = 0"
	case n.Virtual:
		name += " virtual"
	}
	return name
}
