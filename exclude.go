package liana

import (
	"strings"

	"github.com/jward/liana/internal/cursor"
)

// Exclusions hides declarations from the graph. A node is excluded when
// its declaring file path starts with any entry in Paths, or its display
// name starts with any entry in Prefixes. Excluded nodes are never
// registered as a calling context and never appear as a call target.
type Exclusions struct {
	// Paths are source-path prefixes, e.g. "/usr".
	Paths []string
	// Prefixes are qualified-name prefixes, e.g. "std::".
	Prefixes []string
}

// Excludes reports whether n is invisible to the graph. The path rule is
// checked first and short-circuits; a node with no known source file is
// exempt from the path rule but still subject to the name rule.
func (x Exclusions) Excludes(n *cursor.Node) bool {
	if n.File != "" {
		for _, p := range x.Paths {
			if strings.HasPrefix(n.File, p) {
				return true
			}
		}
	}
	display := DisplayName(n)
	for _, p := range x.Prefixes {
		if strings.HasPrefix(display, p) {
			return true
		}
	}
	return false
}
