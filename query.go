package liana

import (
	"fmt"
	"sort"
	"strings"
)

// HardDepthLimit is the fixed safety ceiling on traversal depth. It
// guards against pathological or cyclic graphs when the user raises the
// soft limit too high; hitting it emits an explicit marker line.
const HardDepthLimit = 15

// tooDeepMarker is emitted when a traversal reaches the hard limit.
const tooDeepMarker = "...<too deep>..."

// Styler renders traversal output lines. The query engine stays free of
// terminal concerns; cmd/liana installs an ANSI styler, tests use
// PlainStyler.
type Styler interface {
	// Edge renders one callee/caller edge line at the given depth.
	Edge(depth int, text string) string
	// Suggestion renders one prefix-search candidate.
	Suggestion(text string) string
	// Plain renders a root name or informational line.
	Plain(text string) string
}

// PlainStyler renders the classic uncolored tree glyphs.
type PlainStyler struct{}

func (PlainStyler) Edge(depth int, text string) string {
	return strings.Repeat("|  ", depth) + "|--" + text
}

func (PlainStyler) Suggestion(text string) string { return text }

func (PlainStyler) Plain(text string) string { return text }

// Session is one user's query state: depth limits, keyword sets, and the
// completion candidates armed by the last prefix search. Each query takes
// the store's read lock once for its whole traversal and buffers every
// rendered line, flushing only on completion, so a mid-query fault never
// produces partial output.
type Session struct {
	store  *Store
	styler Styler

	depth   int // soft limit, user adjustable within (0, HardDepthLimit)
	filters map[string]bool
	ignores map[string]bool

	// ShowTotals appends a trailing line with the rendered line count.
	ShowTotals bool

	completions []string
}

// NewSession returns a Session with default depth and empty keyword sets.
func NewSession(store *Store, styler Styler) *Session {
	return &Session{
		store:   store,
		styler:  styler,
		depth:   HardDepthLimit,
		filters: make(map[string]bool),
		ignores: make(map[string]bool),
	}
}

// SetDepth sets the soft depth limit. Values outside (0, HardDepthLimit)
// are rejected and leave the current depth unchanged.
func (s *Session) SetDepth(n int) error {
	if n <= 0 || n >= HardDepthLimit {
		return fmt.Errorf("depth must be in (0, %d), got %d", HardDepthLimit, n)
	}
	s.depth = n
	return nil
}

// Depth returns the current soft depth limit.
func (s *Session) Depth() int { return s.depth }

// AddFilters adds keywords to the filter set used by FilteredTo.
func (s *Session) AddFilters(keywords ...string) {
	for _, kw := range keywords {
		s.filters[kw] = true
	}
}

// AddIgnores adds keywords to the ignore set used by WithoutKeywords.
func (s *Session) AddIgnores(keywords ...string) {
	for _, kw := range keywords {
		s.ignores[kw] = true
	}
}

// RemoveFilters removes keywords from the filter set. Each absent keyword
// is an error; present keywords are still removed.
func (s *Session) RemoveFilters(keywords ...string) error {
	return removeKeywords(s.filters, "filter", keywords)
}

// RemoveIgnores removes keywords from the ignore set. Each absent keyword
// is an error; present keywords are still removed.
func (s *Session) RemoveIgnores(keywords ...string) error {
	return removeKeywords(s.ignores, "ignore", keywords)
}

func removeKeywords(set map[string]bool, label string, keywords []string) error {
	var missing []string
	for _, kw := range keywords {
		if !set[kw] {
			missing = append(missing, kw)
			continue
		}
		delete(set, kw)
	}
	if len(missing) > 0 {
		return fmt.Errorf("no such %s keyword: %s", label, strings.Join(missing, ", "))
	}
	return nil
}

// Reset clears both keyword sets and restores the default depth.
func (s *Session) Reset() {
	s.filters = make(map[string]bool)
	s.ignores = make(map[string]bool)
	s.depth = HardDepthLimit
}

// Show returns the current query configuration, one setting per line.
func (s *Session) Show() string {
	return fmt.Sprintf(
		"filter set: [%s]\nignore set: [%s]\nprint depth: %d\nmax print depth: %d",
		strings.Join(sortedKeys(s.filters), " "),
		strings.Join(sortedKeys(s.ignores), " "),
		s.depth, HardDepthLimit,
	)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Completions returns the candidates armed by the last prefix search, for
// a REPL adapter's tab completion.
func (s *Session) Completions() []string {
	out := make([]string, len(s.completions))
	copy(out, s.completions)
	return out
}

// lineBuffer accumulates rendered lines until a query completes.
type lineBuffer struct {
	lines []string
}

func (b *lineBuffer) add(line string) {
	b.lines = append(b.lines, line)
}

func (b *lineBuffer) flush(showTotals bool) string {
	if len(b.lines) == 0 {
		return ""
	}
	if showTotals {
		b.lines = append(b.lines, fmt.Sprintf("(%d lines)", len(b.lines)))
	}
	return strings.Join(b.lines, "\n")
}

// Direct prints the call tree under name. If name is an exact call-graph
// key, every callee edge is printed depth-first, indented by depth, with
// a per-traversal visited list breaking cycles. Otherwise the canonical
// keys are prefix-searched and matching overloads are printed as a
// suggestion list, arming Completions. No match at all yields no output.
func (s *Session) Direct(name string) (out string) {
	defer discardOnPanic(&out)
	var buf lineBuffer
	s.store.View(func(g *Graph) {
		if g.Lookup(name) {
			buf.add(s.styler.Plain(name))
			s.printCalls(g, name, make(map[string]bool), 0, &buf)
			return
		}
		matches := g.PrefixSearch(name)
		if len(matches) == 0 {
			return
		}
		buf.add(s.styler.Plain("matching:"))
		for _, m := range matches {
			buf.add(s.styler.Suggestion(m))
		}
		s.completions = matches
	})
	return buf.flush(s.ShowTotals)
}

func (s *Session) printCalls(g *Graph, key string, visited map[string]bool, depth int, buf *lineBuffer) {
	if depth > s.depth {
		return
	}
	if depth >= HardDepthLimit {
		buf.add(s.styler.Plain(tooDeepMarker))
		return
	}
	for _, callee := range g.Callees(key) {
		buf.add(s.styler.Edge(depth, callee.Display))
		if visited[callee.Display] {
			continue
		}
		visited[callee.Display] = true
		s.printCalls(g, calleeKey(g, callee), visited, depth+1, buf)
	}
}

// calleeKey picks the adjacency key for recursing into a callee: the
// display name when it keys a list, else the canonical key.
func calleeKey(g *Graph, callee Symbol) string {
	if g.Lookup(callee.Display) {
		return callee.Display
	}
	return callee.Canonical
}

// FilteredTo prints every full path from name to any callee whose display
// name contains a filter keyword. A path stack of rendered edge lines is
// maintained; on a match the whole stack is flushed. Traversal always
// continues past matches, so every matching path is surfaced, not just
// the first.
func (s *Session) FilteredTo(name string) (out string) {
	defer discardOnPanic(&out)
	var buf lineBuffer
	s.store.View(func(g *Graph) {
		if !g.Lookup(name) {
			return
		}
		buf.add(s.styler.Plain(name))
		var stack []string
		s.filterCalls(g, name, &stack, make(map[string]bool), 0, &buf)
	})
	return buf.flush(s.ShowTotals)
}

func (s *Session) filterCalls(g *Graph, key string, stack *[]string, visited map[string]bool, depth int, buf *lineBuffer) {
	if depth > s.depth {
		return
	}
	if depth >= HardDepthLimit {
		buf.add(s.styler.Plain(tooDeepMarker))
		return
	}
	for _, callee := range g.Callees(key) {
		*stack = append(*stack, s.styler.Edge(depth, callee.Display))
		for kw := range s.filters {
			if strings.Contains(callee.Display, kw) {
				for _, line := range *stack {
					buf.add(line)
				}
				break
			}
		}
		if !visited[callee.Display] {
			visited[callee.Display] = true
			s.filterCalls(g, calleeKey(g, callee), stack, visited, depth+1, buf)
		}
		*stack = (*stack)[:len(*stack)-1]
	}
}

// WithoutKeywords prints the call tree under name, pruning any callee
// whose display name contains an ignore keyword: pruned callees are not
// printed, not recursed into, and not added to the visited list.
func (s *Session) WithoutKeywords(name string) (out string) {
	defer discardOnPanic(&out)
	var buf lineBuffer
	s.store.View(func(g *Graph) {
		if !g.Lookup(name) {
			return
		}
		buf.add(s.styler.Plain(name))
		s.ignoreCalls(g, name, make(map[string]bool), 0, &buf)
	})
	return buf.flush(s.ShowTotals)
}

func (s *Session) ignoreCalls(g *Graph, key string, visited map[string]bool, depth int, buf *lineBuffer) {
	if depth > s.depth {
		return
	}
	if depth >= HardDepthLimit {
		buf.add(s.styler.Plain(tooDeepMarker))
		return
	}
	for _, callee := range g.Callees(key) {
		if s.ignored(callee.Display) {
			continue
		}
		buf.add(s.styler.Edge(depth, callee.Display))
		if visited[callee.Display] {
			continue
		}
		visited[callee.Display] = true
		s.ignoreCalls(g, calleeKey(g, callee), visited, depth+1, buf)
	}
}

func (s *Session) ignored(display string) bool {
	for kw := range s.ignores {
		if strings.Contains(display, kw) {
			return true
		}
	}
	return false
}

// ReferencesOf prints the reverse-reference tree of name: its recorded
// callers, their callers, and so on, with the same depth and cycle rules
// as Direct. Reference lookups require an exact key; there is no prefix
// fallback.
func (s *Session) ReferencesOf(name string) (out string) {
	defer discardOnPanic(&out)
	var buf lineBuffer
	s.store.View(func(g *Graph) {
		if len(g.Callers(name)) == 0 {
			return
		}
		buf.add(s.styler.Plain(name))
		s.printRefs(g, name, make(map[string]bool), 0, &buf)
	})
	return buf.flush(s.ShowTotals)
}

func (s *Session) printRefs(g *Graph, key string, visited map[string]bool, depth int, buf *lineBuffer) {
	if depth > s.depth {
		return
	}
	if depth >= HardDepthLimit {
		buf.add(s.styler.Plain(tooDeepMarker))
		return
	}
	for _, caller := range g.Callers(key) {
		buf.add(s.styler.Edge(depth, caller))
		if visited[caller] {
			continue
		}
		visited[caller] = true
		s.printRefs(g, caller, visited, depth+1, buf)
	}
}

// discardOnPanic swallows a mid-traversal panic and clears the result so
// a fault never emits a truncated block.
func discardOnPanic(out *string) {
	if r := recover(); r != nil {
		*out = ""
	}
}
