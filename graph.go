package liana

import (
	"strings"
	"sync"
)

// Symbol is a resolved callee as recorded on a call edge: the canonical
// key indexes name search, the display name keys the graph.
type Symbol struct {
	Canonical string
	Display   string
}

// overload is one registered (display name, declaring file) pair inside a
// canonical key's overload set.
type overload struct {
	display string
	file    string
}

// Graph holds the call graph, its reverse index, and the multimap from
// canonical key to known display names. It is unguarded: access goes
// through Store, which scopes a reader/writer lock around whole queries
// and whole rebuild passes.
type Graph struct {
	// calls maps a caller display name to its callees in call-site order.
	// Duplicates are retained: one entry per call site.
	calls map[string][]Symbol
	// refs maps a callee display name to its distinct callers in
	// first-seen order.
	refs map[string][]string
	// names maps a canonical key to its overload set in first-registration
	// order.
	names map[string][]overload
	// origins maps a caller display name to the file whose aggregation
	// pass created its adjacency list, so ClearFile can retract it.
	origins map[string]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		calls:   make(map[string][]Symbol),
		refs:    make(map[string][]string),
		names:   make(map[string][]overload),
		origins: make(map[string]string),
	}
}

// RegisterSymbol adds display to the overload set for canonical,
// remembering the declaring file. Registering the same pair twice leaves
// the set unchanged.
func (g *Graph) RegisterSymbol(canonical, display, file string) {
	for _, o := range g.names[canonical] {
		if o.display == display {
			return
		}
	}
	g.names[canonical] = append(g.names[canonical], overload{display: display, file: file})
}

// AddCall appends callee to caller's adjacency list, creating the list on
// first use. Not idempotent: N identical call sites produce N entries.
// file is the declaration site owning the list, used by ClearFile.
func (g *Graph) AddCall(caller string, callee Symbol, file string) {
	if _, ok := g.calls[caller]; !ok {
		g.origins[caller] = file
	}
	g.calls[caller] = append(g.calls[caller], callee)
}

// AddReference records caller in callee's reverse list unless already
// present. Insertion order is preserved for display.
func (g *Graph) AddReference(callee, caller string) {
	for _, c := range g.refs[callee] {
		if c == caller {
			return
		}
	}
	g.refs[callee] = append(g.refs[callee], caller)
}

// ClearFile removes every overload entry and call adjacency list whose
// declaration site is path. Reference edges recorded by other files'
// aggregation passes are left in place even when they now point at
// removed names: retracting them would require a file-level back-index,
// and stale reverse entries only over-report callers.
func (g *Graph) ClearFile(path string) {
	for canonical, set := range g.names {
		kept := set[:0]
		for _, o := range set {
			if o.file != path {
				kept = append(kept, o)
			}
		}
		if len(kept) == 0 {
			delete(g.names, canonical)
		} else {
			g.names[canonical] = kept
		}
	}
	for caller, origin := range g.origins {
		if origin == path {
			delete(g.calls, caller)
			delete(g.origins, caller)
		}
	}
}

// Lookup reports whether display keys a call adjacency list.
func (g *Graph) Lookup(display string) bool {
	_, ok := g.calls[display]
	return ok
}

// Callees returns the recorded call sites of caller, in insertion order.
// A missing caller yields nil; absence is not an error.
func (g *Graph) Callees(caller string) []Symbol {
	return g.calls[caller]
}

// Callers returns the distinct recorded callers of callee, in first-seen
// order.
func (g *Graph) Callers(callee string) []string {
	return g.refs[callee]
}

// PrefixSearch returns the display names of every overload whose
// canonical key starts with prefix. Order across overload sets is
// unspecified; within a set it is first-registration order.
func (g *Graph) PrefixSearch(prefix string) []string {
	var matches []string
	for canonical, set := range g.names {
		if !strings.HasPrefix(canonical, prefix) {
			continue
		}
		for _, o := range set {
			matches = append(matches, o.display)
		}
	}
	return matches
}

// Store owns a Graph and serializes access to it. View holds the read
// lock for the duration of one complete query; Update holds the write
// lock for one complete rebuild pass (clear-then-aggregate), so an
// in-flight traversal can never observe a partially cleared graph.
type Store struct {
	mu    sync.RWMutex
	graph *Graph
}

// NewStore returns a Store wrapping an empty graph.
func NewStore() *Store {
	return &Store{graph: NewGraph()}
}

// View runs fn with shared read access to the graph.
func (s *Store) View(fn func(*Graph)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.graph)
}

// Update runs fn with exclusive write access to the graph.
func (s *Store) Update(fn func(*Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.graph)
}
