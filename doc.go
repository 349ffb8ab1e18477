// Package liana extracts a directed call graph from C/C++ sources and
// lets a user explore it interactively: list callees of a symbol, search
// by name fragment, filter paths toward a keyword, prune paths containing
// ignored keywords, and inspect reverse references.
//
// # Pipeline
//
// The tree-sitter front-end in internal/cursor lowers each translation
// unit into a typed node tree. The aggregator walks that tree once,
// registering every non-excluded function-like declaration under two
// identities (a canonical key for search, a display name for the graph)
// and recording call and reference edges into the Graph. A background
// Monitor polls tracked files and patches the graph when one changes.
//
// # Usage
//
//	e := liana.New(liana.WithExclusions(liana.Exclusions{Paths: []string{"/usr"}}))
//	if err := e.LoadAll(ctx, "compile_commands.json", nil); err != nil { ... }
//	e.StartMonitor(ctx)
//
//	s := e.NewSession(liana.PlainStyler{})
//	fmt.Println(s.Direct("main()"))
//
// # Concurrency
//
// The Store serializes graph access with a reader/writer lock scoped to
// one complete query or one complete per-file rebuild, so a traversal
// never observes a partially cleared graph.
package liana
