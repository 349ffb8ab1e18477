package liana

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(seed func(*Graph)) *Session {
	store := NewStore()
	store.Update(seed)
	return NewSession(store, PlainStyler{})
}

func sym(name string) Symbol {
	return Symbol{Canonical: strings.TrimSuffix(name, "()"), Display: name}
}

func TestDirect_PrintsOneLinePerCallSite(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.AddCall("main()", sym("helper()"), "/a.cpp")
		g.AddCall("main()", sym("helper()"), "/a.cpp")
	})

	out := s.Direct("main()")
	assert.Equal(t, "main()\n|--helper()\n|--helper()", out)
}

func TestDirect_IndentsByDepth(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.AddCall("a()", sym("b()"), "/a.cpp")
		g.AddCall("b()", sym("c()"), "/a.cpp")
	})

	out := s.Direct("a()")
	assert.Equal(t, "a()\n|--b()\n|  |--c()", out)
}

func TestDirect_CycleTerminates(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.AddCall("a()", sym("b()"), "/a.cpp")
		g.AddCall("b()", sym("a()"), "/a.cpp")
	})

	// The edge back into a visited node is still printed; recursion stops
	// there.
	out := s.Direct("a()")
	assert.Equal(t, "a()\n|--b()\n|  |--a()\n|  |  |--b()", out)
}

func TestDirect_FallsBackToCanonicalKey(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		// chain's adjacency list is keyed by its canonical key, not its
		// display name.
		g.AddCall("main()", Symbol{Canonical: "chain", Display: "chain(int n)"}, "/a.cpp")
		g.AddCall("chain", sym("leaf()"), "/a.cpp")
	})

	out := s.Direct("main()")
	assert.Equal(t, "main()\n|--chain(int n)\n|  |--leaf()", out)
}

func TestDirect_PrefixSearchArmsCompletions(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.RegisterSymbol("helper", "helper(int n)", "/a.cpp")
		g.RegisterSymbol("helper", "helper(double d)", "/a.cpp")
	})

	out := s.Direct("hel")
	require.Equal(t, "matching:\nhelper(int n)\nhelper(double d)", out)
	assert.Equal(t, []string{"helper(int n)", "helper(double d)"}, s.Completions())
}

func TestDirect_NoMatchYieldsNoOutput(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {})

	assert.Equal(t, "", s.Direct("nothing"))
	assert.Empty(t, s.Completions())
}

// chainGraph seeds f0 -> f1 -> ... -> fn.
func chainGraph(n int) func(*Graph) {
	return func(g *Graph) {
		for i := 0; i < n; i++ {
			g.AddCall(fmt.Sprintf("f%d()", i), sym(fmt.Sprintf("f%d()", i+1)), "/a.cpp")
		}
	}
}

func TestDirect_SoftLimitStopsSilently(t *testing.T) {
	t.Parallel()
	s := testSession(chainGraph(10))
	require.NoError(t, s.SetDepth(3))

	out := s.Direct("f0()")
	lines := strings.Split(out, "\n")
	// Root plus edges at depths 0..3; no marker.
	require.Len(t, lines, 5)
	assert.Equal(t, "|  |  |  |--f4()", lines[4])
	assert.NotContains(t, out, "too deep")
}

func TestDirect_HardLimitEmitsMarker(t *testing.T) {
	t.Parallel()
	s := testSession(chainGraph(20))

	out := s.Direct("f0()")
	lines := strings.Split(out, "\n")
	// Root + 15 edges (depths 0..14) + marker.
	require.Len(t, lines, 17)
	assert.Equal(t, "...<too deep>...", lines[16])
}

func TestSetDepth_RejectsOutOfRange(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {})

	for _, n := range []int{0, -1, HardDepthLimit, HardDepthLimit + 5} {
		assert.Error(t, s.SetDepth(n), "n=%d", n)
		assert.Equal(t, HardDepthLimit, s.Depth())
	}
	require.NoError(t, s.SetDepth(7))
	assert.Equal(t, 7, s.Depth())
}

func TestFilteredTo_FlushesFullPathPerMatch(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.AddCall("main()", sym("a()"), "/a.cpp")
		g.AddCall("main()", sym("b()"), "/a.cpp")
		g.AddCall("a()", sym("target_one()"), "/a.cpp")
		g.AddCall("a()", sym("target_two()"), "/a.cpp")
	})
	s.AddFilters("target_")

	out := s.FilteredTo("main()")
	// Two matches under the same ancestor flush two independent blocks.
	assert.Equal(t, strings.Join([]string{
		"main()",
		"|--a()",
		"|  |--target_one()",
		"|--a()",
		"|  |--target_two()",
	}, "\n"), out)
}

func TestFilteredTo_ContinuesPastMatches(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.AddCall("main()", sym("target_mid()"), "/a.cpp")
		g.AddCall("target_mid()", sym("target_leaf()"), "/a.cpp")
	})
	s.AddFilters("target_")

	out := s.FilteredTo("main()")
	// The match at depth 0 does not stop exploration; the deeper match
	// flushes its full path too.
	assert.Equal(t, strings.Join([]string{
		"main()",
		"|--target_mid()",
		"|--target_mid()",
		"|  |--target_leaf()",
	}, "\n"), out)
}

func TestFilteredTo_RequiresExactKey(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.RegisterSymbol("main", "main()", "/a.cpp")
	})
	s.AddFilters("anything")

	assert.Equal(t, "", s.FilteredTo("mai"))
}

func TestWithoutKeywords_PrunesWholeSubtree(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.AddCall("main()", sym("log_write()"), "/a.cpp")
		g.AddCall("main()", sym("work()"), "/a.cpp")
		g.AddCall("log_write()", sym("flush()"), "/a.cpp")
	})
	s.AddIgnores("log_")

	out := s.WithoutKeywords("main()")
	// log_write is neither printed nor recursed into: flush never
	// appears even though it matches no ignore keyword.
	assert.Equal(t, "main()\n|--work()", out)
}

func TestReferencesOf_WalksCallersRecursively(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.AddReference("helper()", "main()")
		g.AddReference("main()", "start()")
	})

	out := s.ReferencesOf("helper()")
	assert.Equal(t, "helper()\n|--main()\n|  |--start()", out)
}

func TestReferencesOf_NoPrefixFallback(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.RegisterSymbol("helper", "helper()", "/a.cpp")
		g.AddReference("helper()", "main()")
	})

	assert.Equal(t, "", s.ReferencesOf("hel"))
}

func TestRemoveFilters_AbsentKeywordIsError(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {})
	s.AddFilters("alpha", "beta")

	err := s.RemoveFilters("alpha", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	// alpha was still removed despite the error.
	assert.NotContains(t, s.Show(), "alpha")
	assert.Contains(t, s.Show(), "beta")
}

func TestReset_RestoresDefaults(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {})
	s.AddFilters("kw")
	s.AddIgnores("kw")
	require.NoError(t, s.SetDepth(3))

	s.Reset()

	assert.Equal(t, HardDepthLimit, s.Depth())
	assert.Equal(t, fmt.Sprintf(
		"filter set: []\nignore set: []\nprint depth: %d\nmax print depth: %d",
		HardDepthLimit, HardDepthLimit,
	), s.Show())
}

func TestShowTotals_AppendsLineCount(t *testing.T) {
	t.Parallel()
	s := testSession(func(g *Graph) {
		g.AddCall("main()", sym("helper()"), "/a.cpp")
	})
	s.ShowTotals = true

	out := s.Direct("main()")
	assert.True(t, strings.HasSuffix(out, "(2 lines)"), "got %q", out)
}

// panicStyler fails mid-render to exercise buffer discipline.
type panicStyler struct{ PlainStyler }

func (panicStyler) Edge(depth int, text string) string { panic("render fault") }

func TestDirect_PanicDiscardsPartialOutput(t *testing.T) {
	t.Parallel()
	store := NewStore()
	store.Update(func(g *Graph) {
		g.AddCall("main()", sym("helper()"), "/a.cpp")
	})
	s := NewSession(store, panicStyler{})

	assert.Equal(t, "", s.Direct("main()"))
}
