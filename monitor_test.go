package liana

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/liana/internal/cursor"
)

// writeTracked creates a file and backdates it so a later Chtimes bump is
// unambiguous regardless of filesystem timestamp granularity.
func writeTracked(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("int x;\n"), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
	return path
}

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, at, at))
}

func staticParse(tu *cursor.TranslationUnitResult, err error) (ParseFunc, *int) {
	calls := new(int)
	return func(ctx context.Context, path string, args []string) (*cursor.TranslationUnitResult, error) {
		*calls++
		return tu, err
	}, calls
}

func TestMonitor_ReprocessesChangedFile(t *testing.T) {
	t.Parallel()
	path := writeTracked(t, t.TempDir(), "a.cpp")

	store := NewStore()
	store.Update(func(g *Graph) {
		g.RegisterSymbol("old_fn", "old_fn()", path)
		g.AddCall("old_fn()", sym("leaf()"), path)
	})

	parse, calls := staticParse(&cursor.TranslationUnitResult{
		Path: path,
		Root: buildCallScenario(path),
	}, nil)
	m := NewMonitor(store, parse, time.Minute, zerolog.Nop())
	m.Track(path, []string{"-std=c++17"}, Exclusions{})
	require.Equal(t, 1, m.Tracked())

	touch(t, path, time.Now())
	m.Poll(context.Background())

	require.Equal(t, 1, *calls)
	store.View(func(g *Graph) {
		// Old per-file data cleared, new aggregation in place.
		assert.Empty(t, g.PrefixSearch("old_fn"))
		assert.False(t, g.Lookup("old_fn()"))
		assert.Len(t, g.Callees("main()"), 2)
	})
}

func TestMonitor_UnchangedFileNotReparsed(t *testing.T) {
	t.Parallel()
	path := writeTracked(t, t.TempDir(), "a.cpp")

	parse, calls := staticParse(&cursor.TranslationUnitResult{Path: path, Root: buildCallScenario(path)}, nil)
	m := NewMonitor(NewStore(), parse, time.Minute, zerolog.Nop())
	m.Track(path, nil, Exclusions{})

	// Track recorded the backdated mtime; nothing changed since.
	m.Poll(context.Background())
	assert.Equal(t, 0, *calls)
}

func TestMonitor_ErrorDiagnosticsLeaveGraphUntouched(t *testing.T) {
	t.Parallel()
	path := writeTracked(t, t.TempDir(), "a.cpp")

	store := NewStore()
	store.Update(func(g *Graph) {
		g.RegisterSymbol("stable", "stable()", path)
	})

	parse, calls := staticParse(&cursor.TranslationUnitResult{
		Path: path,
		Root: &cursor.Node{Kind: cursor.TranslationUnit},
		Diagnostics: []cursor.Diagnostic{{
			Severity: cursor.SeverityError, File: path, Line: 1, Message: "syntax error",
		}},
	}, nil)
	m := NewMonitor(store, parse, time.Minute, zerolog.Nop())
	m.Track(path, nil, Exclusions{})

	changed := time.Now()
	touch(t, path, changed)
	m.Poll(context.Background())

	require.Equal(t, 1, *calls)
	store.View(func(g *Graph) {
		assert.Equal(t, []string{"stable()"}, g.PrefixSearch("stable"))
	})

	// Same timestamp: not retried. Another modification: retried.
	m.Poll(context.Background())
	assert.Equal(t, 1, *calls)
	touch(t, path, changed.Add(time.Second))
	m.Poll(context.Background())
	assert.Equal(t, 2, *calls)
}

func TestMonitor_ParseErrorLeavesGraphUntouched(t *testing.T) {
	t.Parallel()
	path := writeTracked(t, t.TempDir(), "a.cpp")

	store := NewStore()
	store.Update(func(g *Graph) {
		g.RegisterSymbol("stable", "stable()", path)
	})

	parse, _ := staticParse(nil, errors.New("front-end unavailable"))
	m := NewMonitor(store, parse, time.Minute, zerolog.Nop())
	m.Track(path, nil, Exclusions{})

	touch(t, path, time.Now())
	m.Poll(context.Background())

	store.View(func(g *Graph) {
		assert.Equal(t, []string{"stable()"}, g.PrefixSearch("stable"))
	})
}

func TestMonitor_TrackIgnoresMissingFile(t *testing.T) {
	t.Parallel()
	parse, _ := staticParse(nil, nil)
	m := NewMonitor(NewStore(), parse, time.Minute, zerolog.Nop())

	m.Track(filepath.Join(t.TempDir(), "absent.cpp"), nil, Exclusions{})
	assert.Equal(t, 0, m.Tracked())
}

func TestMonitor_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	parse, _ := staticParse(nil, nil)
	m := NewMonitor(NewStore(), parse, time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on context cancel")
	}
}
