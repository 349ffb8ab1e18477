package liana

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jward/liana/internal/compdb"
	"github.com/jward/liana/internal/cursor"
)

// Engine wires the pipeline together: compilation database loading, the
// tree-sitter front-end, graph aggregation, and background change
// monitoring. Queries go through sessions created with NewSession.
type Engine struct {
	store   *Store
	index   *cursor.Index
	monitor *Monitor
	excl    Exclusions
	log     zerolog.Logger

	pollInterval time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithExclusions sets the path/name exclusion policy applied during
// aggregation.
func WithExclusions(x Exclusions) Option {
	return func(e *Engine) { e.excl = x }
}

// WithLogger sets the engine and monitor logger. Defaults to a no-op
// logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithPollInterval overrides the change monitor's poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.pollInterval = d }
}

// New creates an Engine with an empty graph store.
func New(opts ...Option) *Engine {
	e := &Engine{
		store: NewStore(),
		index: cursor.NewIndex(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.monitor = NewMonitor(e.store, e.index.Parse, e.pollInterval, e.log)
	return e
}

// Store returns the engine's graph store.
func (e *Engine) Store() *Store { return e.store }

// Monitor returns the engine's change monitor.
func (e *Engine) Monitor() *Monitor { return e.monitor }

// LoadAll reads the compilation database (or single source file) at
// dbPath and aggregates every entry into the graph. Parse diagnostics are
// reported but do not stop the build: a partial graph still aids
// navigation. Only an unreadable database or source file is fatal.
func (e *Engine) LoadAll(ctx context.Context, dbPath string, extraArgs []string) error {
	entries, err := compdb.Load(dbPath)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	e.log.Info().Int("files", len(entries)).Msg("reading source files")
	for _, entry := range entries {
		args := entry.Args(extraArgs)
		tu, err := e.index.Parse(ctx, entry.File, args)
		if err != nil {
			return fmt.Errorf("load sources: %w", err)
		}
		e.log.Info().Str("file", entry.File).Msg("parsed")

		if tu.HasErrors() {
			e.log.Warn().Str("file", entry.File).Strs("args", args).
				Msg("translation unit has errors, graph may be incomplete")
			for _, d := range tu.Diagnostics {
				e.log.Warn().Msg(d.String())
			}
		}

		e.store.Update(func(g *Graph) {
			Aggregate(tu.Root, e.excl, g)
		})
		e.monitor.Track(entry.File, args, e.excl)
	}
	return nil
}

// StartMonitor launches the background polling loop. It runs until ctx
// is canceled at process shutdown.
func (e *Engine) StartMonitor(ctx context.Context) {
	go e.monitor.Run(ctx)
}

// NewSession returns a query session over the engine's store.
func (e *Engine) NewSession(styler Styler) *Session {
	return NewSession(e.store, styler)
}
