package liana

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jward/liana/internal/cursor"
)

// defaultPollInterval matches the original tool's two-second poll.
const defaultPollInterval = 2 * time.Second

// ParseFunc re-parses one tracked file. Production wiring uses
// cursor.Index.Parse; tests inject fakes.
type ParseFunc func(ctx context.Context, path string, args []string) (*cursor.TranslationUnitResult, error)

// FileRecord is the tracking state for one source file: the modification
// timestamp of the last successful aggregation, the parse arguments to
// re-parse with, and a snapshot of the exclusion policy in force when the
// file was first processed.
type FileRecord struct {
	Path    string
	ModTime time.Time
	Args    []string
	Excl    Exclusions

	// lastAttempt is the modification time of the last reprocessing
	// attempt, successful or not. A failed attempt is not retried until
	// the file is modified again.
	lastAttempt time.Time
}

// Monitor polls tracked files and re-aggregates any whose content
// changed. Each file is either fresh or mid-reprocess; reprocessing is
// synchronous within the poll and atomic with respect to queries, since
// the clear-then-rebuild runs under one store write lock.
type Monitor struct {
	mu       sync.Mutex
	tracked  map[string]*FileRecord
	interval time.Duration
	parse    ParseFunc
	store    *Store
	log      zerolog.Logger
}

// NewMonitor returns a Monitor polling at interval (the default when
// interval is zero).
func NewMonitor(store *Store, parse ParseFunc, interval time.Duration, log zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Monitor{
		tracked:  make(map[string]*FileRecord),
		interval: interval,
		parse:    parse,
		store:    store,
		log:      log,
	}
}

// Track starts watching path, recording its current modification time.
// A file that does not exist is silently ignored.
func (m *Monitor) Track(path string, args []string, excl Exclusions) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked[path] = &FileRecord{
		Path:    path,
		ModTime: info.ModTime(),
		Args:    args,
		Excl:    excl,
	}
}

// Tracked returns the number of tracked files.
func (m *Monitor) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tracked)
}

// Run polls until ctx is canceled. The loop has no other cancellation;
// canceling the root context at process shutdown is the only way out.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Poll runs one pass over the tracked files, reprocessing each whose
// modification time advanced past the stored one.
func (m *Monitor) Poll(ctx context.Context) {
	for _, rec := range m.records() {
		info, err := os.Stat(rec.Path)
		if err != nil {
			continue
		}
		if !info.ModTime().After(rec.ModTime) || info.ModTime().Equal(rec.lastAttempt) {
			continue
		}
		m.reprocess(ctx, rec, info.ModTime())
	}
}

func (m *Monitor) records() []*FileRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := make([]*FileRecord, 0, len(m.tracked))
	for _, rec := range m.tracked {
		recs = append(recs, rec)
	}
	return recs
}

// reprocess re-parses one changed file and patches the graph. On error or
// fatal diagnostics the previous graph state and the stored timestamp are
// left untouched: the file is retried only after another modification.
func (m *Monitor) reprocess(ctx context.Context, rec *FileRecord, mtime time.Time) {
	m.log.Info().Str("file", rec.Path).Msg("updating changed file")

	m.mu.Lock()
	rec.lastAttempt = mtime
	m.mu.Unlock()

	tu, err := m.parse(ctx, rec.Path, rec.Args)
	if err != nil {
		m.log.Error().Err(err).Str("file", rec.Path).Msg("unable to update file")
		return
	}
	if tu.HasErrors() {
		for _, d := range tu.Diagnostics {
			m.log.Error().Str("file", rec.Path).Msg(d.String())
		}
		m.log.Warn().Str("file", rec.Path).Msg("keeping previous graph state")
		return
	}

	m.store.Update(func(g *Graph) {
		g.ClearFile(rec.Path)
		Aggregate(tu.Root, rec.Excl, g)
	})

	m.mu.Lock()
	rec.ModTime = mtime
	m.mu.Unlock()
}
