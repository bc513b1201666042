// Package source provides read-only access to a DuckDB relational source
// whose schema is unknown ahead of time.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
)

// SourceNotFoundError reports an unreachable source path.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// Config holds tuning options for the embedded engine.
type Config struct {
	Threads       int           // Number of DuckDB threads (0 = default)
	MemoryLimitGB int           // Memory limit in GB (0 = default)
	Timeout       time.Duration // Per-operation timeout (0 = none)
}

// Option configures a Source.
type Option func(*Source)

// WithThreads sets the number of DuckDB threads.
func WithThreads(n int) Option {
	return func(s *Source) { s.cfg.Threads = n }
}

// WithMemoryLimit sets the DuckDB memory limit in GB.
func WithMemoryLimit(gb int) Option {
	return func(s *Source) { s.cfg.MemoryLimitGB = gb }
}

// WithTimeout sets the per-operation timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) { s.cfg.Timeout = d }
}

// OpenFunc opens a database handle. Exposed so tests can substitute a mock.
type OpenFunc func(ctx context.Context) (*sql.DB, error)

// Source is a handle to a relational database file. Connections are opened
// and closed per logical operation; nothing is shared across calls.
type Source struct {
	path string
	cfg  Config
	open OpenFunc
}

// New creates a Source for the given database file path.
// The path must already exist: DuckDB would otherwise create an empty
// database silently, so reachability is checked up front.
func New(path string, opts ...Option) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &SourceNotFoundError{Path: path, Err: err}
	}

	s := &Source{path: path}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.open = s.openDuckDB
	return s, nil
}

// NewWithOpener creates a Source backed by a caller-supplied opener.
// Used by tests to inject sqlmock handles.
func NewWithOpener(open OpenFunc) *Source {
	return &Source{path: "(injected)", open: open}
}

// Path returns the source file path.
func (s *Source) Path() string { return s.path }

func (s *Source) openDuckDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("duckdb", s.path+"?access_mode=READ_ONLY")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &SourceNotFoundError{Path: s.path, Err: err}
	}

	// DuckDB is embedded; serial access is safer for an ad hoc scanner.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if s.cfg.Threads > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", s.cfg.Threads)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting threads: %w", err)
		}
	}
	if s.cfg.MemoryLimitGB > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA memory_limit='%dGB'", s.cfg.MemoryLimitGB)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting memory limit: %w", err)
		}
	}

	return db, nil
}

// withDB runs fn against a freshly opened handle and closes it afterwards.
func (s *Source) withDB(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}
