package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/filex"
	"github.com/dmitrijs2005/daybook/internal/logging"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Options configure Open.
type Options struct {
	// Path is the database file, or ":memory:".
	Path        string
	BusyTimeout time.Duration

	Logger   logging.Logger
	Observer Observer
}

// Engine is the process-wide handle to the local database. It is opened
// once, shared by every table, and closed when the process exits.
type Engine struct {
	db       *sql.DB
	log      logging.Logger
	observer Observer
}

// Open opens (or creates) the database at opts.Path, configures it for a
// single local writer and brings the schema up to date. Any failure is
// reported as common.ErrStorageUnavailable.
func Open(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}

	if opts.Path != ":memory:" && !strings.HasPrefix(opts.Path, "file:") {
		if err := filex.EnsureParentDir(opts.Path); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", common.ErrStorageUnavailable, opts.Path, err)
	}

	// One connection: SQLite allows a single writer, and ":memory:"
	// databases live and die with their connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", opts.BusyTimeout.Milliseconds()),
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %s: %w", common.ErrStorageUnavailable, p, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", common.ErrStorageUnavailable, err)
	}

	if err := RunMigrations(ctx, db, opts.Logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	opts.Logger.Debug(ctx, "storage opened", "path", opts.Path)
	return &Engine{db: db, log: opts.Logger, observer: opts.Observer}, nil
}

// DB exposes the underlying handle for transactions and table binding.
func (e *Engine) DB() *sql.DB { return e.db }

// Observer returns the operation observer configured at Open.
func (e *Engine) Observer() Observer { return e.observer }

// Logger returns the logger configured at Open.
func (e *Engine) Logger() logging.Logger { return e.log }

// SchemaVersion reports the applied schema version.
func (e *Engine) SchemaVersion(ctx context.Context) (int64, error) {
	return SchemaVersion(ctx, e.db)
}

func (e *Engine) Close() error {
	return e.db.Close()
}
