// Package sqlite adapts a SQLite database (modernc.org/sqlite, pure Go) to the
// tourload.Conn contract. It serves local runs without a server and the fast
// unit tests of the load and verify stages.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vvka-141/tourload/pkg/tourload"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store wraps a *sql.DB limited to a single open connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty: %w", tourload.ErrInvalidConfig)
	}
	if path != MemoryPath && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, &tourload.ConnectionError{Target: path, Err: err}
	}

	// One connection: the run is sequential, and an in-memory database lives
	// only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &tourload.ConnectionError{Target: path, Err: err}
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect returns the SQLite dialect.
func (s *Store) Dialect() tourload.Dialect { return Dialect{} }

// Exec executes a statement without returning rows.
func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// QueryRow executes a query that is expected to return at most one row.
func (s *Store) QueryRow(ctx context.Context, query string, args ...any) tourload.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (tourload.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &txAdapter{tx: tx}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type txAdapter struct {
	tx *sql.Tx
}

func (t *txAdapter) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *txAdapter) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t *txAdapter) Rollback(_ context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

var _ tourload.Conn = (*Store)(nil)
