// Package postgres adapts a pgx connection pool to the tourload.Conn contract.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// Store holds exactly one connection acquired from the pool for the whole
// run, so every statement travels over the same session.
type Store struct {
	pool   *pgxpool.Pool
	conn   *pgxpool.Conn
	closer io.Closer
}

// Open connects through the connector and acquires the run's connection.
// If the connector also implements io.Closer (e.g. the Cloud SQL dialer),
// it is closed together with the store.
func Open(ctx context.Context, connector tourload.Connector) (*Store, error) {
	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, pool)
	if err != nil {
		pool.Close()
		if c, ok := connector.(io.Closer); ok {
			c.Close() //nolint:errcheck
		}
		return nil, err
	}
	if c, ok := connector.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

// New acquires a dedicated connection from pool. The store takes ownership of
// the pool and closes it in Close.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, &tourload.ConnectionError{Target: pool.Config().ConnConfig.Host, Err: err}
	}
	return &Store{pool: pool, conn: conn}, nil
}

// Dialect returns the PostgreSQL dialect.
func (s *Store) Dialect() tourload.Dialect { return Dialect{} }

// Exec executes a statement without returning rows.
func (s *Store) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := s.conn.Exec(ctx, sql, args...)
	return err
}

// QueryRow executes a query that is expected to return at most one row.
func (s *Store) QueryRow(ctx context.Context, sql string, args ...any) tourload.Row {
	return s.conn.QueryRow(ctx, sql, args...)
}

// Begin starts a transaction on the run's connection.
func (s *Store) Begin(ctx context.Context) (tourload.Tx, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &txAdapter{tx: tx}, nil
}

// Close releases the connection and closes the pool. Safe to call twice.
func (s *Store) Close() error {
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}

// txAdapter adapts pgx.Tx to implement tourload.Tx.
type txAdapter struct {
	tx pgx.Tx
}

func (t *txAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := t.tx.Exec(ctx, sql, args...)
	return err
}

func (t *txAdapter) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *txAdapter) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// Verify Store implements Conn at compile time
var _ tourload.Conn = (*Store)(nil)
