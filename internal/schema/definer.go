package schema

import (
	"context"
	"errors"

	"github.com/vvka-141/tourload/pkg/tourload"
)

// ErrTableExists is returned by CreateTable when the table was not dropped.
var ErrTableExists = errors.New("table already exists")

// Definer drops and creates tables on a connection.
type Definer struct {
	conn   tourload.Conn
	logger tourload.Logger
}

// NewDefiner creates a definer bound to conn.
func NewDefiner(conn tourload.Conn, logger tourload.Logger) *Definer {
	return &Definer{conn: conn, logger: logger}
}

// Exists reports whether the named table is present.
func (d *Definer) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := d.conn.QueryRow(ctx, d.conn.Dialect().TableExistsQuery(), name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// EnsureTableAbsent drops the table if it exists. Dropping a missing table
// succeeds.
func (d *Definer) EnsureTableAbsent(ctx context.Context, t Table) error {
	d.logger.Verbose("Dropping table %s", t.Name)
	if err := d.conn.Exec(ctx, t.DropStatement(d.conn.Dialect())); err != nil {
		return &tourload.SchemaError{Table: t.Name, Op: "drop", Err: err}
	}
	return nil
}

// CreateTable creates the table. It fails if the table exists.
func (d *Definer) CreateTable(ctx context.Context, t Table) error {
	exists, err := d.Exists(ctx, t.Name)
	if err != nil {
		return &tourload.SchemaError{Table: t.Name, Op: "create", Err: err}
	}
	if exists {
		return &tourload.SchemaError{Table: t.Name, Op: "create", Err: ErrTableExists}
	}

	d.logger.Verbose("Creating table %s", t.Name)
	if err := d.conn.Exec(ctx, t.CreateStatement(d.conn.Dialect())); err != nil {
		return &tourload.SchemaError{Table: t.Name, Op: "create", Err: err}
	}
	return nil
}

// Reset drops then recreates every table, leaving them empty.
func (d *Definer) Reset(ctx context.Context, tables ...Table) error {
	for _, t := range tables {
		if err := d.EnsureTableAbsent(ctx, t); err != nil {
			return err
		}
	}
	for _, t := range tables {
		if err := d.CreateTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
