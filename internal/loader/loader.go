// Package loader inserts records into a table inside one transaction.
package loader

import (
	"context"
	"fmt"

	"github.com/vvka-141/tourload/internal/schema"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// Load inserts records into table in order, one statement per record, and
// commits only after all succeed. On any failure the batch is rolled back and
// a *tourload.LoadError naming the failing record is returned; the table then
// holds no rows from this call.
func Load[R tourload.Record](ctx context.Context, conn tourload.Conn, table schema.Table, records []R) (int, error) {
	dialect := conn.Dialect()
	insert := table.InsertStatement(dialect)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, &tourload.LoadError{Table: table.Name, Index: -1, Err: err}
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i, rec := range records {
		args, err := table.Args(dialect, rec)
		if err != nil {
			return 0, &tourload.LoadError{Table: table.Name, Index: i, Err: err}
		}
		if err := tx.Exec(ctx, insert, args...); err != nil {
			return 0, &tourload.LoadError{Table: table.Name, Index: i, Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &tourload.LoadError{Table: table.Name, Index: -1, Err: fmt.Errorf("commit: %w", err)}
	}
	return len(records), nil
}
