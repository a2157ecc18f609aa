package tourload

import "context"

// ColumnKind is the logical type of a table column.
type ColumnKind int

const (
	KindInteger ColumnKind = iota
	KindReal
	KindDate
)

// String returns the lowercase kind name.
func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Numeric reports whether the kind participates in checksum sums.
func (k ColumnKind) Numeric() bool {
	return k == KindInteger || k == KindReal
}

// Dialect renders the SQL that differs between stores.
// It lets the schema reset, load and verify stages run unchanged on any
// relational backend that can express the same contract.
type Dialect interface {
	// Name identifies the dialect in logs and reports.
	Name() string

	// QuoteIdent quotes a table or column identifier.
	QuoteIdent(name string) string

	// Placeholder returns the n-th (1-based) bind parameter marker.
	Placeholder(n int) string

	// ColumnType returns the column type used in CREATE TABLE.
	ColumnType(kind ColumnKind) string

	// SumType returns the type aggregate sums are cast to before scanning:
	// a 64-bit integer for KindInteger and a double for KindReal.
	SumType(kind ColumnKind) string

	// SurrogateKey returns the full definition of an auto-assigned primary key column.
	SurrogateKey(name string) string

	// TableExistsQuery returns a query taking the table name as its only
	// parameter and yielding a single boolean-compatible value.
	TableExistsQuery() string

	// BindDate converts a Date to the driver value stored in a date column.
	BindDate(d Date) any
}

// Conn is the single connection a pipeline run owns. Close must be called on
// every exit path; it releases the connection and any pool behind it.
type Conn interface {
	Dialect() Dialect
	Exec(ctx context.Context, sql string, args ...any) error
	QueryRow(ctx context.Context, sql string, args ...any) Row
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a store transaction. Rollback after Commit is a no-op.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Row represents a single row returned by QueryRow.
type Row interface {
	// Scan reads the values from the row into dest values.
	// Returns an error if no row was found or if the scan fails.
	Scan(dest ...any) error
}
