package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/tourload/pkg/tourload"
)

const queryTableExists = `SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_schema = current_schema() AND table_name = $1
)`

// Dialect renders PostgreSQL SQL.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (Dialect) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (Dialect) ColumnType(kind tourload.ColumnKind) string {
	switch kind {
	case tourload.KindReal:
		return "DOUBLE PRECISION"
	case tourload.KindDate:
		return "DATE"
	default:
		return "INTEGER"
	}
}

func (Dialect) SumType(kind tourload.ColumnKind) string {
	if kind == tourload.KindReal {
		return "DOUBLE PRECISION"
	}
	return "BIGINT"
}

func (d Dialect) SurrogateKey(name string) string {
	return d.QuoteIdent(name) + " INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
}

func (Dialect) TableExistsQuery() string { return queryTableExists }

func (Dialect) BindDate(d tourload.Date) any { return d.Time }

var _ tourload.Dialect = Dialect{}
