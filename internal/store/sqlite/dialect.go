package sqlite

import (
	"strings"

	"github.com/vvka-141/tourload/pkg/tourload"
)

const queryTableExists = `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`

// Dialect renders SQLite SQL. Dates are stored as YYYY-MM-DD text.
type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) ColumnType(kind tourload.ColumnKind) string {
	switch kind {
	case tourload.KindReal:
		return "REAL"
	case tourload.KindDate:
		return "TEXT"
	default:
		return "INTEGER"
	}
}

func (Dialect) SumType(kind tourload.ColumnKind) string {
	if kind == tourload.KindReal {
		return "REAL"
	}
	return "INTEGER"
}

func (d Dialect) SurrogateKey(name string) string {
	return d.QuoteIdent(name) + " INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (Dialect) TableExistsQuery() string { return queryTableExists }

func (Dialect) BindDate(d tourload.Date) any { return d.String() }

var _ tourload.Dialect = Dialect{}
