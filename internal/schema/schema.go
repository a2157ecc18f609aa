// Package schema declares the store tables and (re)creates them.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vvka-141/tourload/pkg/tourload"
)

// KeyColumn is the auto-assigned surrogate key of every table.
const KeyColumn = "id"

// Column is one declared table column. Every column is NOT NULL.
type Column struct {
	Name string
	Kind tourload.ColumnKind

	// Min and Max, when set, become CHECK constraints.
	Min *float64
	Max *float64
}

// Table is an ordered column list plus constraints. Column order matches the
// order of tourload.Record.Values.
type Table struct {
	Name    string
	Columns []Column

	// Unique is the natural key.
	Unique []string
}

func bound(v float64) *float64 { return &v }

// Passengers holds monthly foreign passenger counts.
var Passengers = Table{
	Name: tourload.TablePassengers,
	Columns: []Column{
		{Name: "year", Kind: tourload.KindInteger},
		{Name: "month", Kind: tourload.KindInteger, Min: bound(1), Max: bound(12)},
		{Name: "date", Kind: tourload.KindDate},
		{Name: "passengers", Kind: tourload.KindInteger, Min: bound(0)},
	},
	Unique: []string{"year", "month"},
}

// Weather holds monthly station observations.
var Weather = Table{
	Name: tourload.TableWeather,
	Columns: []Column{
		{Name: "year", Kind: tourload.KindInteger},
		{Name: "month", Kind: tourload.KindInteger, Min: bound(1), Max: bound(12)},
		{Name: "date", Kind: tourload.KindDate},
		{Name: "mean_temp", Kind: tourload.KindReal},
		{Name: "max_temp", Kind: tourload.KindReal},
		{Name: "min_temp", Kind: tourload.KindReal},
		{Name: "precipitation", Kind: tourload.KindReal, Min: bound(0)},
	},
	Unique: []string{"year", "month"},
}

// Tables lists the tables in load order.
func Tables() []Table {
	return []Table{Passengers, Weather}
}

// NumericColumns returns the columns that participate in checksums.
func (t Table) NumericColumns() []Column {
	var out []Column
	for _, c := range t.Columns {
		if c.Kind.Numeric() {
			out = append(out, c)
		}
	}
	return out
}

// CreateStatement renders CREATE TABLE for the dialect.
func (t Table) CreateStatement(d tourload.Dialect) string {
	defs := []string{d.SurrogateKey(KeyColumn)}
	for _, c := range t.Columns {
		defs = append(defs, d.QuoteIdent(c.Name)+" "+d.ColumnType(c.Kind)+" NOT NULL")
	}
	if len(t.Unique) > 0 {
		defs = append(defs, "UNIQUE ("+quoteList(d, t.Unique)+")")
	}
	for _, c := range t.Columns {
		if check := checkExpr(d, c); check != "" {
			defs = append(defs, "CHECK ("+check+")")
		}
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", d.QuoteIdent(t.Name), strings.Join(defs, ",\n\t"))
}

// DropStatement renders an idempotent DROP TABLE.
func (t Table) DropStatement(d tourload.Dialect) string {
	return "DROP TABLE IF EXISTS " + d.QuoteIdent(t.Name)
}

// InsertStatement renders a single-row INSERT of every declared column.
func (t Table) InsertStatement(d tourload.Dialect) string {
	names := make([]string, len(t.Columns))
	params := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(t.Name), quoteList(d, names), strings.Join(params, ", "))
}

// Args converts a record's values into driver arguments for InsertStatement.
func (t Table) Args(d tourload.Dialect, r tourload.Record) ([]any, error) {
	values := r.Values()
	if len(values) != len(t.Columns) {
		return nil, fmt.Errorf("record has %d values, table %s has %d columns", len(values), t.Name, len(t.Columns))
	}
	args := make([]any, len(values))
	for i, v := range values {
		if date, ok := v.(tourload.Date); ok {
			args[i] = d.BindDate(date)
			continue
		}
		args[i] = v
	}
	return args, nil
}

func checkExpr(d tourload.Dialect, c Column) string {
	col := d.QuoteIdent(c.Name)
	var parts []string
	if c.Min != nil {
		parts = append(parts, col+" >= "+formatBound(*c.Min))
	}
	if c.Max != nil {
		parts = append(parts, col+" <= "+formatBound(*c.Max))
	}
	return strings.Join(parts, " AND ")
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quoteList(d tourload.Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
