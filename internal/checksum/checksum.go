package checksum

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/vvka-141/tourload/internal/schema"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// Metric names.
const (
	MetricRowCount = "row_count"
	sumPrefix      = "sum_"
)

// SumMetric returns the metric name for a column sum.
func SumMetric(column string) string {
	return sumPrefix + column
}

func newSet(table schema.Table) tourload.ChecksumSet {
	set := tourload.ChecksumSet{
		Table:    table.Name,
		IntSums:  make(map[string]int64),
		RealSums: make(map[string]float64),
	}
	for _, c := range table.NumericColumns() {
		set.Columns = append(set.Columns, c.Name)
		if c.Kind == tourload.KindReal {
			set.RealSums[c.Name] = 0
		} else {
			set.IntSums[c.Name] = 0
		}
	}
	return set
}

// ComputeExpected aggregates records as read from the input file.
func ComputeExpected[R tourload.Record](table schema.Table, records []R) (tourload.ChecksumSet, error) {
	set := newSet(table)
	set.RowCount = int64(len(records))

	for i, rec := range records {
		values := rec.Values()
		if len(values) != len(table.Columns) {
			return set, fmt.Errorf("%s record %d: %d values for %d columns", table.Name, i, len(values), len(table.Columns))
		}
		for j, c := range table.Columns {
			switch c.Kind {
			case tourload.KindInteger:
				v, ok := values[j].(int64)
				if !ok {
					return set, fmt.Errorf("%s record %d: column %s: want int64, got %T", table.Name, i, c.Name, values[j])
				}
				set.IntSums[c.Name] += v
			case tourload.KindReal:
				v, ok := values[j].(float64)
				if !ok {
					return set, fmt.Errorf("%s record %d: column %s: want float64, got %T", table.Name, i, c.Name, values[j])
				}
				set.RealSums[c.Name] += v
			}
		}
	}
	return set, nil
}

// ComputeActual aggregates the table as stored, in a single query.
func ComputeActual(ctx context.Context, conn tourload.Conn, table schema.Table) (tourload.ChecksumSet, error) {
	d := conn.Dialect()
	set := newSet(table)
	cols := table.NumericColumns()

	exprs := []string{"COUNT(*)"}
	dest := []any{&set.RowCount}
	ints := make([]int64, len(cols))
	reals := make([]float64, len(cols))
	for i, c := range cols {
		exprs = append(exprs, fmt.Sprintf("CAST(COALESCE(SUM(%s), 0) AS %s)", d.QuoteIdent(c.Name), d.SumType(c.Kind)))
		if c.Kind == tourload.KindReal {
			dest = append(dest, &reals[i])
		} else {
			dest = append(dest, &ints[i])
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), d.QuoteIdent(table.Name))
	if err := conn.QueryRow(ctx, query).Scan(dest...); err != nil {
		return set, fmt.Errorf("checksum %s: %w", table.Name, err)
	}

	for i, c := range cols {
		if c.Kind == tourload.KindReal {
			set.RealSums[c.Name] = reals[i]
		} else {
			set.IntSums[c.Name] = ints[i]
		}
	}
	return set, nil
}

// Compare checks every metric of expected against actual. Integer metrics
// must be equal; real metrics may differ by at most tolerance. A metric
// present on only one side fails.
func Compare(expected, actual tourload.ChecksumSet, tolerance float64) tourload.LoadResult {
	if tolerance < 0 || math.IsNaN(tolerance) {
		tolerance = 0
	}

	result := tourload.LoadResult{
		Table:    expected.Table,
		Expected: expected,
		Actual:   actual,
	}
	result.Metrics = append(result.Metrics, tourload.MetricResult{
		Name:        MetricRowCount,
		Kind:        tourload.MetricInteger,
		ExpectedInt: expected.RowCount,
		ActualInt:   actual.RowCount,
		Passed:      expected.RowCount == actual.RowCount,
	})

	for _, col := range columnUnion(expected, actual) {
		if isReal(expected, actual, col) {
			e, eok := expected.RealSums[col]
			a, aok := actual.RealSums[col]
			result.Metrics = append(result.Metrics, tourload.MetricResult{
				Name:         SumMetric(col),
				Kind:         tourload.MetricReal,
				ExpectedReal: e,
				ActualReal:   a,
				Passed:       eok && aok && math.Abs(e-a) <= tolerance,
			})
			continue
		}
		e, eok := expected.IntSums[col]
		a, aok := actual.IntSums[col]
		result.Metrics = append(result.Metrics, tourload.MetricResult{
			Name:        SumMetric(col),
			Kind:        tourload.MetricInteger,
			ExpectedInt: e,
			ActualInt:   a,
			Passed:      eok && aok && e == a,
		})
	}
	return result
}

func isReal(expected, actual tourload.ChecksumSet, col string) bool {
	_, e := expected.RealSums[col]
	_, a := actual.RealSums[col]
	return e || a
}

// columnUnion keeps expected's order and appends columns only actual has.
func columnUnion(expected, actual tourload.ChecksumSet) []string {
	seen := make(map[string]bool)
	var out []string
	for _, cols := range [][]string{expected.Columns, actual.Columns} {
		for _, c := range cols {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
