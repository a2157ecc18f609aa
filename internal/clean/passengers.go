package clean

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/tourload/internal/tabular"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// Layout of the Statistics Iceland arrivals export.
const (
	passengerPreambleLines = 2
	passengerKeyColumn     = "Ríkisfang"
	passengerTotalsRow     = "Útlendingar alls"
)

// monthColumn matches headers like 2012M01.
var monthColumn = regexp.MustCompile(`^(\d{4})M(\d{2})$`)

// Passengers pivots the wide arrivals export (one column per month) into one
// record per month of the foreign-passenger totals row, restricted to years
// and sorted by (year, month).
func Passengers(r io.Reader, name string, years tourload.YearRange) ([]tourload.PassengerRecord, error) {
	br := bufio.NewReader(tabular.SkipBOM(r))
	if err := skipLines(br, passengerPreambleLines); err != nil {
		return nil, &tourload.ParseError{File: name, Err: err}
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, &tourload.ParseError{File: name, Err: fmt.Errorf("header: %w", eofAsUnexpected(err))}
	}
	key := -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == passengerKeyColumn {
			key = i
		}
	}
	if key < 0 {
		return nil, &tourload.ParseError{File: name, Columns: []string{passengerKeyColumn}, Err: errors.New("missing columns")}
	}

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, &tourload.ParseError{File: name, Err: fmt.Errorf("no %q row", passengerTotalsRow)}
		}
		if err != nil {
			return nil, &tourload.ParseError{File: name, Err: err}
		}
		if key < len(rec) && strings.TrimSpace(rec[key]) == passengerTotalsRow {
			return pivot(name, row, header, rec, years)
		}
	}
}

func pivot(name string, row int, header, rec []string, years tourload.YearRange) ([]tourload.PassengerRecord, error) {
	out := make([]tourload.PassengerRecord, 0)
	for i, col := range header {
		m := monthColumn.FindStringSubmatch(col)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return nil, &tourload.ParseError{File: name, Err: fmt.Errorf("column %s: month out of range", col)}
		}
		if !years.Contains(year) {
			continue
		}
		if i >= len(rec) {
			return nil, &tourload.TypeCoercionError{File: name, Row: row, Err: fmt.Errorf("column %s: missing value", col)}
		}
		n, err := strconv.ParseInt(strings.TrimSpace(rec[i]), 10, 64)
		if err != nil {
			return nil, &tourload.TypeCoercionError{File: name, Row: row, Err: fmt.Errorf("column %s: %w", col, err)}
		}
		out = append(out, tourload.PassengerRecord{
			Year:       year,
			Month:      month,
			Date:       tourload.NewDate(year, month),
			Passengers: n,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func eofAsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
