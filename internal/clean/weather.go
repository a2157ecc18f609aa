package clean

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/vvka-141/tourload/internal/tabular"
	"github.com/vvka-141/tourload/pkg/tourload"
)

const weatherPreambleLines = 1

// rawWeather is one row of the Icelandic Met Office monthly station export.
// Missing observations decode as nil.
type rawWeather struct {
	Station       string   `csv:"stöð"`
	Year          int      `csv:"ár"`
	Month         int      `csv:"mán"`
	MeanTemp      *float64 `csv:"t"`
	MaxTemp       *float64 `csv:"tx"`
	MinTemp       *float64 `csv:"tn"`
	Precipitation *float64 `csv:"r"`
}

// Weather renames the station export columns, restricts it to years and
// sorts by (year, month).
func Weather(r io.Reader, name string, years tourload.YearRange) ([]tourload.WeatherRecord, error) {
	br := bufio.NewReader(tabular.SkipBOM(r))
	if err := skipLines(br, weatherPreambleLines); err != nil {
		return nil, &tourload.ParseError{File: name, Err: err}
	}

	cr := csv.NewReader(br)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, &tourload.ParseError{File: name, Err: fmt.Errorf("header: %w", eofAsUnexpected(err))}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, &tourload.ParseError{File: name, Err: err}
	}
	dec.DisallowMissingColumns = true
	dec.Map = func(field, _ string, _ any) string { return strings.TrimSpace(field) }

	out := make([]tourload.WeatherRecord, 0)
	for row := 1; ; row++ {
		var raw rawWeather
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var missing *csvutil.MissingColumnsError
			if errors.As(err, &missing) {
				return nil, &tourload.ParseError{File: name, Columns: missing.Columns, Err: err}
			}
			return nil, &tourload.TypeCoercionError{File: name, Row: row, Err: err}
		}
		if !years.Contains(raw.Year) {
			continue
		}
		rec, err := raw.record()
		if err != nil {
			return nil, &tourload.TypeCoercionError{File: name, Row: row, Err: err}
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func (r rawWeather) record() (tourload.WeatherRecord, error) {
	if r.Month < 1 || r.Month > 12 {
		return tourload.WeatherRecord{}, fmt.Errorf("month %d out of range", r.Month)
	}
	for _, f := range []struct {
		col string
		v   *float64
	}{{"t", r.MeanTemp}, {"tx", r.MaxTemp}, {"tn", r.MinTemp}, {"r", r.Precipitation}} {
		if f.v == nil {
			return tourload.WeatherRecord{}, fmt.Errorf("%d-%02d: missing %s", r.Year, r.Month, f.col)
		}
	}
	return tourload.WeatherRecord{
		Year:          r.Year,
		Month:         r.Month,
		Date:          tourload.NewDate(r.Year, r.Month),
		MeanTemp:      *r.MeanTemp,
		MaxTemp:       *r.MaxTemp,
		MinTemp:       *r.MinTemp,
		Precipitation: *r.Precipitation,
	}, nil
}

// OrderViolations returns the records where min <= mean <= max fails.
func OrderViolations(records []tourload.WeatherRecord) []tourload.WeatherRecord {
	var out []tourload.WeatherRecord
	for _, r := range records {
		if !r.TemperaturesOrdered() {
			out = append(out, r)
		}
	}
	return out
}
