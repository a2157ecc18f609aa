// Package clean converts the raw Statistics Iceland arrivals export and the
// Met Office station export into the cleaned CSV files the pipeline loads.
package clean

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/vvka-141/tourload/internal/source"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// Job names the raw inputs and the cleaned outputs.
type Job struct {
	PassengersIn  string
	PassengersOut string
	WeatherIn     string
	WeatherOut    string
	Years         tourload.YearRange
}

// Summary describes one written file.
type Summary struct {
	Output string
	Rows   int
	First  tourload.Date
	Last   tourload.Date
}

// DateRange renders the covered months, e.g. 2012-01 to 2022-12.
func (s Summary) DateRange() string {
	if s.Rows == 0 {
		return "empty"
	}
	return fmt.Sprintf("%s to %s", s.First.Format("2006-01"), s.Last.Format("2006-01"))
}

// Cleaner runs cleaning jobs.
type Cleaner struct {
	opener source.Opener
	logger tourload.Logger
}

// NewCleaner creates a Cleaner reading raw files through opener.
func NewCleaner(opener source.Opener, logger tourload.Logger) *Cleaner {
	return &Cleaner{opener: opener, logger: logger}
}

// Run cleans both datasets. Temperature ordering violations in the weather
// data are logged as warnings; they do not fail the job.
func (c *Cleaner) Run(ctx context.Context, job Job) ([]Summary, error) {
	if err := job.Years.Validate(); err != nil {
		return nil, err
	}

	passengers, err := readRaw(ctx, c.opener, job.PassengersIn, job.Years, Passengers)
	if err != nil {
		return nil, err
	}
	weather, err := readRaw(ctx, c.opener, job.WeatherIn, job.Years, Weather)
	if err != nil {
		return nil, err
	}

	for _, w := range OrderViolations(weather) {
		c.logger.Info("Warning: %s %s: min_temp %.1f, mean_temp %.1f, max_temp %.1f are not ordered",
			job.WeatherIn, w.Date, w.MinTemp, w.MeanTemp, w.MaxTemp)
	}

	var summaries []Summary
	ps, err := writeFile(job.PassengersOut, passengers, func(r tourload.PassengerRecord) tourload.Date { return r.Date })
	if err != nil {
		return nil, err
	}
	summaries = append(summaries, ps)
	ws, err := writeFile(job.WeatherOut, weather, func(r tourload.WeatherRecord) tourload.Date { return r.Date })
	if err != nil {
		return nil, err
	}
	summaries = append(summaries, ws)

	for _, s := range summaries {
		c.logger.Info("✓ Wrote %s: %d rows, %s", s.Output, s.Rows, s.DateRange())
	}
	return summaries, nil
}

func readRaw[T any](ctx context.Context, opener source.Opener, location string, years tourload.YearRange,
	parse func(io.Reader, string, tourload.YearRange) ([]T, error)) ([]T, error) {
	rc, err := opener.Open(ctx, location)
	if err != nil {
		return nil, &tourload.ParseError{File: location, Err: err}
	}
	defer rc.Close()
	return parse(rc, location, years)
}

func writeFile[T any](path string, records []T, date func(T) tourload.Date) (Summary, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return Summary{}, fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return Summary{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Summary{}, fmt.Errorf("close %s: %w", path, err)
	}

	s := Summary{Output: path, Rows: len(records)}
	if len(records) > 0 {
		s.First = date(records[0])
		s.Last = date(records[len(records)-1])
	}
	return s, nil
}

// Write encodes records as CSV with a header row taken from the csv tags.
// An empty slice still produces the header.
func Write[T any](w io.Writer, records []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if len(records) == 0 {
		if err := enc.EncodeHeader(new(T)); err != nil {
			return err
		}
	}
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// skipLines discards n raw lines. Blank lines count, unlike in encoding/csv.
func skipLines(br *bufio.Reader, n int) error {
	for i := 0; i < n; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return fmt.Errorf("preamble line %d: %w", i+1, eofAsUnexpected(err))
		}
	}
	return nil
}
