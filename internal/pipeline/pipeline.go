// Package pipeline runs the load-and-verify sequence: read both input files,
// recreate the tables, load each table in its own transaction and compare the
// stored aggregates with those computed from the files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/vvka-141/tourload/internal/checksum"
	"github.com/vvka-141/tourload/internal/loader"
	"github.com/vvka-141/tourload/internal/schema"
	"github.com/vvka-141/tourload/internal/source"
	"github.com/vvka-141/tourload/internal/tabular"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// Inputs names the two cleaned files.
type Inputs struct {
	Passengers string
	Weather    string
}

// StageTiming records how long a state took.
type StageTiming struct {
	State    State
	Duration time.Duration
}

// Source describes an input file as it was read.
type Source struct {
	Table    string
	Location string
	SHA256   string
	Records  int
}

// Report is the outcome of a run. Verification mismatches live in Results;
// they are findings, not errors.
type Report struct {
	RunID     string
	Store     string
	StartedAt time.Time
	Duration  time.Duration
	Tolerance float64
	Stages    []StageTiming
	Sources   []Source
	Results   []tourload.LoadResult
}

// Passed reports whether every table loaded and verified.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Err joins the load failures of the run, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.LoadErr != nil {
			errs = append(errs, res.LoadErr)
		}
	}
	return errors.Join(errs...)
}

// Runner executes pipeline runs.
// Thread-Safety: NOT safe for concurrent Run calls on the same instance.
type Runner struct {
	opener    source.Opener
	logger    tourload.Logger
	clock     clockwork.Clock
	tolerance float64
	reader    tabular.Options
	observe   func(State)
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the clock used for timings.
func WithClock(c clockwork.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithTolerance sets the absolute tolerance for real-valued sums.
func WithTolerance(tolerance float64) Option {
	return func(r *Runner) { r.tolerance = tolerance }
}

// WithReaderOptions sets the CSV dialect of the input files.
func WithReaderOptions(opts tabular.Options) Option {
	return func(r *Runner) { r.reader = opts }
}

// WithObserver registers a callback invoked on every state entry.
func WithObserver(fn func(State)) Option {
	return func(r *Runner) { r.observe = fn }
}

// New creates a Runner. It panics on nil dependencies, which are programmer
// errors.
func New(opener source.Opener, logger tourload.Logger, opts ...Option) *Runner {
	if opener == nil {
		panic("opener cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	r := &Runner{
		opener:    opener,
		logger:    logger,
		clock:     clockwork.NewRealClock(),
		tolerance: tourload.DefaultTolerance,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run carries the state of one invocation of Run.
type run struct {
	*Runner
	report     *Report
	state      State
	stateStart time.Time
}

func (r *run) enter(s State) {
	now := r.clock.Now()
	if s != StateReading {
		r.report.Stages = append(r.report.Stages, StageTiming{State: r.state, Duration: now.Sub(r.stateStart)})
	}
	r.state = s
	r.stateStart = now
	r.logger.Verbose("[%s] %s", r.report.RunID[:8], s)
	if r.observe != nil {
		r.observe(s)
	}
}

// Run executes one pipeline run over conn. Reading and schema reset failures
// are returned as errors. A failed table load is recorded in its LoadResult
// and the run continues; Report.Err exposes it.
func (r *Runner) Run(ctx context.Context, conn tourload.Conn, in Inputs) (*Report, error) {
	started := r.clock.Now()
	st := &run{
		Runner: r,
		report: &Report{
			RunID:     uuid.NewString(),
			Store:     conn.Dialect().Name(),
			StartedAt: started,
			Tolerance: r.tolerance,
		},
	}
	rep := st.report

	st.enter(StateReading)
	passengers, err := tabular.ReadFile[tourload.PassengerRecord](ctx, r.opener, in.Passengers, r.reader)
	if err != nil {
		return nil, err
	}
	weather, err := tabular.ReadFile[tourload.WeatherRecord](ctx, r.opener, in.Weather, r.reader)
	if err != nil {
		return nil, err
	}
	rep.Sources = []Source{
		{Table: schema.Passengers.Name, Location: passengers.Location, SHA256: passengers.SHA256, Records: len(passengers.Records)},
		{Table: schema.Weather.Name, Location: weather.Location, SHA256: weather.SHA256, Records: len(weather.Records)},
	}
	r.logger.Info("Read %d passenger and %d weather records", len(passengers.Records), len(weather.Records))

	expectedPassengers, err := checksum.ComputeExpected(schema.Passengers, passengers.Records)
	if err != nil {
		return nil, err
	}
	expectedWeather, err := checksum.ComputeExpected(schema.Weather, weather.Records)
	if err != nil {
		return nil, err
	}

	st.enter(StateSchemaReset)
	if err := schema.NewDefiner(conn, r.logger).Reset(ctx, schema.Tables()...); err != nil {
		return nil, err
	}

	st.enter(StateLoadingPassengers)
	passengerRows, passengerErr := loader.Load(ctx, conn, schema.Passengers, passengers.Records)
	r.logLoad(schema.Passengers, passengerRows, passengerErr)

	st.enter(StateLoadingWeather)
	weatherRows, weatherErr := loader.Load(ctx, conn, schema.Weather, weather.Records)
	r.logLoad(schema.Weather, weatherRows, weatherErr)

	st.enter(StateVerifying)
	for _, v := range []struct {
		table    schema.Table
		expected tourload.ChecksumSet
		rows     int
		loadErr  error
	}{
		{schema.Passengers, expectedPassengers, passengerRows, passengerErr},
		{schema.Weather, expectedWeather, weatherRows, weatherErr},
	} {
		actual, err := checksum.ComputeActual(ctx, conn, v.table)
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", v.table.Name, err)
		}
		result := checksum.Compare(v.expected, actual, r.tolerance)
		result.RowsInserted = v.rows
		result.LoadErr = v.loadErr
		rep.Results = append(rep.Results, result)

		if result.Passed() {
			r.logger.Verbose("%s: all %d checksums match", v.table.Name, len(result.Metrics))
		} else {
			r.logger.Verbose("%s: %d checksum mismatch(es)", v.table.Name, len(result.Mismatches()))
		}
	}

	st.enter(StateReported)
	rep.Duration = r.clock.Since(started)
	return rep, nil
}

func (r *Runner) logLoad(table schema.Table, rows int, err error) {
	if err != nil {
		r.logger.Error("%s: load rolled back: %v", table.Name, err)
		return
	}
	r.logger.Info("✓ Loaded %d rows into %s", rows, table.Name)
}
