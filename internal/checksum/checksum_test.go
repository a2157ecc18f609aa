package checksum_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/tourload/internal/checksum"
	"github.com/vvka-141/tourload/internal/fixtures"
	"github.com/vvka-141/tourload/internal/loader"
	"github.com/vvka-141/tourload/internal/logging"
	"github.com/vvka-141/tourload/internal/schema"
	"github.com/vvka-141/tourload/internal/store/sqlite"
	"github.com/vvka-141/tourload/internal/tabular"
	"github.com/vvka-141/tourload/pkg/tourload"
)

func readFixtures(t *testing.T) ([]tourload.PassengerRecord, []tourload.WeatherRecord) {
	t.Helper()
	p, err := tabular.Read[tourload.PassengerRecord](fixtures.Reader(fixtures.PassengersFile), fixtures.PassengersFile, tabular.Options{})
	require.NoError(t, err)
	w, err := tabular.Read[tourload.WeatherRecord](fixtures.Reader(fixtures.WeatherFile), fixtures.WeatherFile, tabular.Options{})
	require.NoError(t, err)
	return p, w
}

func loadedStore(t *testing.T) (*sqlite.Store, []tourload.PassengerRecord, []tourload.WeatherRecord) {
	t.Helper()
	ctx := context.Background()
	s, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, schema.NewDefiner(s, logging.NewNullLogger()).Reset(ctx, schema.Tables()...))

	p, w := readFixtures(t)
	_, err = loader.Load(ctx, s, schema.Passengers, p)
	require.NoError(t, err)
	_, err = loader.Load(ctx, s, schema.Weather, w)
	require.NoError(t, err)
	return s, p, w
}

func TestComputeExpected_Fixtures(t *testing.T) {
	p, w := readFixtures(t)

	ps, err := checksum.ComputeExpected(schema.Passengers, p)
	require.NoError(t, err)
	assert.Equal(t, "Passengers", ps.Table)
	assert.Equal(t, int64(fixtures.Rows), ps.RowCount)
	assert.Equal(t, []string{"year", "month", "passengers"}, ps.Columns)
	assert.Equal(t, int64(fixtures.PassengersSum), ps.IntSums["passengers"])
	assert.Equal(t, int64(fixtures.YearSum), ps.IntSums["year"])
	assert.Equal(t, int64(fixtures.MonthSum), ps.IntSums["month"])
	assert.Empty(t, ps.RealSums)

	ws, err := checksum.ComputeExpected(schema.Weather, w)
	require.NoError(t, err)
	assert.Equal(t, int64(fixtures.Rows), ws.RowCount)
	assert.InDelta(t, fixtures.MeanTempSum, ws.RealSums["mean_temp"], 1e-6)
	assert.InDelta(t, fixtures.MaxTempSum, ws.RealSums["max_temp"], 1e-6)
	assert.InDelta(t, fixtures.MinTempSum, ws.RealSums["min_temp"], 1e-6)
	assert.InDelta(t, fixtures.PrecipitationSum, ws.RealSums["precipitation"], 1e-6)
}

func TestComputeExpected_WrongRecordType(t *testing.T) {
	_, err := checksum.ComputeExpected(schema.Weather, []tourload.PassengerRecord{{}})
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, p, w := loadedStore(t)

	for _, tc := range []struct {
		table    schema.Table
		expected func() (tourload.ChecksumSet, error)
	}{
		{schema.Passengers, func() (tourload.ChecksumSet, error) { return checksum.ComputeExpected(schema.Passengers, p) }},
		{schema.Weather, func() (tourload.ChecksumSet, error) { return checksum.ComputeExpected(schema.Weather, w) }},
	} {
		t.Run(tc.table.Name, func(t *testing.T) {
			expected, err := tc.expected()
			require.NoError(t, err)
			actual, err := checksum.ComputeActual(ctx, s, tc.table)
			require.NoError(t, err)

			result := checksum.Compare(expected, actual, tourload.DefaultTolerance)
			assert.True(t, result.Passed(), "mismatches: %+v", result.Mismatches())
			assert.Len(t, result.Metrics, 1+len(tc.table.NumericColumns()))
			assert.Equal(t, checksum.MetricRowCount, result.Metrics[0].Name)
		})
	}
}

func TestScenario_PostLoadMutation(t *testing.T) {
	ctx := context.Background()
	s, p, _ := loadedStore(t)

	require.NoError(t, s.Exec(ctx, `UPDATE "Passengers" SET "passengers" = "passengers" + 1 WHERE "year" = 2016 AND "month" = 7`))

	expected, err := checksum.ComputeExpected(schema.Passengers, p)
	require.NoError(t, err)
	actual, err := checksum.ComputeActual(ctx, s, schema.Passengers)
	require.NoError(t, err)

	result := checksum.Compare(expected, actual, tourload.DefaultTolerance)
	require.False(t, result.Passed())

	mismatches := result.Mismatches()
	require.Len(t, mismatches, 1)
	assert.Equal(t, "sum_passengers", mismatches[0].Name)
	assert.Equal(t, int64(fixtures.PassengersSum), mismatches[0].ExpectedInt)
	assert.Equal(t, int64(fixtures.PassengersSum+1), mismatches[0].ActualInt)
}

func TestScenario_DeletedRow(t *testing.T) {
	ctx := context.Background()
	s, _, w := loadedStore(t)

	require.NoError(t, s.Exec(ctx, `DELETE FROM "Weather" WHERE "year" = 2020 AND "month" = 1`))

	expected, err := checksum.ComputeExpected(schema.Weather, w)
	require.NoError(t, err)
	actual, err := checksum.ComputeActual(ctx, s, schema.Weather)
	require.NoError(t, err)

	result := checksum.Compare(expected, actual, tourload.DefaultTolerance)
	names := make([]string, 0)
	for _, m := range result.Mismatches() {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "row_count")
	assert.Contains(t, names, "sum_year")
	assert.Contains(t, names, "sum_month")
}

func TestZeroRecords(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, schema.NewDefiner(s, logging.NewNullLogger()).Reset(ctx, schema.Weather))

	expected, err := checksum.ComputeExpected(schema.Weather, []tourload.WeatherRecord{})
	require.NoError(t, err)
	actual, err := checksum.ComputeActual(ctx, s, schema.Weather)
	require.NoError(t, err)

	assert.Zero(t, actual.RowCount)
	assert.Zero(t, actual.RealSums["precipitation"])
	assert.True(t, checksum.Compare(expected, actual, tourload.DefaultTolerance).Passed())
}

func TestComputeActual_MissingTable(t *testing.T) {
	s, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = checksum.ComputeActual(context.Background(), s, schema.Passengers)
	assert.Error(t, err)
}

func TestCompare_Tolerance(t *testing.T) {
	set := func(v float64) tourload.ChecksumSet {
		return tourload.ChecksumSet{
			Table:    "Weather",
			RowCount: 1,
			Columns:  []string{"year", "precipitation"},
			IntSums:  map[string]int64{"year": 2012},
			RealSums: map[string]float64{"precipitation": v},
		}
	}

	tests := []struct {
		name      string
		actual    float64
		tolerance float64
		pass      bool
	}{
		{"exact", 10233.9, 0.01, true},
		{"within", 10233.905, 0.01, true},
		{"at bound", 10233.91, 0.0100001, true},
		{"outside", 10233.95, 0.01, false},
		{"zero tolerance exact", 10233.9, 0, true},
		{"negative tolerance treated as zero", 10233.905, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := checksum.Compare(set(10233.9), set(tt.actual), tt.tolerance)
			assert.Equal(t, tt.pass, r.Passed())
			assert.Equal(t, tourload.MetricReal, r.Metrics[2].Kind)
		})
	}
}

func TestCompare_IntegerIsExact(t *testing.T) {
	e := tourload.ChecksumSet{RowCount: 2, Columns: []string{"passengers"}, IntSums: map[string]int64{"passengers": 100}}
	a := tourload.ChecksumSet{RowCount: 2, Columns: []string{"passengers"}, IntSums: map[string]int64{"passengers": 101}}

	r := checksum.Compare(e, a, 10)
	require.Len(t, r.Mismatches(), 1)
	assert.Equal(t, "sum_passengers", r.Mismatches()[0].Name)
}

func TestCompare_ChecksEveryMetric(t *testing.T) {
	e := tourload.ChecksumSet{
		RowCount: 3,
		Columns:  []string{"year", "mean_temp"},
		IntSums:  map[string]int64{"year": 6000},
		RealSums: map[string]float64{"mean_temp": 1.5},
	}
	a := tourload.ChecksumSet{
		RowCount: 2,
		Columns:  []string{"year", "mean_temp"},
		IntSums:  map[string]int64{"year": 4000},
		RealSums: map[string]float64{"mean_temp": 9},
	}

	r := checksum.Compare(e, a, tourload.DefaultTolerance)
	assert.Len(t, r.Metrics, 3)
	assert.Len(t, r.Mismatches(), 3)
}

func TestCompare_ColumnOnOneSide(t *testing.T) {
	e := tourload.ChecksumSet{Columns: []string{"a"}, IntSums: map[string]int64{"a": 0}}
	a := tourload.ChecksumSet{Columns: []string{"b"}, RealSums: map[string]float64{"b": 0}}

	r := checksum.Compare(e, a, tourload.DefaultTolerance)
	require.Len(t, r.Metrics, 3)
	assert.False(t, r.Metrics[1].Passed)
	assert.False(t, r.Metrics[2].Passed)
}
