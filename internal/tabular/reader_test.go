package tabular_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/tourload/internal/fixtures"
	"github.com/vvka-141/tourload/internal/source"
	"github.com/vvka-141/tourload/internal/tabular"
	"github.com/vvka-141/tourload/pkg/tourload"
)

func TestRead_Passengers(t *testing.T) {
	in := "year,month,date,passengers\n2012,1,2012-01-01,29275\n2012,2,2012-02-01 00:00:00,31361\n"

	recs, err := tabular.Read[tourload.PassengerRecord](strings.NewReader(in), "p.csv", tabular.Options{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, tourload.PassengerRecord{Year: 2012, Month: 1, Date: tourload.NewDate(2012, 1), Passengers: 29275}, recs[0])
	assert.Equal(t, tourload.NewDate(2012, 2), recs[1].Date)
}

func TestRead_ColumnOrderAndExtraColumns(t *testing.T) {
	in := "note,passengers,date,month,year\nx,10,2015-06-01,6,2015\n"

	recs, err := tabular.Read[tourload.PassengerRecord](strings.NewReader(in), "p.csv", tabular.Options{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2015, recs[0].Year)
	assert.Equal(t, 6, recs[0].Month)
	assert.Equal(t, int64(10), recs[0].Passengers)
}

func TestRead_HeaderOnly(t *testing.T) {
	recs, err := tabular.Read[tourload.WeatherRecord](
		strings.NewReader("year,month,date,mean_temp,max_temp,min_temp,precipitation\n"), "w.csv", tabular.Options{})
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRead_BOM(t *testing.T) {
	in := "\ufeffyear,month,date,passengers\n2012,1,2012-01-01,5\n"

	recs, err := tabular.Read[tourload.PassengerRecord](strings.NewReader(in), "p.csv", tabular.Options{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2012, recs[0].Year)
}

func TestRead_Delimiter(t *testing.T) {
	in := "year;month;date;passengers\n2012;1;2012-01-01;5\n"

	recs, err := tabular.Read[tourload.PassengerRecord](strings.NewReader(in), "p.csv", tabular.Options{Comma: ';'})
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestRead_MissingColumn(t *testing.T) {
	in := "year,month,date\n2012,1,2012-01-01\n"

	_, err := tabular.Read[tourload.PassengerRecord](strings.NewReader(in), "p.csv", tabular.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tourload.ErrParse))

	var pe *tourload.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "p.csv", pe.File)
	assert.Equal(t, []string{"passengers"}, pe.Columns)
}

func TestRead_MissingColumnHeaderOnly(t *testing.T) {
	_, err := tabular.Read[tourload.PassengerRecord](strings.NewReader("year,month\n"), "p.csv", tabular.Options{})
	assert.ErrorIs(t, err, tourload.ErrParse)
}

func TestRead_EmptyInput(t *testing.T) {
	_, err := tabular.Read[tourload.PassengerRecord](strings.NewReader(""), "p.csv", tabular.Options{})
	assert.ErrorIs(t, err, tourload.ErrParse)
}

func TestRead_TypeCoercion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		row  int
	}{
		{"non-integer count", "year,month,date,passengers\n2012,1,2012-01-01,10\n2012,2,2012-02-01,many\n", 2},
		{"non-integer year", "year,month,date,passengers\ntwenty,1,2012-01-01,10\n", 1},
		{"bad date", "year,month,date,passengers\n2012,1,2012-01-01,10\n2012,2,2012-02-01,11\n2012,3,March,12\n", 3},
		{"date inside month", "year,month,date,passengers\n2012,1,2012-05-17,10\n", 1},
		{"date of another month", "year,month,date,passengers\n2012,1,2012-01-01,10\n2012,2,2012-03-01,11\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tabular.Read[tourload.PassengerRecord](strings.NewReader(tt.in), "p.csv", tabular.Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tourload.ErrTypeCoercion)

			var te *tourload.TypeCoercionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "p.csv", te.File)
			assert.Equal(t, tt.row, te.Row)
			assert.Error(t, te.Err)
		})
	}
}

func TestRead_WeatherValidation(t *testing.T) {
	const header = "year,month,date,mean_temp,max_temp,min_temp,precipitation\n"
	const good = "2012,1,2012-01-01,-0.3,5.7,-6.0,86.2\n"
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"NaN mean", "2012,2,2012-02-01,NaN,4.1,-4.8,101.7\n", "mean_temp"},
		{"Inf max", "2012,2,2012-02-01,-0.2,Inf,-4.8,101.7\n", "max_temp"},
		{"+Inf min", "2012,2,2012-02-01,-0.2,4.1,+Inf,101.7\n", "min_temp"},
		{"-Inf precipitation", "2012,2,2012-02-01,-0.2,4.1,-4.8,-Inf\n", "precipitation"},
		{"date inside month", "2012,2,2012-02-14,-0.2,4.1,-4.8,101.7\n", "2012-02-14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tabular.Read[tourload.WeatherRecord](strings.NewReader(header+good+tt.row), "w.csv", tabular.Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tourload.ErrTypeCoercion)

			var te *tourload.TypeCoercionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "w.csv", te.File)
			assert.Equal(t, 2, te.Row)
			assert.Contains(t, te.Error(), tt.column)
		})
	}
}

func TestRead_RaggedRow(t *testing.T) {
	in := "year,month,date,passengers\n2012,1,2012-01-01\n"

	_, err := tabular.Read[tourload.PassengerRecord](strings.NewReader(in), "p.csv", tabular.Options{})
	assert.ErrorIs(t, err, tourload.ErrParse)
}

func TestRead_Fixtures(t *testing.T) {
	p, err := tabular.Read[tourload.PassengerRecord](fixtures.Reader(fixtures.PassengersFile), fixtures.PassengersFile, tabular.Options{})
	require.NoError(t, err)
	assert.Len(t, p, fixtures.Rows)

	w, err := tabular.Read[tourload.WeatherRecord](fixtures.Reader(fixtures.WeatherFile), fixtures.WeatherFile, tabular.Options{})
	require.NoError(t, err)
	assert.Len(t, w, fixtures.Rows)

	for _, r := range w {
		assert.True(t, r.TemperaturesOrdered(), "%d-%02d: min %.1f mean %.1f max %.1f", r.Year, r.Month, r.MinTemp, r.MeanTemp, r.MaxTemp)
		assert.GreaterOrEqual(t, r.Precipitation, 0.0)
	}
}

func TestReadFile_Fingerprint(t *testing.T) {
	passengers, _ := fixtures.WriteDir(t)

	f, err := tabular.ReadFile[tourload.PassengerRecord](context.Background(), source.New(source.S3Config{}), passengers, tabular.Options{})
	require.NoError(t, err)
	assert.Len(t, f.Records, fixtures.Rows)
	assert.Equal(t, passengers, f.Location)
	assert.Len(t, f.SHA256, 64)

	// Same bytes, same digest; one changed byte, different digest.
	again, err := tabular.ReadFile[tourload.PassengerRecord](context.Background(), source.New(source.S3Config{}), passengers, tabular.Options{})
	require.NoError(t, err)
	assert.Equal(t, f.SHA256, again.SHA256)

	data, err := os.ReadFile(passengers)
	require.NoError(t, err)
	changed := filepath.Join(t.TempDir(), "changed.csv")
	require.NoError(t, os.WriteFile(changed, append(data, '\n'), 0o644))
	other, err := tabular.ReadFile[tourload.PassengerRecord](context.Background(), source.New(source.S3Config{}), changed, tabular.Options{})
	require.NoError(t, err)
	assert.NotEqual(t, f.SHA256, other.SHA256)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := tabular.ReadFile[tourload.PassengerRecord](context.Background(), source.New(source.S3Config{}),
		filepath.Join(t.TempDir(), "absent.csv"), tabular.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, tourload.ErrParse)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
