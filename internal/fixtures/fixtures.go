// Package fixtures embeds the reference cleaned datasets used by tests and
// the aggregates they are known to have.
package fixtures

import (
	"bytes"
	"embed"
	"io"
	"os"
	"path/filepath"
	"testing"
)

//go:embed data/*.csv
var files embed.FS

// File names of the embedded datasets.
const (
	PassengersFile = "passengers_clean.csv"
	WeatherFile    = "weather_clean.csv"
)

// Known aggregates of the embedded datasets (2012-01 through 2022-12).
const (
	Rows = 132

	YearSum  = 266244 // 12 * (2012 + ... + 2022)
	MonthSum = 858    // 11 * (1 + ... + 12)

	PassengersSum = 14790715

	MeanTempSum      = 707.50
	MaxTempSum       = 1562.80
	MinTempSum       = -133.90
	PrecipitationSum = 10233.90
)

// Bytes returns the content of an embedded dataset.
func Bytes(name string) []byte {
	b, err := files.ReadFile("data/" + name)
	if err != nil {
		panic(err)
	}
	return b
}

// Reader returns a reader over an embedded dataset.
func Reader(name string) io.Reader {
	return bytes.NewReader(Bytes(name))
}

// WriteDir writes both datasets into a fresh temp directory and returns
// their paths.
func WriteDir(t testing.TB) (passengers, weather string) {
	t.Helper()
	dir := t.TempDir()
	passengers = filepath.Join(dir, PassengersFile)
	weather = filepath.Join(dir, WeatherFile)
	if err := os.WriteFile(passengers, Bytes(PassengersFile), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(weather, Bytes(WeatherFile), 0o644); err != nil {
		t.Fatal(err)
	}
	return passengers, weather
}
