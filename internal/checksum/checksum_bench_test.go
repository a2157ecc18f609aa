package checksum_test

import (
	"testing"

	"github.com/vvka-141/tourload/internal/checksum"
	"github.com/vvka-141/tourload/internal/schema"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// BenchmarkComputeExpected benchmarks aggregation of a century of monthly weather rows
func BenchmarkComputeExpected(b *testing.B) {
	records := make([]tourload.WeatherRecord, 0, 1200)
	for y := 1923; y < 2023; y++ {
		for m := 1; m <= 12; m++ {
			records = append(records, tourload.WeatherRecord{
				Year: y, Month: m, Date: tourload.NewDate(y, m),
				MeanTemp: 4.2, MaxTemp: 9.1, MinTemp: -1.3, Precipitation: 71.4,
			})
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := checksum.ComputeExpected(schema.Weather, records); err != nil {
			b.Fatal(err)
		}
	}
}
