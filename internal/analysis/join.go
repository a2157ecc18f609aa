package analysis

import (
	"sort"

	"github.com/vvka-141/tourload/pkg/tourload"
)

// Observation is one month present in both datasets.
type Observation struct {
	Year          int
	Month         int
	Date          tourload.Date
	Passengers    float64
	MeanTemp      float64
	MaxTemp       float64
	MinTemp       float64
	Precipitation float64
}

type monthKey struct {
	year, month int
	date        string
}

// Join pairs passenger and weather records on (year, month, date). Months
// missing from either side are dropped. The result is ordered by date.
func Join(passengers []tourload.PassengerRecord, weather []tourload.WeatherRecord) []Observation {
	byKey := make(map[monthKey]tourload.WeatherRecord, len(weather))
	for _, w := range weather {
		byKey[monthKey{w.Year, w.Month, w.Date.String()}] = w
	}

	out := make([]Observation, 0, len(passengers))
	for _, p := range passengers {
		w, ok := byKey[monthKey{p.Year, p.Month, p.Date.String()}]
		if !ok {
			continue
		}
		out = append(out, Observation{
			Year:          p.Year,
			Month:         p.Month,
			Date:          p.Date,
			Passengers:    float64(p.Passengers),
			MeanTemp:      w.MeanTemp,
			MaxTemp:       w.MaxTemp,
			MinTemp:       w.MinTemp,
			Precipitation: w.Precipitation,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}

// Variable extracts one weather series from observations.
type Variable struct {
	Name  string
	Value func(Observation) float64
}

// WeatherVariables are the explanatory series, in report order.
var WeatherVariables = []Variable{
	{"mean_temp", func(o Observation) float64 { return o.MeanTemp }},
	{"max_temp", func(o Observation) float64 { return o.MaxTemp }},
	{"min_temp", func(o Observation) float64 { return o.MinTemp }},
	{"precipitation", func(o Observation) float64 { return o.Precipitation }},
}

func column(obs []Observation, f func(Observation) float64) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = f(o)
	}
	return out
}

func passengersOf(o Observation) float64 { return o.Passengers }
