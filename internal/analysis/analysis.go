// Package analysis relates monthly foreign passenger arrivals to the weather
// observed in the same month.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vvka-141/tourload/pkg/tourload"
)

// ErrTooFewObservations is returned when the joined dataset cannot support
// the regression.
var ErrTooFewObservations = errors.New("too few observations")

// Season is a meteorological season.
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
)

// Seasons in report order.
var Seasons = []Season{Winter, Spring, Summer, Fall}

// SeasonOf maps a calendar month to its season (December through February is
// winter).
func SeasonOf(month int) Season {
	switch month {
	case 12, 1, 2:
		return Winter
	case 3, 4, 5:
		return Spring
	case 6, 7, 8:
		return Summer
	default:
		return Fall
	}
}

// GroupMean holds averages over a group of observations.
type GroupMean struct {
	N             int
	Passengers    float64
	MeanTemp      float64
	Precipitation float64
}

// SeasonMean is the average of one season.
type SeasonMean struct {
	Season Season
	GroupMean
}

// MonthMean is the average of one calendar month across years. Correlation
// is set only when the month has more than two observations.
type MonthMean struct {
	Month int
	GroupMean
	Correlation    float64
	HasCorrelation bool
}

// YearTotal aggregates one calendar year.
type YearTotal struct {
	Year       int
	Passengers float64
	MeanTemp   float64
}

// Correlation of passengers with one weather variable.
type Correlation struct {
	Variable string
	R        float64
	P        float64
}

// Significant reports whether p < 0.05.
func (c Correlation) Significant() bool { return c.P < 0.05 }

// Result is the full analysis of a joined dataset.
type Result struct {
	Observations []Observation
	From, To     tourload.Date

	PassengerMean float64
	PassengerMin  float64
	PassengerMax  float64
	MeanTemp      float64
	Precipitation float64

	Seasons      []SeasonMean
	Months       []MonthMean
	Correlations []Correlation
	Regression   Regression
	Years        []YearTotal
}

// Count is the number of joined months.
func (r *Result) Count() int { return len(r.Observations) }

// Season returns the averages of s.
func (r *Result) Season(s Season) SeasonMean {
	for _, m := range r.Seasons {
		if m.Season == s {
			return m
		}
	}
	return SeasonMean{Season: s}
}

// SummerWinterRatio is average summer arrivals over average winter arrivals.
func (r *Result) SummerWinterRatio() float64 {
	w := r.Season(Winter).Passengers
	if w == 0 {
		return math.NaN()
	}
	return r.Season(Summer).Passengers / w
}

// TemperatureCorrelation is the correlation of passengers with mean_temp.
func (r *Result) TemperatureCorrelation() Correlation {
	for _, c := range r.Correlations {
		if c.Variable == "mean_temp" {
			return c
		}
	}
	return Correlation{Variable: "mean_temp", R: math.NaN(), P: math.NaN()}
}

// Conclusion grades the temperature relationship.
func (r *Result) Conclusion() string {
	switch c := r.TemperatureCorrelation().R; {
	case c > 0.5:
		return "Temperature has a significant positive relationship with tourism."
	case c > 0.3:
		return "Temperature has a moderate positive relationship with tourism."
	default:
		return "Temperature has a weak relationship with tourism; other factors likely dominate."
	}
}

// Analyze computes statistics, correlations and the regression over obs,
// which must be ordered by date.
func Analyze(obs []Observation) (*Result, error) {
	if len(obs) <= len(WeatherVariables)+1 {
		return nil, fmt.Errorf("%w: got %d, need more than %d", ErrTooFewObservations, len(obs), len(WeatherVariables)+1)
	}

	passengers := column(obs, passengersOf)
	res := &Result{
		Observations:  obs,
		From:          obs[0].Date,
		To:            obs[len(obs)-1].Date,
		PassengerMean: stat.Mean(passengers, nil),
		PassengerMin:  floats.Min(passengers),
		PassengerMax:  floats.Max(passengers),
		MeanTemp:      stat.Mean(column(obs, WeatherVariables[0].Value), nil),
		Precipitation: stat.Mean(column(obs, WeatherVariables[3].Value), nil),
	}

	for _, s := range Seasons {
		group := filter(obs, func(o Observation) bool { return SeasonOf(o.Month) == s })
		res.Seasons = append(res.Seasons, SeasonMean{Season: s, GroupMean: meanOf(group)})
	}

	for m := 1; m <= 12; m++ {
		group := filter(obs, func(o Observation) bool { return o.Month == m })
		if len(group) == 0 {
			continue
		}
		mm := MonthMean{Month: m, GroupMean: meanOf(group)}
		if len(group) > 2 {
			r, _, err := Pearson(column(group, WeatherVariables[0].Value), column(group, passengersOf))
			if err != nil {
				return nil, fmt.Errorf("month %d: %w", m, err)
			}
			mm.Correlation, mm.HasCorrelation = r, true
		}
		res.Months = append(res.Months, mm)
	}

	names := make([]string, len(WeatherVariables))
	columns := make([][]float64, len(WeatherVariables))
	for i, v := range WeatherVariables {
		names[i] = v.Name
		columns[i] = column(obs, v.Value)
		r, p, err := Pearson(columns[i], passengers)
		if err != nil {
			return nil, fmt.Errorf("correlation %s: %w", v.Name, err)
		}
		res.Correlations = append(res.Correlations, Correlation{Variable: v.Name, R: r, P: p})
	}

	reg, err := Fit(names, columns, passengers)
	if err != nil {
		return nil, fmt.Errorf("regression: %w", err)
	}
	res.Regression = reg

	res.Years = yearTotals(obs)
	return res, nil
}

func filter(obs []Observation, keep func(Observation) bool) []Observation {
	var out []Observation
	for _, o := range obs {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func meanOf(group []Observation) GroupMean {
	if len(group) == 0 {
		return GroupMean{}
	}
	return GroupMean{
		N:             len(group),
		Passengers:    stat.Mean(column(group, passengersOf), nil),
		MeanTemp:      stat.Mean(column(group, WeatherVariables[0].Value), nil),
		Precipitation: stat.Mean(column(group, WeatherVariables[3].Value), nil),
	}
}

func yearTotals(obs []Observation) []YearTotal {
	var out []YearTotal
	for start := 0; start < len(obs); {
		end := start
		for end < len(obs) && obs[end].Year == obs[start].Year {
			end++
		}
		group := obs[start:end]
		out = append(out, YearTotal{
			Year:       obs[start].Year,
			Passengers: floats.Sum(column(group, passengersOf)),
			MeanTemp:   stat.Mean(column(group, WeatherVariables[0].Value), nil),
		})
		start = end
	}
	return out
}
