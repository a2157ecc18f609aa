// Package charts draws the analysis charts as PNG files.
package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/vvka-141/tourload/internal/analysis"
)

// Chart file names, written in this order.
const (
	TimeSeriesFile = "time_series.png"
	SeasonalFile   = "seasonal_patterns.png"
	ScatterFile    = "weather_scatter.png"
	RegressionFile = "regression_fit.png"
)

var (
	blue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	orange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	green  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	red    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// WriteAll draws every chart for res into dir, creating it if needed, and
// returns the written paths.
func WriteAll(dir string, res *analysis.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plot directory: %w", err)
	}

	charts := []struct {
		name string
		grid func(*analysis.Result) ([][]*plot.Plot, error)
		w, h vg.Length
	}{
		{TimeSeriesFile, timeSeries, 12 * vg.Inch, 10 * vg.Inch},
		{SeasonalFile, seasonal, 12 * vg.Inch, 8 * vg.Inch},
		{ScatterFile, scatter, 12 * vg.Inch, 10 * vg.Inch},
		{RegressionFile, regression, 12 * vg.Inch, 5 * vg.Inch},
	}

	var written []string
	for _, c := range charts {
		grid, err := c.grid(res)
		if err != nil {
			return written, fmt.Errorf("%s: %w", c.name, err)
		}
		path := filepath.Join(dir, c.name)
		if err := save(path, grid, c.w, c.h); err != nil {
			return written, fmt.Errorf("%s: %w", c.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// save lays the plots out in a grid and encodes the canvas as PNG.
func save(path string, grid [][]*plot.Plot, w, h vg.Length) error {
	img := vgimg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(grid),
		Cols:      len(grid[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, dc)
	for j := range grid {
		for i := range grid[j] {
			if grid[j][i] != nil {
				grid[j][i].Draw(canvases[j][i])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

// fractionalYear places a month on a continuous axis.
func fractionalYear(o analysis.Observation) float64 {
	return float64(o.Year) + float64(o.Month-1)/12
}

func series(obs []analysis.Observation, x, y func(analysis.Observation) float64) plotter.XYs {
	pts := make(plotter.XYs, len(obs))
	for i, o := range obs {
		pts[i].X, pts[i].Y = x(o), y(o)
	}
	return pts
}

func timeSeries(res *analysis.Result) ([][]*plot.Plot, error) {
	obs := res.Observations
	passengers := newPlot("Foreign passengers through Keflavik", "Year", "Passengers")
	temp := newPlot("Temperature", "Year", "°C")
	precip := newPlot("Precipitation", "Year", "mm")

	panels := []struct {
		p     *plot.Plot
		lines []func(analysis.Observation) float64
		names []string
		cols  []color.Color
	}{
		{passengers, []func(analysis.Observation) float64{func(o analysis.Observation) float64 { return o.Passengers }}, []string{"passengers"}, []color.Color{blue}},
		{temp, []func(analysis.Observation) float64{
			func(o analysis.Observation) float64 { return o.MaxTemp },
			func(o analysis.Observation) float64 { return o.MeanTemp },
			func(o analysis.Observation) float64 { return o.MinTemp },
		}, []string{"max", "mean", "min"}, []color.Color{red, orange, blue}},
		{precip, []func(analysis.Observation) float64{func(o analysis.Observation) float64 { return o.Precipitation }}, []string{"precipitation"}, []color.Color{green}},
	}
	for _, panel := range panels {
		for i, f := range panel.lines {
			l, err := plotter.NewLine(series(obs, fractionalYear, f))
			if err != nil {
				return nil, err
			}
			l.Color = panel.cols[i]
			panel.p.Add(l)
			if len(panel.lines) > 1 {
				panel.p.Legend.Add(panel.names[i], l)
			}
		}
	}
	return [][]*plot.Plot{{passengers}, {temp}, {precip}}, nil
}

func seasonal(res *analysis.Result) ([][]*plot.Plot, error) {
	monthLabels := make([]string, len(res.Months))
	monthPassengers := make(plotter.Values, len(res.Months))
	monthTemp := make(plotter.XYs, len(res.Months))
	for i, m := range res.Months {
		monthLabels[i] = fmt.Sprint(m.Month)
		monthPassengers[i] = m.Passengers
		monthTemp[i].X, monthTemp[i].Y = float64(i), m.MeanTemp
	}

	seasonLabels := make([]string, len(res.Seasons))
	seasonPassengers := make(plotter.Values, len(res.Seasons))
	seasonTemp := make(plotter.Values, len(res.Seasons))
	for i, s := range res.Seasons {
		seasonLabels[i] = string(s.Season)
		seasonPassengers[i] = s.Passengers
		seasonTemp[i] = s.MeanTemp
	}

	byMonth := newPlot("Average passengers by month", "Month", "Passengers")
	bars, err := plotter.NewBarChart(monthPassengers, vg.Points(18))
	if err != nil {
		return nil, err
	}
	bars.Color = blue
	byMonth.Add(bars)
	byMonth.NominalX(monthLabels...)

	tempByMonth := newPlot("Average temperature by month", "Month", "°C")
	line, points, err := plotter.NewLinePoints(monthTemp)
	if err != nil {
		return nil, err
	}
	line.Color, points.Color = red, red
	tempByMonth.Add(line, points)
	tempByMonth.NominalX(monthLabels...)

	bySeason := newPlot("Average passengers by season", "", "Passengers")
	sb, err := plotter.NewBarChart(seasonPassengers, vg.Points(40))
	if err != nil {
		return nil, err
	}
	sb.Color = green
	bySeason.Add(sb)
	bySeason.NominalX(seasonLabels...)

	tempBySeason := newPlot("Average temperature by season", "", "°C")
	tb, err := plotter.NewBarChart(seasonTemp, vg.Points(40))
	if err != nil {
		return nil, err
	}
	tb.Color = orange
	tempBySeason.Add(tb)
	tempBySeason.NominalX(seasonLabels...)

	return [][]*plot.Plot{{byMonth, tempByMonth}, {bySeason, tempBySeason}}, nil
}

func scatter(res *analysis.Result) ([][]*plot.Plot, error) {
	obs := res.Observations
	cols := []color.Color{red, orange, blue, green}
	var panels []*plot.Plot
	for i, v := range analysis.WeatherVariables {
		r := res.Correlations[i].R
		p := newPlot(fmt.Sprintf("Passengers vs %s (r = %.3f)", v.Name, r), v.Name, "Passengers")
		pts := series(obs, v.Value, func(o analysis.Observation) float64 { return o.Passengers })
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.Color = cols[i]
		p.Add(s)

		x := make([]float64, len(pts))
		y := make([]float64, len(pts))
		for k, pt := range pts {
			x[k], y[k] = pt.X, pt.Y
		}
		a, b := analysis.LineFit(x, y)
		fit := plotter.NewFunction(func(x float64) float64 { return a + b*x })
		fit.Color = cols[i]
		fit.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(fit)
		panels = append(panels, p)
	}
	return [][]*plot.Plot{{panels[0], panels[1]}, {panels[2], panels[3]}}, nil
}

func regression(res *analysis.Result) ([][]*plot.Plot, error) {
	reg := res.Regression
	residuals := reg.Residuals()

	actual := newPlot(fmt.Sprintf("Actual vs predicted (R² = %.3f)", reg.R2), "Actual", "Predicted")
	pts := make(plotter.XYs, len(reg.Actual))
	for i := range pts {
		pts[i].X, pts[i].Y = reg.Actual[i], reg.Predicted[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.Color = blue
	identity := plotter.NewFunction(func(x float64) float64 { return x })
	identity.Color = red
	identity.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	actual.Add(s, identity)

	resid := newPlot("Residuals", "Predicted", "Residual")
	rpts := make(plotter.XYs, len(residuals))
	for i := range rpts {
		rpts[i].X, rpts[i].Y = reg.Predicted[i], residuals[i]
	}
	rs, err := plotter.NewScatter(rpts)
	if err != nil {
		return nil, err
	}
	rs.Color = blue
	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = red
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	resid.Add(rs, zero)

	return [][]*plot.Plot{{actual, resid}}, nil
}
