package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/vvka-141/tourload/internal/analysis"
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// PrintAnalysis writes the tourism and weather analysis to w.
func PrintAnalysis(w io.Writer, res *analysis.Result, st Styles) error {
	var b strings.Builder

	b.WriteString(st.Title.Render("Tourism and weather analysis"))
	b.WriteString("\n")
	info := fmt.Sprintf("Months: %d   Range: %s to %s\nPassengers: mean %s  min %s  max %s\nMean temperature: %.2f°C   Mean precipitation: %.1f mm",
		res.Count(), res.From.Format("2006-01"), res.To.Format("2006-01"),
		thousands(res.PassengerMean), thousands(res.PassengerMin), thousands(res.PassengerMax),
		res.MeanTemp, res.Precipitation)
	b.WriteString(st.Box.Render(info))
	b.WriteString("\n\n")

	section(&b, st, "Seasonal averages")
	for _, s := range res.Seasons {
		fmt.Fprintf(&b, "  %-7s %10s passengers  %6.2f°C  %6.1f mm\n", s.Season, thousands(s.Passengers), s.MeanTemp, s.Precipitation)
	}
	fmt.Fprintf(&b, "  Summer/winter ratio: %.2fx\n\n", res.SummerWinterRatio())

	section(&b, st, "Monthly averages")
	for _, m := range res.Months {
		corr := st.Muted.Render("n/a")
		if m.HasCorrelation {
			corr = fmt.Sprintf("%+.3f", m.Correlation)
		}
		fmt.Fprintf(&b, "  %s %10s passengers  %6.2f°C  %6.1f mm  r(temp) %s\n",
			monthNames[m.Month-1], thousands(m.Passengers), m.MeanTemp, m.Precipitation, corr)
	}
	b.WriteString("\n")

	section(&b, st, "Correlation with passengers")
	for _, c := range res.Correlations {
		mark := st.Muted.Render("not significant")
		if c.Significant() {
			mark = st.Success.Render(SymbolCheck + " significant")
		}
		fmt.Fprintf(&b, "  %-14s r %+.3f  p %.4f  %s\n", c.Variable, c.R, c.P, mark)
	}
	b.WriteString("\n")

	reg := res.Regression
	section(&b, st, "Regression on standardized weather")
	fmt.Fprintf(&b, "  R² %.3f   adjusted R² %.3f   RMSE %s\n", reg.R2, reg.AdjustedR2, thousands(reg.RMSE))
	for i, name := range reg.Variables {
		fmt.Fprintf(&b, "  %s %-14s %+12.1f\n", SymbolBullet, name, reg.Coefficients[i])
	}
	b.WriteString("\n")

	section(&b, st, "Yearly totals")
	for _, y := range res.Years {
		fmt.Fprintf(&b, "  %d %12s passengers  %6.2f°C\n", y.Year, thousands(y.Passengers), y.MeanTemp)
	}
	b.WriteString("\n")

	section(&b, st, "Summary")
	fmt.Fprintf(&b, "  Weather explains %.1f%% of the variation in arrivals.\n", reg.R2*100)
	b.WriteString("  " + res.Conclusion() + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, st Styles, title string) {
	b.WriteString(st.Heading.Render(title))
	b.WriteString("\n")
}

// thousands formats v rounded to an integer with comma separators.
func thousands(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
