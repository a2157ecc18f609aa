// Package report renders pipeline outcomes for people.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/vvka-141/tourload/internal/pipeline"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// fingerprintLen is how many hex digits of a SHA-256 are shown.
const fingerprintLen = 16

// Print writes the run report to w.
func Print(w io.Writer, rep *pipeline.Report, st Styles) error {
	var b strings.Builder

	header := fmt.Sprintf("Run %s\nStore: %s   Started: %s   Duration: %s\nTolerance: %g (absolute, real-valued sums)",
		rep.RunID, rep.Store, rep.StartedAt.UTC().Format(time.RFC3339), rep.Duration.Round(time.Millisecond), rep.Tolerance)
	b.WriteString(st.Title.Render("Load verification report"))
	b.WriteString("\n")
	b.WriteString(st.Box.Render(header))
	b.WriteString("\n\n")

	b.WriteString(st.Heading.Render("Sources"))
	b.WriteString("\n")
	for _, src := range rep.Sources {
		fmt.Fprintf(&b, "  %-11s %s  %d records  %s\n",
			src.Table, src.Location, src.Records, st.Muted.Render("sha256:"+shortHash(src.SHA256)))
	}
	b.WriteString("\n")

	passed := 0
	mismatches := 0
	for _, res := range rep.Results {
		writeResult(&b, res, st)
		if res.Passed() {
			passed++
		}
		mismatches += len(res.Mismatches())
	}

	summary := fmt.Sprintf("%d of %d tables verified, %d mismatched metric(s)", passed, len(rep.Results), mismatches)
	if rep.Passed() {
		b.WriteString(st.Success.Render(SymbolCheck + " " + summary))
	} else {
		b.WriteString(st.Error.Render(SymbolCross + " " + summary))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeResult(b *strings.Builder, res tourload.LoadResult, st Styles) {
	switch {
	case res.LoadErr != nil:
		fmt.Fprintf(b, "%s %s\n", st.Heading.Render(res.Table+":"), st.Error.Render("LOAD FAILED (rolled back)"))
		fmt.Fprintf(b, "  %s\n", st.Error.Render(res.LoadErr.Error()))
	case res.Passed():
		fmt.Fprintf(b, "%s %s\n", st.Heading.Render(res.Table+":"), st.Success.Render(fmt.Sprintf("PASS (%d rows)", res.RowsInserted)))
	default:
		fmt.Fprintf(b, "%s %s\n", st.Heading.Render(res.Table+":"), st.Warning.Render(fmt.Sprintf("MISMATCH (%d rows)", res.RowsInserted)))
	}

	for _, m := range res.Metrics {
		symbol := st.Success.Render(SymbolCheck)
		if !m.Passed {
			symbol = st.Error.Render(SymbolCross)
		}
		expected, actual, diff := formatMetric(m)
		line := fmt.Sprintf("%-20s expected %-16s actual %-16s", m.Name, expected, actual)
		if !m.Passed {
			line += " diff " + diff
		}
		fmt.Fprintf(b, "  %s %s\n", symbol, strings.TrimRight(line, " "))
	}
	b.WriteString("\n")
}

func formatMetric(m tourload.MetricResult) (expected, actual, diff string) {
	if m.Kind == tourload.MetricReal {
		d := m.ActualReal - m.ExpectedReal
		return fmt.Sprintf("%.2f", m.ExpectedReal), fmt.Sprintf("%.2f", m.ActualReal), fmt.Sprintf("%+.4g", roundTo(d, 1e-9))
	}
	return fmt.Sprintf("%d", m.ExpectedInt), fmt.Sprintf("%d", m.ActualInt), fmt.Sprintf("%+d", m.ActualInt-m.ExpectedInt)
}

func roundTo(v, unit float64) float64 {
	return math.Round(v/unit) * unit
}

func shortHash(h string) string {
	if len(h) > fingerprintLen {
		return h[:fingerprintLen]
	}
	return h
}
