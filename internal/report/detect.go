package report

import (
	"io"
	"os"

	"golang.org/x/term"
)

// PlainEnv forces plain output when set to 1.
const PlainEnv = "TOURLOAD_PLAIN"

// DetectStyles picks colored output only when w is a terminal and nothing in
// the environment asks for plain text.
//
// Plain output is chosen if:
//   - TOURLOAD_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
//   - w is not a terminal (redirected to a file or pipe)
func DetectStyles(w io.Writer) Styles {
	if os.Getenv(PlainEnv) == "1" || os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" {
		return Plain()
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return Plain()
	}
	return Color()
}
