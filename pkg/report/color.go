package report

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorEnabled resolves a color mode for output going to f. auto enables
// color only on a terminal without NO_COLOR set.
func ColorEnabled(mode string, f *os.File) (bool, error) {
	switch mode {
	case ColorAlways:
		return true, nil
	case ColorNever:
		return false, nil
	case "", ColorAuto:
		if f == nil || os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
}

// styles holds the color formatters of the human report.
type styles struct {
	resultHeading *color.Color
	id            *color.Color
	structure     *color.Color
	heading       *color.Color
	data          *color.Color
	metadata      *color.Color
}

func newStyles(enabled bool) *styles {
	s := &styles{
		resultHeading: color.New(color.Bold, color.FgHiWhite),
		id:            color.New(color.FgHiGreen),
		structure:     color.New(color.Bold, color.FgHiBlue),
		heading:       color.New(color.Bold),
		data:          color.New(color.FgYellow),
		metadata:      color.New(color.FgHiBlue),
	}

	all := []*color.Color{s.resultHeading, s.id, s.structure, s.heading, s.data, s.metadata}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}
