package stats

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	colorBold           = "\x1b[1m"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// ShouldUseColor reports whether w is a terminal that accepts ANSI styling.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func bold(s string, useColor bool) string {
	if !useColor {
		return s
	}
	return colorBold + s + colorReset
}
