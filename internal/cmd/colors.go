package cmd

import "os"

// ANSI codes for the setup commands' own output. The picker styles rows
// with lipgloss instead.
var (
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan   = "\033[0;36m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

func init() {
	if !colorsEnabled(os.Getenv) {
		disableColors()
	}
}

// colorsEnabled honors NO_COLOR (https://no-color.org/) and TERM=dumb.
func colorsEnabled(getenv func(string) string) bool {
	return getenv("NO_COLOR") == "" && getenv("TERM") != "dumb"
}

func disableColors() {
	colorGreen, colorYellow, colorCyan = "", "", ""
	colorDim, colorBold, colorReset = "", "", ""
}
