// Package output renders run progress and summaries to the terminal.
package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for the console output.
type ColorScheme struct {
	Title *color.Color
	Label *color.Color
	Value *color.Color
	Pass  *color.Color
	Fail  *color.Color
	Warn  *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title: color.New(color.FgCyan, color.Bold),
		Label: color.New(color.FgYellow),
		Value: color.New(color.FgWhite),
		Pass:  color.New(color.FgGreen, color.Bold),
		Fail:  color.New(color.FgRed, color.Bold),
		Warn:  color.New(color.FgYellow, color.Bold),
	}
}

// NoColorScheme returns a scheme with all colors disabled.
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	scheme.Title.DisableColor()
	scheme.Label.DisableColor()
	scheme.Value.DisableColor()
	scheme.Pass.DisableColor()
	scheme.Fail.DisableColor()
	scheme.Warn.DisableColor()
	return scheme
}

// breakerColor picks a color for a circuit-breaker state string.
func (cs *ColorScheme) breakerColor(state string) *color.Color {
	switch state {
	case "CLOSED", "closed":
		return cs.Pass
	case "OPEN", "open":
		return cs.Fail
	default:
		return cs.Warn
	}
}
