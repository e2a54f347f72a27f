package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorError   = lipgloss.Color("#ef4444") // red-500
	colorWarning = lipgloss.Color("#eab308") // yellow-500
	colorInfo    = lipgloss.Color("#06b6d4") // cyan-500
	colorPass    = lipgloss.Color("#10b981") // green-500
	colorDim     = lipgloss.Color("#6b7280") // gray-500
	colorAccent  = lipgloss.Color("#3b82f6") // blue-500
)

// Styles holds the lipgloss styles for CLI output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Pass    lipgloss.Style
	Dim     lipgloss.Style
	Bold    lipgloss.Style
	Path    lipgloss.Style

	SymbolPass string
	SymbolFail string

	TreeMiddle string
	TreeEnd    string
}

// stylesFor returns colored styles when w is a terminal and plain ones
// otherwise.
func stylesFor(w io.Writer) *Styles {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return defaultStyles()
	}

	return plainStyles()
}

func defaultStyles() *Styles {
	s := plainStyles()

	s.Error = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	s.Warning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	s.Info = lipgloss.NewStyle().Foreground(colorInfo)
	s.Pass = lipgloss.NewStyle().Foreground(colorPass).Bold(true)
	s.Dim = lipgloss.NewStyle().Foreground(colorDim)
	s.Bold = lipgloss.NewStyle().Bold(true)
	s.Path = lipgloss.NewStyle().Foreground(colorAccent)

	return s
}

func plainStyles() *Styles {
	return &Styles{
		Error:   lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Info:    lipgloss.NewStyle(),
		Pass:    lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle(),
		Path:    lipgloss.NewStyle(),

		SymbolPass: "✓",
		SymbolFail: "✗",

		TreeMiddle: "├─",
		TreeEnd:    "╰─",
	}
}
