package report

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var (
	NeonPurple = lipgloss.AdaptiveColor{Light: "#5d40c9", Dark: "#bd93f9"}
	NeonPink   = lipgloss.AdaptiveColor{Light: "#d10074", Dark: "#ff79c6"}
	NeonCyan   = lipgloss.AdaptiveColor{Light: "#0073a8", Dark: "#8be9fd"}
	LightGray  = lipgloss.AdaptiveColor{Light: "#4a4a4a", Dark: "#a9b1d6"}
	StateDone  = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#50fa7b"}
)

// Progress bar gradient, as hex for bubbles/progress.
const (
	ProgressStart = "#ff79c6"
	ProgressEnd   = "#bd93f9"
)

// styles are bound to one renderer so the color profile follows the
// destination writer rather than the process stdout.
type styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Value lipgloss.Style
	Dim   lipgloss.Style
	Hash  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		Title: r.NewStyle().Foreground(StateDone).Bold(true),
		Label: r.NewStyle().Foreground(NeonCyan).Width(22),
		Value: r.NewStyle(),
		Dim:   r.NewStyle().Foreground(LightGray),
		Hash:  r.NewStyle().Foreground(NeonPink),
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ColorProfile picks the color profile for w. Non-terminals and NO_COLOR get
// plain ASCII.
func ColorProfile(w io.Writer) termenv.Profile {
	if !IsTerminal(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

func newRenderer(w io.Writer, profile termenv.Profile) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return r
}
