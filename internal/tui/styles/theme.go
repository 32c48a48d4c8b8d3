package styles

import "github.com/charmbracelet/lipgloss"

// Palette is a set of terminal colors, ANSI 256 codes or hex strings.
type Palette struct {
	Primary  string
	Success  string
	Warning  string
	Error    string
	Info     string
	Emphasis string
	Border   string
}

// DefaultPalette matches the "default" configuration theme.
var DefaultPalette = Palette{
	Primary:  "213",
	Success:  "114",
	Warning:  "220",
	Error:    "196",
	Info:     "39",
	Emphasis: "212",
	Border:   "213",
}

// Styles defines the core UI styles
type Styles struct {
	App        lipgloss.Style
	Title      lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Cursor     lipgloss.Style
	Directory  lipgloss.Style
	Symlink    lipgloss.Style
	Help       lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Mode       lipgloss.Style

	Pane       lipgloss.Style
	ActivePane lipgloss.Style
	LockedPane lipgloss.Style
}

// Theme holds the styles in use. Apply replaces it.
var Theme = build(DefaultPalette)

// Apply rebuilds Theme from p.
func Apply(p Palette) {
	Theme = build(p)
}

func build(p Palette) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Primary)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Success)).
			Bold(true),
		Unselected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC")),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(p.Primary)),
		Directory: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Info)).
			Bold(true),
		Symlink: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Emphasis)).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A9")),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Error)),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Success)),
		Mode: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(p.Warning)).
			Padding(0, 1),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")),
		ActivePane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)),
		LockedPane: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(p.Warning)),
	}
}
