package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	colorPrimary = lipgloss.Color("#E0559B") // invitation pink
	colorLilac   = lipgloss.Color("#A98BF5")
	colorGold    = lipgloss.Color("#F5C15B")
	colorCoral   = lipgloss.Color("#FF7A6B")
	colorMuted   = lipgloss.Color("#6B6478")
	colorSuccess = lipgloss.Color("#5CC98A")
	colorWarning = lipgloss.Color("#F0A04B")
	colorError   = lipgloss.Color("#E5484D")
	colorText    = lipgloss.Color("#ECE6F5")
	colorSubtle  = lipgloss.Color("#3E3750")
	colorPill    = lipgloss.Color("#4A2E5C")
)

// Wizard steps
var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	doneTabStyle = lipgloss.NewStyle().
			Foreground(colorLilac).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)
)

// Frames
var (
	headerStyle = lipgloss.NewStyle().Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	// Overlays such as the export picker.
	activePanelStyle = panelStyle.
				BorderForeground(colorPrimary)
)

// Timeline track
var (
	trackStyle      = lipgloss.NewStyle().Foreground(colorSubtle)
	markerStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorGold)
	dragMarkerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCoral)
	pillStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorPill)
)

// Text
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	highlightStyle = lipgloss.NewStyle().Foreground(colorLilac)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)

	selectedItemStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorText)
)
