package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan: headings
	colorAccent  = lipgloss.Color("#FFD700") // Gold: costs and warnings
	colorSuccess = lipgloss.Color("#00E676") // Green: success
	colorDanger  = lipgloss.Color("#FF5252") // Red: errors
	colorMuted   = lipgloss.Color("#8C8C8C") // Gray: de-emphasized
	colorBlue    = lipgloss.Color("#5B8DEF") // Blue: composite units
)

// Status icons.
const (
	iconDone    = "✓"
	iconFailed  = "✗"
	iconWarning = "⚠"
	iconCycle   = "↻"
	iconBullet  = "•"
)

var (
	styleHeading   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleCost      = lipgloss.NewStyle().Foreground(colorAccent)
	styleSuccess   = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleDanger    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleWarning   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleMuted     = lipgloss.NewStyle().Foreground(colorMuted)
	styleComposite = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	styleUnit      = lipgloss.NewStyle()
)
