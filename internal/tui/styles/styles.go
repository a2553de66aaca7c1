package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette: savanna tones on a dark terminal.
var (
	ColorAccent    = lipgloss.Color("#E8A33D") // amber, focus and titles
	ColorPass      = lipgloss.Color("#6BCB77") // players that finished every path
	ColorFail      = lipgloss.Color("#E5534B")
	ColorWarn      = lipgloss.Color("#F2CC60")
	ColorText      = lipgloss.Color("#EDEAE3")
	ColorSubtle    = lipgloss.Color("#8A857C")
	ColorBorder    = lipgloss.Color("#45403A")
	ColorBg        = lipgloss.Color("#1C1A17")
	ColorHighlight = lipgloss.Color("#332F2A")
	ColorBanner    = lipgloss.Color("#FF8C42") // zebra orange
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ColorSubtle)

	Text   = lipgloss.NewStyle().Foreground(ColorText)
	Subtle = lipgloss.NewStyle().Foreground(ColorSubtle)

	// Dashboard numbers
	Metric = lipgloss.NewStyle().Foreground(ColorPass).Bold(true)
	Active = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	Fail = lipgloss.NewStyle().Foreground(ColorFail)
	Warn = lipgloss.NewStyle().Foreground(ColorWarn)
	Pass = lipgloss.NewStyle().Foreground(ColorPass).Bold(true)

	KeyKey  = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	KeyDesc = lipgloss.NewStyle().Foreground(ColorSubtle)

	// Form fields
	InputActive = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(ColorAccent).Padding(0, 1)
	InputNormal = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder).Padding(0, 1)

	// Cards and the history table
	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Margin(0, 1)

	TabBase = lipgloss.NewStyle().
		Foreground(ColorSubtle).
		Padding(0, 2)

	TabActive = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(ColorAccent).
			Padding(0, 2)

	FooterBase = lipgloss.NewStyle().
			Height(1).
			Padding(0, 1)
)

// RenderKey formats one footer hint as "<key> desc".
func RenderKey(key, desc string) string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		KeyKey.Render("<"+key+">"),
		" ",
		KeyDesc.Render(desc),
	)
}
