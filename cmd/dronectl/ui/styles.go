package ui

import (
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorCyan    = lipgloss.Color("6")
	ColorYellow  = lipgloss.Color("3")
	ColorGreen   = lipgloss.Color("2")
	ColorMagenta = lipgloss.Color("5")
	ColorDim     = lipgloss.Color("8")
	ColorWhite   = lipgloss.Color("15")
	ColorRed     = lipgloss.Color("1")
	ColorBlue    = lipgloss.Color("4")

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	CountStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	TodayStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	PracticeStyle    = lipgloss.NewStyle().Foreground(ColorGreen)
	RepairStyle      = lipgloss.NewStyle().Foreground(ColorRed)
	ReplacementStyle = lipgloss.NewStyle().Foreground(ColorBlue)
)

// StatusStyle colors a drone status the way the list and detail views show it.
func StatusStyle(s models.DroneStatus) lipgloss.Style {
	switch s {
	case models.DroneUnstable:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case models.DroneFaulty:
		return lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	}
}
