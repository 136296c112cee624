package styles

import (
	"github.com/allbin/go-fluke45/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Readout styles
	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Reading).
			Padding(1, 2)

	UnitStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext1)

	ModeTagStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.ModeTag).
			Padding(0, 1).
			MarginRight(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Width(12)

	// Status styles
	StatusReadingStyle = lipgloss.NewStyle().
				Foreground(colors.Green).
				Bold(true)

	StatusPausedStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow).
				Bold(true)

	StatusConnectingStyle = lipgloss.NewStyle().
				Foreground(colors.Blue).
				Bold(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Error styles
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	// Info styles
	InfoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve)
)

type StatusType int

const (
	StatusConnecting StatusType = iota
	StatusReading
	StatusPaused
	StatusError
)

func (s StatusType) String() string {
	switch s {
	case StatusConnecting:
		return "CONNECTING"
	case StatusReading:
		return "READING"
	case StatusPaused:
		return "PAUSED"
	default:
		return "ERROR"
	}
}

func GetStatusStyle(status StatusType) lipgloss.Style {
	switch status {
	case StatusReading:
		return StatusReadingStyle
	case StatusPaused:
		return StatusPausedStyle
	case StatusConnecting:
		return StatusConnectingStyle
	default:
		return StatusErrorStyle
	}
}

// ValueColor picks the readout color for a multiplier and mode list.
func ValueColor(multiplier string, modes []string) lipgloss.Color {
	if multiplier == "!OR" {
		return colors.Overrange
	}
	for _, m := range modes {
		switch m {
		case "hold", "min", "max":
			return colors.Held
		}
	}
	return colors.Reading
}
