package components

import (
	"fmt"

	"github.com/allbin/go-fluke45/internal/tui/colors"
	"github.com/allbin/go-fluke45/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type StatusBar struct {
	portPath string
	baudRate int
	status   styles.StatusType
	message  string
	err      error
	inSync   bool
	width    int
}

func NewStatusBar(portPath string, baudRate int) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		baudRate: baudRate,
		status:   styles.StatusConnecting,
		message:  "Connecting...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// SetPort replaces the port shown once a scan has picked one.
func (sb *StatusBar) SetPort(portPath string) {
	sb.portPath = portPath
}

func (sb *StatusBar) SetStatus(status styles.StatusType, message string) {
	sb.status = status
	sb.message = message
	if status != styles.StatusError {
		sb.err = nil
	}
}

func (sb *StatusBar) SetError(err error) {
	sb.status = styles.StatusError
	sb.err = err
	sb.message = fmt.Sprintf("%v", err)
}

func (sb *StatusBar) SetSync(inSync bool) {
	sb.inSync = inSync
}

func (sb *StatusBar) Status() styles.StatusType {
	return sb.status
}

func (sb *StatusBar) Message() string {
	return sb.message
}

// View renders the bar: status block, port, sync indicator, message on the
// left; line settings, reading count and time on the right.
func (sb *StatusBar) View(count int, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Section 1: status block (like NORMAL in nvim)
	statusColor := styles.GetStatusStyle(sb.status).GetForeground()
	statusStyle := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(statusColor).
		Bold(true).
		Padding(0, 1)
	status := statusStyle.Render(sb.status.String())

	portStyle := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1)
	port := portStyle.Render(sb.portPath)

	// Section 2: prompt sync indicator
	var syncStyle lipgloss.Style
	var syncIndicator string
	switch {
	case sb.err != nil:
		syncStyle = lipgloss.NewStyle().Foreground(colors.Red)
		syncIndicator = "✗"
	case sb.inSync:
		syncStyle = lipgloss.NewStyle().Foreground(colors.Green)
		syncIndicator = "●"
	default:
		syncStyle = lipgloss.NewStyle().Foreground(colors.Yellow)
		syncIndicator = "○"
	}
	indicator := syncStyle.Render(syncIndicator)

	messageStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1)
	if sb.err != nil {
		messageStyle = messageStyle.Foreground(colors.Red)
	}
	message := messageStyle.Render(sb.message)

	dividerStyle := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1)
	divider := dividerStyle.Render("│")

	// Section 3: line settings, count and time
	infoStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1)
	info := infoStyle.Render(fmt.Sprintf("⚡ %d baud 8N1", sb.baudRate))
	countText := infoStyle.Render(fmt.Sprintf("%d readings", count))

	timeStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1)
	clock := timeStyle.Render(timestamp)

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, status, port, indicator, message, divider)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, info, divider, countText, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	content := lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide)
	return statusBarStyle.Render(content)
}
