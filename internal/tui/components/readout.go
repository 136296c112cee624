package components

import (
	"fmt"
	"strings"

	fluke45 "github.com/allbin/go-fluke45"
	"github.com/allbin/go-fluke45/internal/tui/colors"
	"github.com/allbin/go-fluke45/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// overloadText replaces the digits when the meter reports overrange, as the
// front panel does.
const overloadText = "OL"

// Readout renders the current value large, with function, range and modes.
type Readout struct {
	width    int
	snapshot fluke45.Snapshot
	valid    bool
}

func NewReadout() *Readout {
	return &Readout{}
}

func (r *Readout) SetWidth(width int) {
	r.width = width
}

func (r *Readout) SetSnapshot(st fluke45.Snapshot) {
	r.snapshot = st
	r.valid = true
}

func (r *Readout) Reset() {
	r.snapshot = fluke45.Snapshot{}
	r.valid = false
}

// ValueText is the value as shown in the readout, e.g. "1.2345 V".
func ValueText(st fluke45.Snapshot) string {
	if st.Overrange() {
		return fmt.Sprintf("%s %s", overloadText, st.Units)
	}
	return fmt.Sprintf("%s %s%s", st.Mantissa, st.Multiplier, st.Units)
}

func (r *Readout) View() string {
	width := r.width
	if width <= 0 {
		width = 80
	}

	if !r.valid {
		waiting := lipgloss.NewStyle().
			Foreground(colors.Stale).
			Padding(1, 2).
			Render("waiting for first reading...")
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, waiting)
	}

	st := r.snapshot
	value := styles.ValueStyle.
		Foreground(styles.ValueColor(st.Multiplier, st.Modes)).
		Render(ValueText(st))

	function := styles.InfoStyle.Render(st.Function)
	rangeText := styles.UnitStyle.Render(fmt.Sprintf("  range %d", st.Range))

	tags := make([]string, 0, len(st.Modes))
	for _, m := range st.Modes {
		tags = append(tags, styles.ModeTagStyle.Render(strings.ToUpper(m)))
	}

	lines := []string{
		value,
		lipgloss.JoinHorizontal(lipgloss.Left, function, rangeText),
		lipgloss.JoinHorizontal(lipgloss.Left, tags...),
	}
	if st.Info != "" {
		lines = append(lines, styles.UnitStyle.Render(st.Info))
	}

	block := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
