package components

import (
	"fmt"
	"strings"
	"time"

	fluke45 "github.com/allbin/go-fluke45"
	"github.com/allbin/go-fluke45/internal/tui/colors"
	"github.com/allbin/go-fluke45/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

// DefaultHistoryLimit is how many readings the history keeps.
const DefaultHistoryLimit = 500

const (
	columnKeyTime  = "time"
	columnKeyValue = "value"
	columnKeyFunc  = "function"
	columnKeyModes = "modes"
)

// Reading is one entry of the history.
type Reading struct {
	Timestamp time.Time
	Snapshot  fluke45.Snapshot
}

// History is a table of past readings, newest first.
type History struct {
	table    table.Model
	readings []Reading
	limit    int
	width    int
	height   int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	columns := []table.Column{
		table.NewColumn(columnKeyTime, "Time", 14),
		table.NewColumn(columnKeyValue, "Value", 16),
		table.NewColumn(columnKeyFunc, "Function", 12),
		table.NewFlexColumn(columnKeyModes, "Modes", 1),
	}

	t := table.New(columns).
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(colors.Text)).
		WithBaseStyle(lipgloss.NewStyle().
			Foreground(colors.Subtext1).
			BorderForeground(colors.Surface1).
			Align(lipgloss.Left)).
		WithPageSize(10).
		WithTargetWidth(80).
		Focused(true)

	return &History{
		table: t,
		limit: limit,
	}
}

func (h *History) SetSize(width, height int) {
	h.width = width
	h.height = height

	// header, borders and footer take six lines
	pageSize := height - 6
	if pageSize < 1 {
		pageSize = 1
	}
	h.table = h.table.WithTargetWidth(width).WithPageSize(pageSize)
}

// Add records a reading, dropping the oldest beyond the limit.
func (h *History) Add(r Reading) {
	h.readings = append([]Reading{r}, h.readings...)
	if len(h.readings) > h.limit {
		h.readings = h.readings[:h.limit]
	}
	h.refreshRows()
}

func (h *History) Clear() {
	h.readings = nil
	h.refreshRows()
}

func (h *History) Len() int {
	return len(h.readings)
}

// Readings returns the history, newest first.
func (h *History) Readings() []Reading {
	return h.readings
}

// Stats summarizes the readings taken with the same function, units and
// coupling as the newest one. ok is false when there is nothing to summarize.
func (h *History) Stats() (minValue, maxValue, mean float64, n int, ok bool) {
	if len(h.readings) == 0 {
		return 0, 0, 0, 0, false
	}

	latest := h.readings[0].Snapshot
	var sum float64
	for _, r := range h.readings {
		st := r.Snapshot
		if st.Function != latest.Function || st.Units != latest.Units ||
			coupling(st.Modes) != coupling(latest.Modes) || st.Overrange() {
			continue
		}
		if n == 0 || st.Value < minValue {
			minValue = st.Value
		}
		if n == 0 || st.Value > maxValue {
			maxValue = st.Value
		}
		sum += st.Value
		n++
	}
	if n == 0 {
		return 0, 0, 0, 0, false
	}
	return minValue, maxValue, sum / float64(n), n, true
}

// coupling returns "ac", "dc" or "" so AC and DC voltage or current are
// never summarized together.
func coupling(modes []string) string {
	for _, m := range modes {
		if m == "ac" || m == "dc" {
			return m
		}
	}
	return ""
}

func (h *History) refreshRows() {
	rows := make([]table.Row, 0, len(h.readings))
	for _, r := range h.readings {
		st := r.Snapshot
		value := table.NewStyledCell(ValueText(st),
			lipgloss.NewStyle().Foreground(styles.ValueColor(st.Multiplier, st.Modes)))
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyTime:  r.Timestamp.Format("15:04:05.000"),
			columnKeyValue: value,
			columnKeyFunc:  st.Function,
			columnKeyModes: strings.Join(st.Modes, " "),
		}))
	}
	h.table = h.table.WithRows(rows)
}

// Update forwards paging keys to the table.
func (h *History) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.table, cmd = h.table.Update(msg)
	return cmd
}

func (h *History) View() string {
	view := h.table.View()

	minValue, maxValue, mean, n, ok := h.Stats()
	if !ok {
		return view
	}
	summary := styles.UnitStyle.Render(fmt.Sprintf("min %g  max %g  mean %g  (%d)", minValue, maxValue, mean, n))
	return lipgloss.JoinVertical(lipgloss.Left, view, summary)
}
