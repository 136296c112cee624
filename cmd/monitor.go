/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	fluke45 "github.com/allbin/go-fluke45"
	"github.com/allbin/go-fluke45/internal/tui/components"
	"github.com/allbin/go-fluke45/internal/tui/keys"
	"github.com/allbin/go-fluke45/internal/tui/models"
	"github.com/allbin/go-fluke45/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live meter readout with reading history",
	Long: `Show the meter's reading live, with function, range, active modes and a
history of past readings.

Keys:
  p/space  pause or resume readings
  r        re-read the meter's full state
  c        clear the history
  ?        toggle help
  q        quit

Examples:
  fluke45 monitor
  fluke45 monitor -p /dev/ttyUSB0 --interval 500ms`,
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetDuration("interval")
		limit, _ := cmd.Flags().GetInt("history")

		if err := runMonitorTUI(cfg.Port, interval, limit, meterOptions(cfg)...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().DurationP("interval", "i", time.Second, "Time between readings")
	monitorCmd.Flags().Int("history", components.DefaultHistoryLimit, "Number of readings kept in the history")
}

// noLoop marks a reading that must not schedule the next tick
const noLoop = -1

type tickMsg struct {
	loop int
}

type readingMsg struct {
	loop     int
	snapshot fluke45.Snapshot
	inSync   bool
	err      error
	at       time.Time
}

// monitorModel represents the Bubble Tea model for the monitor command
type monitorModel struct {
	*models.MeterModel
	readout   *components.Readout
	history   *components.History
	statusBar *components.StatusBar
	spinner   spinner.Model
	help      help.Model
	keys      keys.MonitorKeys

	opts     []fluke45.Option
	interval time.Duration
	// loop identifies the current read loop; pausing starts a new one so a
	// reading still in flight cannot restart the old loop.
	loop int
}

func newMonitorModel(portPath string, baudRate int, interval time.Duration, limit int, opts ...fluke45.Option) *monitorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusConnectingStyle

	statusBar := components.NewStatusBar(portPath, baudRate)
	if portPath == "" {
		statusBar.SetPort("scanning")
		statusBar.SetStatus(styles.StatusConnecting, "Scanning ports...")
	}

	return &monitorModel{
		MeterModel: models.NewMeterModel(portPath),
		readout:    components.NewReadout(),
		history:    components.NewHistory(limit),
		statusBar:  statusBar,
		spinner:    sp,
		help:       help.New(),
		keys:       keys.NewMonitorKeys(),
		opts:       opts,
		interval:   interval,
	}
}

func runMonitorTUI(portPath string, interval time.Duration, limit int, opts ...fluke45.Option) error {
	m := newMonitorModel(portPath, cfg.Baud, interval, limit, opts...)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()

	m.Cleanup()
	return err
}

func (m *monitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, connectSession(m.GetContext(), m.GetPortPath(), m.opts))
}

// connectSession closes a session that arrives after ctx is done.
func connectSession(ctx context.Context, portPath string, opts []fluke45.Option) tea.Cmd {
	return func() tea.Msg {
		s, err := fluke45.Connect(portPath, opts...)
		if ctx.Err() != nil {
			if s != nil {
				s.Close()
			}
			return nil
		}
		return models.ConnectionStatusMsg{Session: s, Error: err}
	}
}

// takeReading reads the meter off the UI goroutine. With refresh set the
// full state is queried again first. Nothing is read or reported once ctx
// is done.
func takeReading(ctx context.Context, s *fluke45.Session, loop int, refresh bool) tea.Cmd {
	return func() tea.Msg {
		if ctx.Err() != nil {
			return nil
		}
		if refresh {
			s.Invalidate()
		}
		_, err := s.GetReading()
		if err != nil {
			s.Resync()
		}

		if ctx.Err() != nil {
			return nil
		}

		msg := readingMsg{loop: loop, err: err, inSync: s.InSync(), at: time.Now()}
		if err == nil {
			msg.snapshot, _ = s.Cached()
		}
		return msg
	}
}

func scheduleTick(interval time.Duration, loop int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{loop: loop}
	})
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.readout.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width

		// readout, status bar and help line
		used := lipgloss.Height(m.readout.View()) + 3
		m.history.SetSize(msg.Width, msg.Height-used)

	case spinner.TickMsg:
		if !m.IsConnected() && m.GetError() == nil {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case models.ConnectionStatusMsg:
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetError(msg.Error)
			break
		}
		m.SetSession(msg.Session)
		m.statusBar.SetPort(msg.Session.Device())
		m.statusBar.SetStatus(styles.StatusReading, "Connected")
		cmds = append(cmds, takeReading(m.GetContext(), msg.Session, m.loop, false))

	case readingMsg:
		m.statusBar.SetSync(msg.inSync)
		if msg.err != nil {
			m.statusBar.SetError(msg.err)
		} else {
			m.readout.SetSnapshot(msg.snapshot)
			m.history.Add(components.Reading{Timestamp: msg.at, Snapshot: msg.snapshot})
			if !m.IsPaused() {
				m.statusBar.SetStatus(styles.StatusReading, msg.snapshot.Display)
			}
		}
		if msg.loop == m.loop && !m.IsPaused() {
			cmds = append(cmds, scheduleTick(m.interval, m.loop))
		}

	case tickMsg:
		if s := m.GetSession(); s != nil && msg.loop == m.loop && !m.IsPaused() {
			cmds = append(cmds, takeReading(m.GetContext(), s, m.loop, false))
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cleanup()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.Pause):
			m.loop++
			if m.TogglePause() {
				m.statusBar.SetStatus(styles.StatusPaused, "Paused")
			} else if s := m.GetSession(); s != nil {
				m.statusBar.SetStatus(styles.StatusReading, "Resumed")
				cmds = append(cmds, takeReading(m.GetContext(), s, m.loop, false))
			}

		case key.Matches(msg, m.keys.Refresh):
			if s := m.GetSession(); s != nil {
				m.readout.Reset()
				cmds = append(cmds, takeReading(m.GetContext(), s, noLoop, true))
			}

		case key.Matches(msg, m.keys.Clear):
			m.history.Clear()

		default:
			cmds = append(cmds, m.history.Update(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *monitorModel) View() string {
	title := styles.TitleStyle.Render("Fluke 45")

	var content string
	switch {
	case m.GetError() != nil && !m.IsConnected():
		content = styles.ErrorStyle.Render(fmt.Sprintf("\n  %v\n\n  press q to quit", m.GetError()))
	case !m.IsConnected():
		target := m.GetPortPath()
		if target == "" {
			target = "all ports"
		}
		content = fmt.Sprintf("\n  %s Looking for the meter on %s...\n", m.spinner.View(), target)
	default:
		content = lipgloss.JoinVertical(lipgloss.Left,
			m.readout.View(),
			styles.ContentBorderStyle.Render(m.history.View()),
		)
	}

	timestamp := time.Now().Format("15:04:05")
	statusBar := m.statusBar.View(m.history.Len(), timestamp)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		content,
		m.help.View(m.keys),
		statusBar,
	)
}
