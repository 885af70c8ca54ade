package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/logtail"
	"github.com/five82/inkframe/internal/prefs"
	"github.com/five82/inkframe/internal/status"
)

// Controller is what the simulator drives on the simulated device.
type Controller interface {
	// Press reports a button press. It returns false if the press was
	// dropped because an earlier one is still pending.
	Press(bs ...hw.Button) bool
	// FireTimer expires the wake timer now.
	FireTimer()
	// Relaunch reboots the frame with A and E held.
	Relaunch()
	// LEDs returns the lit button LEDs.
	LEDs() hw.ButtonSet
	// Warn reports whether the busy LED is on.
	Warn() bool
}

// Options configures the UI.
type Options struct {
	Status    *status.Store
	Control   Controller
	LogPath   string
	Prefs     prefs.Prefs
	PrefsPath string
	Refresh   time.Duration
	Now       func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	status    *status.Store
	control   Controller
	logPath   string
	prefs     prefs.Prefs
	prefsPath string
	refresh   time.Duration
	now       func() time.Time

	theme  Theme
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool

	snap     status.Snapshot
	leds     hw.ButtonSet
	warn     bool
	logs     []logtail.Entry
	logErr   error
	lastLogs time.Time
	preview  *previewCache

	showHelp bool
	flash    string
	flashAt  time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = DefaultUIInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	p := opts.Prefs
	if p.Theme == "" {
		p = prefs.Default()
	}
	return Model{
		status:    opts.Status,
		control:   opts.Control,
		logPath:   opts.LogPath,
		prefs:     p,
		prefsPath: opts.PrefsPath,
		refresh:   refresh,
		now:       now,
		theme:     GetTheme(p.Theme),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		preview:   &previewCache{},
	}
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

type tickMsg time.Time

type snapshotMsg struct {
	snap status.Snapshot
	leds hw.ButtonSet
	warn bool
}

type logMsg struct {
	entries []logtail.Entry
	err     error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func fetchSnapshotCmd(store *status.Store, control Controller) tea.Cmd {
	return func() tea.Msg {
		msg := snapshotMsg{}
		if store != nil {
			msg.snap = store.Snapshot()
		}
		if control != nil {
			msg.leds = control.LEDs()
			msg.warn = control.Warn()
		}
		return msg
	}
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogReadLimit)
		if err != nil {
			return logMsg{err: err}
		}
		return logMsg{entries: logtail.Filter(lines, slog.LevelDebug)}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.refresh),
		fetchSnapshotCmd(m.status, m.control),
	}
	if m.logPath != "" {
		cmds = append(cmds, readLogCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.refresh), fetchSnapshotCmd(m.status, m.control)}
		if m.prefs.ShowLog && m.logPath != "" && m.now().Sub(m.lastLogs) >= time.Second {
			m.lastLogs = m.now()
			cmds = append(cmds, readLogCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snap = msg.snap
		m.leds = msg.leds
		m.warn = msg.warn
		return m, nil

	case logMsg:
		m.logErr = msg.err
		if msg.err == nil {
			m.logs = msg.entries
		}
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.ButtonA):
		m.press(hw.A)
	case key.Matches(msg, m.keys.ButtonB):
		m.press(hw.B)
	case key.Matches(msg, m.keys.ButtonC):
		m.press(hw.C)
	case key.Matches(msg, m.keys.ButtonD):
		m.press(hw.D)
	case key.Matches(msg, m.keys.ButtonE):
		m.press(hw.E)
	case key.Matches(msg, m.keys.Timer):
		if m.control != nil {
			m.control.FireTimer()
		}
		m.setFlash("Timer fired")
	case key.Matches(msg, m.keys.Launcher):
		if m.control != nil {
			m.control.Relaunch()
		}
		m.setFlash("Rebooting with A+E held")
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
	case key.Matches(msg, m.keys.ToggleLog):
		m.prefs.ShowLog = !m.prefs.ShowLog
		m.savePrefs()
		if m.prefs.ShowLog && m.logPath != "" {
			m.lastLogs = m.now()
			return m, readLogCmd(m.logPath)
		}
	}
	return m, nil
}

func (m *Model) press(b hw.Button) {
	if m.control == nil {
		return
	}
	if m.control.Press(b) {
		m.setFlash("Pressed " + b.String())
		return
	}
	m.setFlash("Busy, press " + b.String() + " dropped")
}

func (m *Model) setFlash(text string) {
	m.flash = text
	m.flashAt = m.now()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.setFlash("Save prefs: " + err.Error())
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// renderMain stacks the header, the panel preview, the log pane and the
// footer.
func (m Model) renderMain() string {
	header := m.renderHeader()
	statusLine := m.renderStatusLine()
	footer := m.renderFooter()

	logRows := 0
	if m.prefs.ShowLog {
		logRows = m.prefs.LogLines
	}
	previewRows := m.height - 3 - logRows
	if logRows > 0 {
		previewRows-- // separator
	}
	if previewRows < MinPreviewRows {
		logRows = max(logRows-(MinPreviewRows-previewRows), 0)
		previewRows = MinPreviewRows
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, header, statusLine)
	preview := m.preview.render(m.snap.Frame, m.snap.FrameVersion, m.width, previewRows)
	if preview == nil {
		styles := m.theme.Styles()
		preview = []string{styles.FaintText.Render("Waiting for the first frame...")}
	}
	lines = append(lines, preview...)
	for i := len(preview); i < previewRows; i++ {
		lines = append(lines, "")
	}
	if logRows > 0 {
		styles := m.theme.Styles()
		title := "Device log"
		if m.logErr != nil {
			title += ": " + m.logErr.Error()
		}
		lines = append(lines, styles.FaintText.Render(truncate("── "+title+" "+strings.Repeat("─", m.width), m.width)))
		lines = append(lines, m.renderLogs(logRows)...)
	}
	lines = append(lines, footer)
	return strings.Join(lines, "\n")
}
