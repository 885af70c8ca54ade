package ui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/logtail"
)

// frameStatus classifies the snapshot for the status badge.
func (m Model) frameStatus() string {
	switch {
	case m.snap.Launcher:
		return "launcher"
	case m.warn:
		return "cycling"
	case m.snap.IsFailing():
		return "failing"
	case m.snap.LastError != nil || m.snap.Notice != "":
		return "notice"
	default:
		return "ok"
	}
}

// renderHeader renders the status bar above the preview.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("inkframe", styles.Logo),
		styles.StatusStyle(m.frameStatus()).Render(m.frameStatus()),
	}

	switch {
	case m.snap.Launcher:
		parts = append(parts, bg.Render("Launcher menu", styles.WarningText.Bold(true)))
	case !m.snap.HasCycle:
		parts = append(parts, bg.Render("Booting...", styles.WarningText.Bold(true)))
	default:
		active := m.snap.Record.Active
		parts = append(parts,
			bg.Render("App:", styles.MutedText)+bg.Space()+bg.Render(active.String(), styles.AccentText),
			bg.Render("Cursor:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", m.snap.Record.Cursor(active)), styles.Text),
		)
		if !compact {
			wake := m.snap.Cause.String()
			if m.snap.Cause == hw.WakeButton {
				wake += " " + m.snap.Pressed.String()
			}
			parts = append(parts,
				bg.Render("Wake:", styles.MutedText)+bg.Space()+bg.Render(wake, styles.Text),
				bg.Render("Cmd:", styles.MutedText)+bg.Space()+bg.Render(m.snap.Command, styles.Text),
				bg.Render("Cycles:", styles.MutedText)+bg.Space()+
					bg.Render(fmt.Sprintf("%d", m.snap.Cycles), styles.Text),
			)
		}
	}

	if next := m.snap.NextWake; !next.IsZero() && !m.snap.Launcher {
		parts = append(parts,
			bg.Render("Next:", styles.MutedText)+bg.Space()+
				bg.Render(formatCountdown(next.Sub(m.now())), styles.InfoText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

// renderStatusLine renders the LED row and the latest notice or error.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var leds []string
	for _, b := range hw.AllButtons {
		style := styles.LEDOff
		if m.leds.Has(b) {
			style = styles.LEDOn
		}
		leds = append(leds, style.Render(" "+b.String()+" "))
	}
	warn := bg.Render("○ idle", styles.FaintText)
	if m.warn {
		warn = bg.Render("● busy", styles.BusyLED)
	}
	line := bg.Join(leds, bg.Space()) + bg.Spaces(2) + warn

	switch {
	case m.snap.LastError != nil:
		line += bg.Spaces(2) + bg.Render("ERROR", styles.DangerText) + bg.Space() +
			bg.Render(truncate(m.snap.LastError.Error(), max(m.width-40, 20)), styles.DangerText)
	case m.snap.Notice != "":
		line += bg.Spaces(2) + bg.Render(truncate(m.snap.Notice, max(m.width-30, 20)), styles.WarningText)
	}
	return bg.FillLine(line, m.width)
}

// renderFooter renders the short key help, or a recent action confirmation.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.flash != "" && m.now().Sub(m.flashAt) < FlashDuration {
		return styles.Footer.Width(m.width).Render(styles.InfoText.Render(m.flash))
	}
	return styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}

// renderLogs renders the tail of the device log.
func (m Model) renderLogs(lines int) []string {
	styles := m.theme.Styles()
	entries := m.logs
	if len(entries) > lines {
		entries = entries[len(entries)-lines:]
	}
	out := make([]string, 0, lines)
	for _, e := range entries {
		out = append(out, truncate(formatLogEntry(e, styles), m.width))
	}
	for len(out) < lines {
		out = append(out, "")
	}
	return out
}

func formatLogEntry(e logtail.Entry, styles Styles) string {
	if !e.HasLevel {
		return styles.MutedText.Render(e.Raw)
	}
	stamp := e.Time
	if t, err := time.Parse(time.RFC3339Nano, e.Time); err == nil {
		stamp = t.Format("15:04:05")
	}
	level := styles.MutedText
	switch {
	case e.Level >= slog.LevelError:
		level = styles.DangerText
	case e.Level >= slog.LevelWarn:
		level = styles.WarningText
	case e.Level >= slog.LevelInfo:
		level = styles.InfoText
	}
	line := styles.FaintText.Render(stamp) + " " +
		level.Render(fmt.Sprintf("%-5s", e.Level.String())) + " " +
		styles.Text.Render(e.Message)
	for _, a := range e.Attrs {
		line += " " + styles.MutedText.Render(a.Key+"=") + styles.Text.Render(a.Value)
	}
	return line
}

func formatCountdown(d time.Duration) string {
	if d <= 0 {
		return "due"
	}
	d = d.Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

// truncate shortens plain or styled text to width visible cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
