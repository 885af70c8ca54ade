package ui

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/logtail"
	"github.com/five82/inkframe/internal/prefs"
	"github.com/five82/inkframe/internal/state"
	"github.com/five82/inkframe/internal/status"
)

type fakeControl struct {
	pressed    []hw.ButtonSet
	busy       bool
	fired      int
	relaunched int
	leds       hw.ButtonSet
	warn       bool
}

func (f *fakeControl) Press(bs ...hw.Button) bool {
	if f.busy {
		return false
	}
	f.pressed = append(f.pressed, hw.Buttons(bs...))
	return true
}

func (f *fakeControl) FireTimer()         { f.fired++ }
func (f *fakeControl) Relaunch()          { f.relaunched++ }
func (f *fakeControl) LEDs() hw.ButtonSet { return f.leds }
func (f *fakeControl) Warn() bool         { return f.warn }

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T, ctl *fakeControl) Model {
	t.Helper()
	m := New(Options{
		Status:    &status.Store{},
		Control:   ctl,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Now:       func() time.Time { return testNow },
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestPreviewSize(t *testing.T) {
	panel := image.Rect(0, 0, 800, 480)
	tests := []struct {
		name             string
		maxCols, maxRows int
		cols, rows       int
	}{
		{"width bound", 100, 40, 100, 30},
		{"height bound", 200, 30, 100, 30},
		{"tiny", 10, 10, 10, 3},
		{"no room", 0, 10, 0, 0},
	}
	for _, tt := range tests {
		cols, rows := previewSize(panel, tt.maxCols, tt.maxRows)
		if cols != tt.cols || rows != tt.rows {
			t.Fatalf("%s: previewSize = %dx%d, want %dx%d", tt.name, cols, rows, tt.cols, tt.rows)
		}
	}
}

func TestRenderPreview_Dimensions(t *testing.T) {
	lines := renderPreview(solid(80, 48, color.RGBA{0, 160, 60, 255}), 20, 6)
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 20 {
			t.Fatalf("line %d width = %d, want 20", i, w)
		}
		if !strings.Contains(line, upperHalf) {
			t.Fatalf("line %d has no half blocks", i)
		}
	}
	if renderPreview(nil, 20, 6) != nil {
		t.Fatalf("nil frame should render nothing")
	}
}

func TestPreviewCache_ReusesUntilVersionChanges(t *testing.T) {
	c := &previewCache{}
	img := solid(80, 48, color.RGBA{255, 255, 255, 255})
	first := c.render(img, 1, 20, 6)
	second := c.render(solid(80, 48, color.RGBA{0, 0, 0, 255}), 1, 20, 6)
	if &first[0] != &second[0] {
		t.Fatalf("same version should reuse the rendered lines")
	}
	third := c.render(img, 2, 20, 6)
	if &first[0] == &third[0] {
		t.Fatalf("new version should re-render")
	}
}

func TestButtonKeysPress(t *testing.T) {
	ctl := &fakeControl{}
	m := newTestModel(t, ctl)

	for _, k := range []string{"a", "b", "c", "d", "e"} {
		next, _ := m.Update(keyPress(k))
		m = next.(Model)
	}
	want := []hw.ButtonSet{
		hw.Buttons(hw.A), hw.Buttons(hw.B), hw.Buttons(hw.C), hw.Buttons(hw.D), hw.Buttons(hw.E),
	}
	if len(ctl.pressed) != len(want) {
		t.Fatalf("pressed = %v, want %v", ctl.pressed, want)
	}
	for i := range want {
		if ctl.pressed[i] != want[i] {
			t.Fatalf("pressed[%d] = %v, want %v", i, ctl.pressed[i], want[i])
		}
	}
	if m.flash != "Pressed E" {
		t.Fatalf("flash = %q, want %q", m.flash, "Pressed E")
	}
}

func TestBusyPressIsReported(t *testing.T) {
	ctl := &fakeControl{busy: true}
	m := newTestModel(t, ctl)
	next, _ := m.Update(keyPress("c"))
	m = next.(Model)
	if !strings.Contains(m.flash, "dropped") {
		t.Fatalf("flash = %q, want a dropped notice", m.flash)
	}
}

func TestTimerAndLauncherKeys(t *testing.T) {
	ctl := &fakeControl{}
	m := newTestModel(t, ctl)
	next, _ := m.Update(keyPress("t"))
	next, _ = next.Update(keyPress("x"))
	if ctl.fired != 1 || ctl.relaunched != 1 {
		t.Fatalf("fired=%d relaunched=%d, want 1 1", ctl.fired, ctl.relaunched)
	}
	_ = next
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, &fakeControl{})
	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatalf("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q should quit")
	}
}

func TestCycleThemePersists(t *testing.T) {
	m := newTestModel(t, &fakeControl{})
	next, _ := m.Update(keyPress("T"))
	m = next.(Model)
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", p.Theme)
	}
}

func TestToggleLogPersists(t *testing.T) {
	m := newTestModel(t, &fakeControl{})
	if !m.prefs.ShowLog {
		t.Fatalf("log pane should start visible")
	}
	next, _ := m.Update(keyPress("L"))
	m = next.(Model)
	p, _ := prefs.Load(m.prefsPath)
	if m.prefs.ShowLog || p.ShowLog {
		t.Fatalf("ShowLog = %v saved %v, want false", m.prefs.ShowLog, p.ShowLog)
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	ctl := &fakeControl{}
	m := newTestModel(t, ctl)
	next, _ := m.Update(keyPress("?"))
	m = next.(Model)
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	next, _ = m.Update(keyPress("a"))
	m = next.(Model)
	if m.showHelp {
		t.Fatalf("help should close")
	}
	if len(ctl.pressed) != 0 {
		t.Fatalf("closing help should not press a button")
	}
}

func TestView_ShowsSnapshot(t *testing.T) {
	store := &status.Store{}
	store.Update(status.Report{
		Cause:   hw.WakeButton,
		Pressed: hw.Buttons(hw.D),
		Command: "forward",
		Record:  state.Record{Active: state.Xkcd, Cursors: [4]int{0, 0, 4, 0}},
		Frame:   solid(800, 480, color.RGBA{30, 60, 200, 255}),
	}, nil)
	store.SetNextWake(testNow.Add(4 * time.Hour))

	m := New(Options{Status: store, Control: &fakeControl{leds: hw.Buttons(hw.D)}, Now: func() time.Time { return testNow }})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.Update(fetchSnapshotCmd(store, &fakeControl{leds: hw.Buttons(hw.D)})())
	m = next.(Model)

	view := m.View()
	for _, want := range []string{"xkcd", "Cursor:", "4", "button D", "forward", "4h00m"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
	if !strings.Contains(view, upperHalf) {
		t.Fatalf("view has no preview")
	}
	if got := len(strings.Split(view, "\n")); got > 40 {
		t.Fatalf("view has %d lines, taller than the terminal", got)
	}
}

func TestFrameStatus(t *testing.T) {
	m := newTestModel(t, &fakeControl{})
	if got := m.frameStatus(); got != "ok" {
		t.Fatalf("empty status = %q, want ok", got)
	}
	m.snap.Notice = "Unable to download image"
	if got := m.frameStatus(); got != "notice" {
		t.Fatalf("notice status = %q", got)
	}
	m.snap.LastError = errors.New("boom")
	m.snap.ConsecutiveFailures = 2
	if got := m.frameStatus(); got != "failing" {
		t.Fatalf("failing status = %q", got)
	}
	m.warn = true
	if got := m.frameStatus(); got != "cycling" {
		t.Fatalf("busy status = %q", got)
	}
	m.snap.Launcher = true
	if got := m.frameStatus(); got != "launcher" {
		t.Fatalf("launcher status = %q", got)
	}
}

func TestRenderLogs_KeepsTail(t *testing.T) {
	m := newTestModel(t, &fakeControl{})
	m.logs = logtail.Filter([]string{
		`time=2026-10-17T09:30:00.000Z level=INFO msg="cycle finished" app=gallery`,
		`time=2026-10-17T09:30:01.000Z level=WARN msg="fetch failed" app=apod`,
		`plain line`,
	}, slog.LevelDebug)

	lines := m.renderLogs(2)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "fetch failed") || !strings.Contains(lines[0], "09:30:01") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "plain line") {
		t.Fatalf("line 1 = %q", lines[1])
	}

	padded := m.renderLogs(5)
	if len(padded) != 5 || padded[4] != "" {
		t.Fatalf("short logs should be padded, got %q", padded)
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "due"},
		{90 * time.Second, "1m30s"},
		{4*time.Hour + time.Minute, "4h01m"},
		{14*time.Minute + 500*time.Millisecond, "14m01s"},
	}
	for _, tt := range tests {
		if got := formatCountdown(tt.d); got != tt.want {
			t.Fatalf("formatCountdown(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
