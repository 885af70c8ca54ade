package frame

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/logfields"
	"github.com/five82/inkframe/internal/render"
	"github.com/five82/inkframe/internal/state"
	"github.com/five82/inkframe/internal/status"
)

// LauncherChord is the button combination that opens the launcher at boot.
var LauncherChord = hw.Buttons(hw.A, hw.E)

// NeedsLauncher reports whether boot should show the launcher: the chord is
// held, or no well-formed state record exists yet.
func NeedsLauncher(held hw.ButtonSet, store *state.Store) bool {
	return held&LauncherChord == LauncherChord || !store.Exists()
}

// Launcher shows the app menu and commits the chosen app.
type Launcher struct {
	Store  *state.Store
	Panel  hw.Panel
	Input  hw.Input
	Status *status.Store
	Logger *slog.Logger
}

// Run draws the menu and blocks until a button is pressed. The chosen app
// is persisted and ErrRestart returned so the caller starts it cleanly.
func (l *Launcher) Run(ctx context.Context) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	_ = hw.ClearLEDs(l.Input)

	c := render.NewCanvas(l.Panel.Bounds())
	DrawMenu(c)
	if err := l.Input.SetWarn(true); err != nil {
		logger.Warn("warn led on", logfields.Error(err))
	}
	err := l.Panel.Show(ctx, c.Image())
	_ = l.Input.SetWarn(false)
	if err != nil {
		return fmt.Errorf("show launcher: %w", err)
	}
	if l.Status != nil {
		l.Status.ShowLauncher(c.Image())
	}
	logger.Info("launcher waiting for selection")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pressed := <-l.Input.Presses():
			b, ok := pressed.First()
			if !ok {
				continue
			}
			if err := l.Input.SetLED(b, true); err != nil {
				logger.Warn("button led on", logfields.Error(err))
			}
			kind := KindFor(b)
			if err := l.Store.SetActive(kind); err != nil {
				return fmt.Errorf("commit launcher choice: %w", err)
			}
			logger.Info("launcher selected app", logfields.Button(b.String()), logfields.App(kind.String()))
			return ErrRestart
		}
	}
}

type menuItem struct {
	label string
	pen   render.Pen
}

var menu = [...]menuItem{
	hw.A: {"A. << Photo", render.Red},
	hw.B: {"B. Photo >>", render.Orange},
	hw.C: {"C. NASA Picture of the Day", render.Green},
	hw.D: {"D. XKCD Daily", render.Blue},
	hw.E: {"E. Clock", render.Black},
}

var (
	menuGold = color.RGBA{255, 215, 0, 255}
	menuGrey = color.RGBA{220, 220, 220, 255}
)

// MenuNote is printed along the bottom of the launcher.
const MenuNote = "Hold A + E while the frame starts to return to the Launcher"

// DrawMenu renders the launcher: a title bar and one stepped bar per button.
func DrawMenu(c *render.Canvas) {
	w, h := c.Width(), c.Height()
	c.SetPen(render.White)
	c.Clear()

	c.SetColor(menuGold)
	c.Rect(0, 0, w, 50)
	c.SetPen(render.Black)
	const title = "Launcher"
	c.Text(title, (w-render.MeasureText(title, 4))/2, 10, 4)

	const rowHeight, top = 50, 70
	for i, item := range menu {
		y := top + i*(rowHeight+10)
		bar := w - 100 - 50*i
		c.SetPen(item.pen)
		c.Rect(30, y, bar-30, rowHeight)
		c.SetColor(menuGrey)
		c.Rect(bar, y, w-30-bar, rowHeight)
		c.SetPen(render.White)
		c.Text(render.Truncate(item.label, bar-40, 3), 35, y+(rowHeight-render.GlyphHeight*3)/2, 3)
	}

	c.SetPen(render.Black)
	note := render.Truncate(MenuNote, w-10, 2)
	c.Text(note, (w-render.MeasureText(note, 2))/2, h-30, 2)
}
