// Package inky drives a Pimoroni Inky Impression and its buttons through
// periph.io on a Raspberry Pi.
package inky

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	inkydev "periph.io/x/devices/v3/inky"
	"periph.io/x/host/v3"

	"github.com/five82/inkframe/internal/hw"
)

// Config names the buses and pins. Pin names are anything gpioreg
// resolves ("GPIO5", "5", "P1_29").
type Config struct {
	SPIPort    string
	I2CBus     string
	DCPin      string
	ResetPin   string
	BusyPin    string
	ButtonPins [5]string
	// LEDPins and WarnPin are optional; empty names are skipped.
	LEDPins    [5]string
	WarnPin    string
	Saturation uint
	Debounce   time.Duration
}

// DefaultConfig matches the Inky Impression HAT wiring with a fifth button
// on GPIO26.
func DefaultConfig() Config {
	return Config{
		SPIPort:    "SPI0.0",
		DCPin:      "GPIO22",
		ResetPin:   "GPIO27",
		BusyPin:    "GPIO17",
		ButtonPins: [5]string{"GPIO5", "GPIO6", "GPIO16", "GPIO24", "GPIO26"},
		Saturation: 50,
		Debounce:   50 * time.Millisecond,
	}
}

// Device is an opened panel plus button bank.
type Device struct {
	Panel *Panel
	Input *Input

	closers []func() error
}

// Open initialises the host drivers, detects the panel from its EEPROM and
// claims the button pins. Close releases the buses.
func Open(cfg Config, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	d := &Device{}
	ok := false
	defer func() {
		if !ok {
			_ = d.Close()
		}
	}()

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
	}
	d.closers = append(d.closers, bus.Close)

	opts, err := inkydev.DetectOpts(bus)
	if err != nil {
		return nil, fmt.Errorf("detect panel: %w", err)
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", cfg.SPIPort, err)
	}
	d.closers = append(d.closers, port.Close)

	panel, err := openPanel(port, cfg, opts)
	if err != nil {
		return nil, err
	}
	d.Panel = panel

	in, err := openInput(cfg, logger)
	if err != nil {
		return nil, err
	}
	d.Input = in
	d.closers = append(d.closers, in.Close)

	logger.Info("inky panel ready",
		slog.String("model", fmt.Sprint(opts.Model)),
		slog.Int("width", panel.Bounds().Dx()),
		slog.Int("height", panel.Bounds().Dy()))
	ok = true
	return d, nil
}

// Close stops the button watcher and releases the buses.
func (d *Device) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// Panel is the Impression display.
type Panel struct {
	mu  sync.Mutex
	dev *inkydev.DevImpression
}

var _ hw.Panel = (*Panel)(nil)

func openPanel(port spi.Port, cfg Config, opts *inkydev.Opts) (*Panel, error) {
	dc, err := pin(cfg.DCPin)
	if err != nil {
		return nil, err
	}
	reset, err := pin(cfg.ResetPin)
	if err != nil {
		return nil, err
	}
	busy, err := pin(cfg.BusyPin)
	if err != nil {
		return nil, err
	}
	dev, err := inkydev.NewImpression(port, dc, reset, busy, opts)
	if err != nil {
		return nil, fmt.Errorf("open impression: %w", err)
	}
	if cfg.Saturation > 0 {
		if err := dev.SetSaturation(cfg.Saturation); err != nil {
			return nil, fmt.Errorf("set saturation: %w", err)
		}
	}
	dev.SetBorder(inkydev.WhiteImpression)
	return &Panel{dev: dev}, nil
}

// Bounds returns the panel resolution.
func (p *Panel) Bounds() image.Rectangle { return p.dev.Bounds() }

// Show dithers img to the panel palette and refreshes the display. Images
// smaller than the panel are centred on white.
func (p *Panel) Show(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := p.dev.Bounds()
	frame := img
	if img.Bounds() != b {
		canvas := image.NewRGBA(b)
		draw.Draw(canvas, b, image.White, image.Point{}, draw.Src)
		off := b.Min.Add(b.Size().Sub(img.Bounds().Size()).Div(2))
		draw.Draw(canvas, img.Bounds().Sub(img.Bounds().Min).Add(off), img, img.Bounds().Min, draw.Src)
		frame = canvas
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.dev.Draw(b, frame, image.Point{}); err != nil {
		return fmt.Errorf("refresh panel: %w", err)
	}
	return nil
}

func pin(name string) (gpio.PinIO, error) {
	name = strings.TrimSpace(name)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	return p, nil
}
