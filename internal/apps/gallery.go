package apps

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/five82/inkframe/internal/logfields"
	"github.com/five82/inkframe/internal/render"
	"github.com/five82/inkframe/internal/state"
)

// DefaultGalleryInterval is the gallery's slideshow period.
const DefaultGalleryInterval = 15 * time.Minute

// GalleryOptions configures the photo gallery.
type GalleryOptions struct {
	Dir      string
	Interval time.Duration
}

// Gallery shows the JPEGs of a local directory in filename order.
type Gallery struct {
	opts    GalleryOptions
	env     Env
	logger  *slog.Logger
	current string
}

var _ App = (*Gallery)(nil)

// NewGallery returns a gallery over opts.Dir.
func NewGallery(opts GalleryOptions, env Env) *Gallery {
	env = env.withDefaults()
	opts.Interval = intervalOr(opts.Interval, DefaultGalleryInterval)
	return &Gallery{opts: opts, env: env, logger: env.Logger.With(logfields.App(state.Gallery.String()))}
}

func (g *Gallery) Kind() state.Kind { return state.Gallery }

func (g *Gallery) RefreshInterval() time.Duration { return g.opts.Interval }

// Current returns the file chosen by the last Update.
func (g *Gallery) Current() string { return g.current }

// Update lists the directory and moves the cursor. Files that are not
// JPEGs are skipped by repeating the step; a directory without any JPEG
// returns ErrNoImages.
func (g *Gallery) Update(_ context.Context, cmd Command) error {
	g.current = ""
	files, err := g.list()
	if err != nil {
		return err
	}
	n := len(files)
	if !slices.ContainsFunc(files, isJPEG) {
		return fmt.Errorf("%w: %s", ErrNoImages, g.opts.Dir)
	}

	dir := cmd
	if cmd == Tick {
		dir = Forward
	}
	skip := dir
	if !skip.Advances() {
		skip = Forward
	}

	cursor := Step(state.Clamp(g.env.Store.Get(state.Gallery), n), n, dir)
	for !isJPEG(files[cursor]) {
		cursor = Step(cursor, n, skip)
	}

	if err := g.env.Store.Set(state.Gallery, cursor); err != nil {
		return fmt.Errorf("persist gallery cursor: %w", err)
	}
	g.env.Metrics.SetCursor(state.Gallery.String(), cursor)
	g.current = files[cursor]
	g.logger.Info("gallery photo selected", logfields.Cursor(cursor), logfields.File(g.current), logfields.Command(cmd.String()))
	return nil
}

// Draw decodes the selected photo centred on a white frame.
func (g *Gallery) Draw(c *render.Canvas) error {
	c.SetPen(render.White)
	c.Clear()
	if g.current == "" {
		render.FatalScreen(c, "No photos", "Copy baseline JPEG images to "+g.opts.Dir)
		return fmt.Errorf("%w: %s", ErrNoImages, g.opts.Dir)
	}
	img, err := render.DecodeJPEGFile(filepath.Join(g.opts.Dir, g.current), c.Bounds())
	if err != nil {
		render.ErrorMessage(c)
		return fmt.Errorf("draw %s: %w", g.current, err)
	}
	c.DrawImage(img, centred(c.Bounds(), img.Bounds()))
	return nil
}

func (g *Gallery) list() ([]string, error) {
	entries, err := os.ReadDir(g.opts.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, e.Name())
	}
	slices.Sort(files)
	return files, nil
}

func isJPEG(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

// centred returns the top-left point that centres inner within outer.
func centred(outer, inner image.Rectangle) image.Point {
	return image.Pt((outer.Dx()-inner.Dx())/2, (outer.Dy()-inner.Dy())/2)
}
