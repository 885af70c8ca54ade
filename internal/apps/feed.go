package apps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/inkframe/internal/cache"
	"github.com/five82/inkframe/internal/logfields"
	"github.com/five82/inkframe/internal/metrics"
	"github.com/five82/inkframe/internal/render"
	"github.com/five82/inkframe/internal/state"
)

const dayLayout = "2006-01-02"

// FeedOptions configures a daily-fetch app.
type FeedOptions struct {
	// Dir is the app's cache directory.
	Dir string
	// MaxFiles bounds the cache; zero uses cache.DefaultMaxFiles.
	MaxFiles int
	// ImageURL serves the pre-rendered image of the day.
	ImageURL string
	// MetaURL serves the JSON document the title comes from.
	MetaURL  string
	Interval time.Duration
}

// titleFunc fetches the display title of today's image.
type titleFunc func(ctx context.Context) (string, error)

// feedApp is the state machine shared by the daily-fetch apps. Each wake
// it reconciles the cache, fetches today's image when it is missing, and
// points the cursor at today's entry or steps it on request.
type feedApp struct {
	kind     state.Kind
	prefix   string
	logName  string
	opts     FeedOptions
	env      Env
	logger   *slog.Logger
	dir      *cache.Dir
	title    titleFunc
	fallback func(name string) string
	dupDay   string
	dupName  string

	// rejectDay is the day whose image failed to decode; rejectSum is the
	// digest of the last rejected image.
	rejectDay string
	rejectSum []byte
	today     string
	day       string

	fetchErr error
	current  cache.Entry
	hasEntry bool
}

func newFeedApp(kind state.Kind, prefix, logName string, opts FeedOptions, env Env) *feedApp {
	env = env.withDefaults()
	logger := env.Logger.With(logfields.App(kind.String()))
	return &feedApp{
		kind:    kind,
		prefix:  prefix,
		logName: logName,
		opts:    opts,
		env:     env,
		logger:  logger,
		dir:     cache.Open(opts.Dir, logName, opts.MaxFiles, logger),
	}
}

func (a *feedApp) Kind() state.Kind { return a.kind }

func (a *feedApp) RefreshInterval() time.Duration { return a.opts.Interval }

// Cache exposes the app's cache directory.
func (a *feedApp) Cache() *cache.Dir { return a.dir }

// Current returns the entry chosen by the last Update.
func (a *feedApp) Current() (cache.Entry, bool) { return a.current, a.hasEntry }

// Notice reports the download banner after a failed fetch.
func (a *feedApp) Notice() string {
	if a.fetchErr != nil {
		return render.DownloadError
	}
	return ""
}

// TodayName returns the cache filename for the image of day t.
func (a *feedApp) TodayName(t time.Time) string {
	return fmt.Sprintf("%s_%s.jpg", a.prefix, t.Format(dayLayout))
}

func (a *feedApp) Update(ctx context.Context, cmd Command) error {
	a.fetchErr = nil
	a.hasEntry = false

	if _, err := a.dir.Reconcile(); err != nil {
		return fmt.Errorf("reconcile %s cache: %w", a.kind, err)
	}
	if _, err := a.dir.EvictToBound(0); err != nil {
		a.logger.Warn("evict cache", logfields.Error(err))
	}

	now := a.env.Clock.Now()
	day := now.Format(dayLayout)
	today := a.TodayName(now)
	cursor := state.Clamp(a.env.Store.Get(a.kind), a.dir.Len())
	a.today, a.day = today, day

	switch {
	case a.dir.Index(today) >= 0:
		cursor = a.resolve(cursor, cmd, today)
		a.env.Metrics.IncFetch(a.kind.String(), metrics.FetchCached)
	case a.dupDay == day && a.dir.Index(a.dupName) >= 0:
		cursor = a.resolve(cursor, cmd, a.dupName)
		a.env.Metrics.IncFetch(a.kind.String(), metrics.FetchCached)
	case a.rejectDay == day:
		cursor = a.keep(cursor, cmd)
		a.env.Metrics.IncFetch(a.kind.String(), metrics.FetchCached)
	default:
		cursor = a.fetch(ctx, cmd, cursor, today, day)
	}

	cursor = state.Clamp(cursor, a.dir.Len())
	if err := a.env.Store.Set(a.kind, cursor); err != nil {
		return fmt.Errorf("persist %s cursor: %w", a.kind, err)
	}
	if err := a.dir.Save(); err != nil {
		return fmt.Errorf("save %s cache log: %w", a.kind, err)
	}
	a.env.Metrics.SetCursor(a.kind.String(), cursor)
	a.env.Metrics.SetCacheSize(a.kind.String(), a.dir.Len())

	a.current, a.hasEntry = a.dir.At(cursor)
	if a.hasEntry {
		a.logger.Info("feed entry selected",
			logfields.Cursor(cursor), logfields.File(a.current.Name), logfields.Command(cmd.String()))
	}
	return a.fetchErr
}

// resolve steps the cursor on Forward or Backward and otherwise points it
// at name.
func (a *feedApp) resolve(cursor int, cmd Command, name string) int {
	if cmd.Advances() {
		return Step(cursor, a.dir.Len(), cmd)
	}
	return a.dir.Index(name)
}

// keep steps the cursor on Forward or Backward and otherwise leaves it on
// the entry already shown.
func (a *feedApp) keep(cursor int, cmd Command) int {
	if cmd.Advances() && a.dir.Len() > 0 {
		return Step(cursor, a.dir.Len(), cmd)
	}
	return cursor
}

// fetch downloads today's image. A failure leaves the cursor and cache
// untouched; a content duplicate is discarded and the cursor aliased to
// the existing entry.
func (a *feedApp) fetch(ctx context.Context, cmd Command, cursor int, name, day string) int {
	title, err := a.title(ctx)
	if err != nil || title == "" {
		if err != nil {
			a.logger.Warn("title fetch failed", logfields.Error(err))
		}
		title = a.fallback(name)
	}

	staged, err := a.dir.Stage(name)
	if err != nil {
		a.fail(fmt.Errorf("stage download: %w", err))
		return cursor
	}
	start := time.Now()
	n, err := a.env.Fetcher.Download(ctx, a.opts.ImageURL, staged)
	if err == nil {
		err = staged.Close()
	}
	if err == nil && n == 0 {
		err = errors.New("empty image")
	}
	if err != nil {
		_ = staged.Discard()
		a.fail(err)
		return cursor
	}

	dup, isDup, err := a.dir.FindDuplicate(staged.Path())
	if err != nil {
		_ = staged.Discard()
		a.fail(fmt.Errorf("check duplicate: %w", err))
		return cursor
	}
	if a.rejectSum != nil {
		if sum, err := cache.Checksum(staged.Path()); err == nil && bytes.Equal(sum, a.rejectSum) {
			_ = staged.Discard()
			a.rejectDay = day
			a.env.Metrics.IncFetch(a.kind.String(), metrics.FetchDuplicate)
			a.logger.Warn("downloaded image was rejected before, keeping cache", logfields.File(name))
			return a.keep(cursor, cmd)
		}
	}
	if isDup {
		_ = staged.Discard()
		a.dupDay, a.dupName = day, dup
		a.env.Metrics.IncFetch(a.kind.String(), metrics.FetchDuplicate)
		a.logger.Info("downloaded image duplicates cached file", logfields.File(dup))
		return a.resolve(cursor, cmd, dup)
	}

	if err := staged.Commit(); err != nil {
		a.fail(err)
		return cursor
	}
	if err := a.dir.Append(name, title); err != nil {
		a.logger.Warn("evict after append", logfields.Error(err))
	}
	a.env.Metrics.IncFetch(a.kind.String(), metrics.FetchNew)
	a.logger.Info("downloaded image of the day",
		logfields.File(name), slog.String("title", title), slog.Int64("bytes", n), logfields.Duration(time.Since(start)))
	return a.dir.Len() - 1
}

func (a *feedApp) fail(err error) {
	a.fetchErr = fmt.Errorf("%w: %s: %v", ErrFetch, a.kind, err)
	a.env.Metrics.IncFetch(a.kind.String(), metrics.FetchFailed)
	a.logger.Warn("image download failed", logfields.URL(a.opts.ImageURL), logfields.Error(err))
}

// Draw renders the current entry with its caption. An entry that cannot
// be decoded is removed from the cache so it is not retried: today's feed
// is not fetched again that day, and a later download with the same bytes
// is discarded.
func (a *feedApp) Draw(c *render.Canvas) error {
	c.SetPen(render.White)
	c.Clear()

	var drawErr error
	if !a.hasEntry {
		render.ErrorMessage(c)
		drawErr = fmt.Errorf("%s cache is empty", a.kind)
	} else if err := a.drawEntry(c); err != nil {
		drawErr = err
	}

	if a.fetchErr != nil {
		render.ErrorBanner(c, render.DownloadError)
	}
	return drawErr
}

func (a *feedApp) drawEntry(c *render.Canvas) error {
	e := a.current
	img, err := render.DecodeJPEGFile(a.dir.FilePath(e.Name), c.Bounds())
	if err != nil {
		render.ErrorMessage(c)
		render.Caption(c, e.Title)
		a.evict(e.Name)
		return fmt.Errorf("draw %s: %w", e.Name, err)
	}
	c.DrawImage(img, centred(c.Bounds(), img.Bounds()))
	render.Caption(c, e.Title)
	return nil
}

func (a *feedApp) evict(name string) {
	a.logger.Warn("removing undisplayable cache entry", logfields.File(name))
	if sum, err := cache.Checksum(a.dir.FilePath(name)); err == nil {
		a.rejectSum = sum
	}
	if name == a.today {
		a.rejectDay = a.day
	}
	if err := a.dir.Remove(name); err != nil {
		a.logger.Warn("remove cache entry", logfields.File(name), logfields.Error(err))
	}
	if err := a.dir.Save(); err != nil {
		a.logger.Warn("save cache log", logfields.Error(err))
	}
	cursor := state.Clamp(a.env.Store.Get(a.kind), a.dir.Len())
	if err := a.env.Store.Set(a.kind, cursor); err != nil {
		a.logger.Warn("persist cursor", logfields.Error(err))
	}
	if a.dupName == name {
		a.dupDay, a.dupName = "", ""
	}
	a.hasEntry = false
}
