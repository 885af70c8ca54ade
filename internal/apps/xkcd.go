package apps

import (
	"context"
	"time"

	"github.com/five82/inkframe/internal/fetch"
	"github.com/five82/inkframe/internal/state"
)

const (
	// DefaultXkcdInterval is the xkcd refresh period.
	DefaultXkcdInterval = 240 * time.Minute
	// DefaultXkcdImageURL serves the latest comic pre-rendered for the panel.
	DefaultXkcdImageURL = "https://pimoroni.github.io/feed2image/xkcd-daily.jpg"
	// DefaultXkcdMetaURL describes the latest comic.
	DefaultXkcdMetaURL = "https://xkcd.com/info.0.json"

	xkcdPrefix  = "xkcd-daily"
	xkcdLogName = "xkcd-log.json"
)

// Xkcd shows the latest xkcd comic.
type Xkcd struct {
	*feedApp
}

var _ App = (*Xkcd)(nil)

// NewXkcd returns the xkcd app. Without a title the filename is shown.
func NewXkcd(opts FeedOptions, env Env) *Xkcd {
	opts.Interval = intervalOr(opts.Interval, DefaultXkcdInterval)
	if opts.ImageURL == "" {
		opts.ImageURL = DefaultXkcdImageURL
	}
	if opts.MetaURL == "" {
		opts.MetaURL = DefaultXkcdMetaURL
	}
	x := &Xkcd{feedApp: newFeedApp(state.Xkcd, xkcdPrefix, xkcdLogName, opts, env)}
	x.title = x.fetchTitle
	x.fallback = func(name string) string { return name }
	return x
}

func (x *Xkcd) fetchTitle(ctx context.Context) (string, error) {
	var comic fetch.Comic
	if err := x.env.Fetcher.FetchJSON(ctx, x.opts.MetaURL, &comic); err != nil {
		return "", err
	}
	return comic.DisplayTitle(), nil
}
