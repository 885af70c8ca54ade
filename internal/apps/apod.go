package apps

import (
	"context"
	"time"

	"github.com/five82/inkframe/internal/fetch"
	"github.com/five82/inkframe/internal/state"
)

const (
	// DefaultApodInterval is the APOD refresh period.
	DefaultApodInterval = 240 * time.Minute
	// DefaultApodImageURL serves the APOD pre-scaled to 800x480.
	DefaultApodImageURL = "https://pimoroni.github.io/feed2image/nasa-apod-800x480-daily.jpg"
	// DefaultApodMetaURL is the APOD API; the key is appended by the caller.
	DefaultApodMetaURL = "https://api.nasa.gov/planetary/apod"

	// ApodUntitled is shown when the APOD title cannot be fetched.
	ApodUntitled = "Image Title Unavailable"

	apodPrefix  = "nasa-apod"
	apodLogName = "nasa-apod-log.json"
)

// Apod shows NASA's Astronomy Picture of the Day with its title.
type Apod struct {
	*feedApp
}

var _ App = (*Apod)(nil)

// NewApod returns the APOD app. A failed title lookup does not stop the
// image download; the entry is stored as ApodUntitled.
func NewApod(opts FeedOptions, env Env) *Apod {
	opts.Interval = intervalOr(opts.Interval, DefaultApodInterval)
	if opts.ImageURL == "" {
		opts.ImageURL = DefaultApodImageURL
	}
	if opts.MetaURL == "" {
		opts.MetaURL = DefaultApodMetaURL + "?api_key=DEMO_KEY"
	}
	a := &Apod{feedApp: newFeedApp(state.Apod, apodPrefix, apodLogName, opts, env)}
	a.title = a.fetchTitle
	a.fallback = func(string) string { return ApodUntitled }
	return a
}

func (a *Apod) fetchTitle(ctx context.Context) (string, error) {
	var meta fetch.APOD
	if err := a.env.Fetcher.FetchJSON(ctx, a.opts.MetaURL, &meta); err != nil {
		return "", err
	}
	return meta.Title, nil
}
