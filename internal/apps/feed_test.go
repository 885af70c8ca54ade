package apps

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/inkframe/internal/cache"
	"github.com/five82/inkframe/internal/render"
	"github.com/five82/inkframe/internal/state"
)

func newApod(t *testing.T, f *fixture) *Apod {
	t.Helper()
	return NewApod(FeedOptions{Dir: filepath.Join(f.root, "nasa_apod")}, f.env)
}

func newXkcd(t *testing.T, f *fixture) *Xkcd {
	t.Helper()
	return NewXkcd(FeedOptions{Dir: filepath.Join(f.root, "xkcd")}, f.env)
}

// seed writes n distinct cached images dated before testDay.
func seed(t *testing.T, dir *cache.Dir, prefix string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		day := testDay.AddDate(0, 0, i-n)
		name := fmt.Sprintf("%s_%s.jpg", prefix, day.Format(dayLayout))
		writeFile(t, dir.FilePath(name), jpegBytes(t, shade(i)))
	}
}

func TestApod_FirstFetchIntoEmptyCache(t *testing.T) {
	f := newFixture(t)
	f.fetcher.image = jpegBytes(t, shade(1))
	f.fetcher.meta = `{"title": "The Horsehead Nebula", "date": "2026-10-17"}`
	a := newApod(t, f)

	require.NoError(t, a.Update(context.Background(), Tick))

	today := "nasa-apod_2026-10-17.jpg"
	assert.Equal(t, []cache.Entry{{Name: today, Title: "The Horsehead Nebula"}}, a.Cache().Entries())
	assert.Equal(t, 0, f.reload(t).Get(state.Apod))
	assert.Equal(t, map[string]string{today: "The Horsehead Nebula"}, readTitles(t, a.Cache().LogPath()))
	assert.Empty(t, a.Notice())

	cv := render.NewCanvas(testPanel)
	require.NoError(t, a.Draw(cv))
}

func TestApod_TitleFailureStillFetchesImage(t *testing.T) {
	f := newFixture(t)
	f.fetcher.image = jpegBytes(t, shade(2))
	f.fetcher.metaErr = errors.New("rate limited")
	a := newApod(t, f)

	require.NoError(t, a.Update(context.Background(), Tick))

	e, ok := a.Current()
	require.True(t, ok)
	assert.Equal(t, ApodUntitled, e.Title)
	assert.Equal(t, 1, f.fetcher.downloads)
}

func TestFeed_EleventhFetchEvictsOldest(t *testing.T) {
	f := newFixture(t)
	a := newApod(t, f)
	seed(t, a.Cache(), apodPrefix, 10)
	oldest := fmt.Sprintf("%s_%s.jpg", apodPrefix, testDay.AddDate(0, 0, -10).Format(dayLayout))
	f.fetcher.image = jpegBytes(t, shade(11))
	f.fetcher.meta = `{"title": "Eleven"}`

	require.NoError(t, a.Update(context.Background(), Tick))

	entries := a.Cache().Entries()
	assert.Len(t, entries, 10)
	assert.Equal(t, -1, a.Cache().Index(oldest))
	assert.NoFileExists(t, a.Cache().FilePath(oldest))
	assert.Equal(t, "Eleven", entries[9].Title)
	assert.Equal(t, 9, f.reload(t).Get(state.Apod))
}

func TestXkcd_AdvanceWhenTodayCachedDoesNotFetch(t *testing.T) {
	f := newFixture(t)
	x := newXkcd(t, f)
	seed(t, x.Cache(), xkcdPrefix, 3)
	today := x.TodayName(testDay)
	writeFile(t, x.Cache().FilePath(today), jpegBytes(t, shade(9)))
	require.NoError(t, f.store.Set(state.Xkcd, 3))

	require.NoError(t, x.Update(context.Background(), Forward))

	assert.Equal(t, 0, f.fetcher.downloads)
	assert.Equal(t, 0, f.reload(t).Get(state.Xkcd), "cursor wraps from 3 to (3+1) mod 4")

	require.NoError(t, x.Update(context.Background(), Backward))
	assert.Equal(t, 3, f.reload(t).Get(state.Xkcd))

	require.NoError(t, f.store.Set(state.Xkcd, 1))
	require.NoError(t, x.Update(context.Background(), Tick))
	assert.Equal(t, 3, f.reload(t).Get(state.Xkcd), "a timer wake points at today's comic")
	assert.Equal(t, 0, f.fetcher.downloads)
}

func TestFeed_FetchFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	x := newXkcd(t, f)
	seed(t, x.Cache(), xkcdPrefix, 4)
	_, err := x.Cache().Reconcile()
	require.NoError(t, err)
	require.NoError(t, x.Cache().Save())
	require.NoError(t, f.store.Set(state.Xkcd, 2))
	before := x.Cache().Entries()
	f.fetcher.imageErr = errors.New("connection reset")
	f.fetcher.meta = `{"safe_title": "Never Stored"}`

	err = x.Update(context.Background(), Tick)
	require.ErrorIs(t, err, ErrFetch)

	assert.Equal(t, before, x.Cache().Entries())
	assert.Equal(t, 2, f.reload(t).Get(state.Xkcd))
	assert.NoFileExists(t, x.Cache().FilePath(x.TodayName(testDay)))
	assert.NoFileExists(t, x.Cache().FilePath(x.TodayName(testDay)+".part"))
	assert.Equal(t, render.DownloadError, x.Notice())

	cv := render.NewCanvas(testPanel)
	require.NoError(t, x.Draw(cv))
	assert.Equal(t, render.Red.Color(), cv.Image().RGBAAt(testPanel.Dx()-1, 12), "banner strip")
}

func TestFeed_DuplicateContentIsAliased(t *testing.T) {
	f := newFixture(t)
	x := newXkcd(t, f)
	seed(t, x.Cache(), xkcdPrefix, 3)
	f.fetcher.image = jpegBytes(t, shade(1))
	f.fetcher.meta = `{"safe_title": "Rerun"}`

	require.NoError(t, x.Update(context.Background(), Tick))

	assert.Len(t, x.Cache().Entries(), 3)
	assert.NoFileExists(t, x.Cache().FilePath(x.TodayName(testDay)))
	assert.Equal(t, 1, f.reload(t).Get(state.Xkcd))

	require.NoError(t, x.Update(context.Background(), Tick))
	assert.Equal(t, 1, f.fetcher.downloads, "same-day duplicate is remembered")

	require.NoError(t, x.Update(context.Background(), Forward))
	assert.Equal(t, 2, f.reload(t).Get(state.Xkcd))
}

func TestFeed_UndecodableEntryIsRemoved(t *testing.T) {
	f := newFixture(t)
	a := newApod(t, f)
	seed(t, a.Cache(), apodPrefix, 2)
	today := a.TodayName(testDay)
	writeFile(t, a.Cache().FilePath(today), []byte("not a jpeg"))

	require.NoError(t, a.Update(context.Background(), Tick))
	e, ok := a.Current()
	require.True(t, ok)
	require.Equal(t, today, e.Name)

	cv := render.NewCanvas(testPanel)
	err := a.Draw(cv)
	require.ErrorIs(t, err, render.ErrMalformed)

	assert.Equal(t, -1, a.Cache().Index(today))
	assert.NoFileExists(t, a.Cache().FilePath(today))
	assert.NotContains(t, readTitles(t, a.Cache().LogPath()), today)
	assert.Less(t, f.reload(t).Get(state.Apod), a.Cache().Len())
}

func TestFeed_UndecodableDownloadIsNotRefetched(t *testing.T) {
	f := newFixture(t)
	a := newApod(t, f)
	seed(t, a.Cache(), apodPrefix, 2)
	f.fetcher.image = []byte("not a jpeg")
	f.fetcher.meta = `{"title": "Broken"}`

	require.NoError(t, a.Update(context.Background(), Tick))
	require.ErrorIs(t, a.Draw(render.NewCanvas(testPanel)), render.ErrMalformed)
	require.Equal(t, 1, f.fetcher.downloads)

	for wake := 2; wake <= 3; wake++ {
		require.NoError(t, a.Update(context.Background(), Tick))
		require.NoError(t, a.Draw(render.NewCanvas(testPanel)), "wake %d shows a cached entry", wake)
		assert.Equal(t, 1, f.fetcher.downloads, "wake %d", wake)
		assert.Len(t, a.Cache().Entries(), 2)
	}

	// Next day the feed still serves the same bytes: downloaded once more,
	// then discarded without touching the cache.
	tomorrow := testDay.AddDate(0, 0, 1)
	f.clock.Set(tomorrow)
	require.NoError(t, a.Update(context.Background(), Tick))
	require.NoError(t, a.Draw(render.NewCanvas(testPanel)))
	assert.Equal(t, 2, f.fetcher.downloads)
	assert.Len(t, a.Cache().Entries(), 2)
	assert.NoFileExists(t, a.Cache().FilePath(a.TodayName(tomorrow)))

	require.NoError(t, a.Update(context.Background(), Tick))
	assert.Equal(t, 2, f.fetcher.downloads, "rejected again, so not retried that day")
}

func TestFeed_StoredCursorIsClamped(t *testing.T) {
	f := newFixture(t)
	x := newXkcd(t, f)
	seed(t, x.Cache(), xkcdPrefix, 3)
	writeFile(t, x.Cache().FilePath(x.TodayName(testDay)), jpegBytes(t, shade(8)))
	require.NoError(t, f.store.Set(state.Xkcd, 99))

	require.NoError(t, x.Update(context.Background(), Forward))
	assert.Equal(t, 0, f.reload(t).Get(state.Xkcd), "99 clamps to 3 then wraps forward")
}

func TestFeed_WritesOnlyOwnCursor(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(state.Apod, 5))
	x := newXkcd(t, f)
	f.fetcher.image = jpegBytes(t, shade(3))
	f.fetcher.meta = `{"safe_title": "Mine"}`

	require.NoError(t, x.Update(context.Background(), Tick))
	assert.Equal(t, 5, f.reload(t).Get(state.Apod))
}
