package apps

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/state"
)

var (
	testDay   = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	testPanel = image.Rect(0, 0, 800, 480)
)

// fakeFetcher serves canned bytes and counts calls.
type fakeFetcher struct {
	mu        sync.Mutex
	image     []byte
	imageErr  error
	meta      string
	metaErr   error
	now       time.Time
	timeErr   error
	downloads int
	metaCalls int
	timeCalls int
}

func (f *fakeFetcher) Download(_ context.Context, _ string, w io.Writer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	if f.imageErr != nil {
		// Partial bytes must never be trusted.
		_, _ = w.Write([]byte{0xff, 0xd8})
		return 2, f.imageErr
	}
	n, err := w.Write(f.image)
	return int64(n), err
}

func (f *fakeFetcher) FetchJSON(_ context.Context, _ string, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metaCalls++
	if f.metaErr != nil {
		return f.metaErr
	}
	return json.Unmarshal([]byte(f.meta), dest)
}

func (f *fakeFetcher) ServerTime(context.Context, string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeCalls++
	return f.now, f.timeErr
}

func jpegBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func shade(i int) color.RGBA {
	return color.RGBA{uint8(20 * i), uint8(255 - 20*i), uint8(7 * i), 0xff}
}

type fixture struct {
	root    string
	store   *state.Store
	fetcher *fakeFetcher
	clock   *hw.OffsetClock
	env     Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:    root,
		store:   state.Load(filepath.Join(root, "state.json"), nil),
		fetcher: &fakeFetcher{},
		clock:   hw.NewOffsetClock(func() time.Time { return testDay }, time.UTC),
	}
	f.env = Env{Store: f.store, Fetcher: f.fetcher, Clock: f.clock}
	return f
}

func (f *fixture) reload(t *testing.T) *state.Store {
	t.Helper()
	return state.Load(f.store.Path(), nil)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func readTitles(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var titles map[string]string
	require.NoError(t, json.Unmarshal(data, &titles))
	return titles
}
