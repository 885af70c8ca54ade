package cache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/five82/inkframe/internal/fsutil"
	"github.com/five82/inkframe/internal/logfields"
)

const (
	// DefaultMaxFiles bounds the number of artifacts kept per app.
	DefaultMaxFiles = 10

	stagingSuffix = ".part"

	// chunkSize is the read window for checksums and downloads.
	chunkSize = 1024
)

// Entry is one downloaded artifact and its display title.
type Entry struct {
	Name  string
	Title string
}

// Dir manages one app's artifact directory and its filename→title log.
// It is not safe for concurrent use.
type Dir struct {
	path    string
	logName string
	max     int
	entries []Entry
	dirty   bool
	logger  *slog.Logger
}

// Open returns a Dir rooted at path. Nothing is read until Reconcile.
func Open(path, logName string, maxFiles int, logger *slog.Logger) *Dir {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dir{path: path, logName: logName, max: maxFiles, logger: logger}
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// LogPath returns the path of the title log.
func (d *Dir) LogPath() string { return filepath.Join(d.path, d.logName) }

// FilePath returns the path of an artifact in the directory.
func (d *Dir) FilePath(name string) string { return filepath.Join(d.path, name) }

// MaxFiles returns the configured bound.
func (d *Dir) MaxFiles() int { return d.max }

// Entries returns a copy of the current entries in download order.
func (d *Dir) Entries() []Entry { return slices.Clone(d.entries) }

// Len returns the number of entries.
func (d *Dir) Len() int { return len(d.entries) }

// At returns the entry at i.
func (d *Dir) At(i int) (Entry, bool) {
	if i < 0 || i >= len(d.entries) {
		return Entry{}, false
	}
	return d.entries[i], true
}

// Index returns the position of name, or -1.
func (d *Dir) Index(name string) int {
	return slices.IndexFunc(d.entries, func(e Entry) bool { return e.Name == name })
}

// Dirty reports whether the entries differ from the persisted log.
func (d *Dir) Dirty() bool { return d.dirty }

// Reconcile loads the log and checks it against the directory listing. When
// they disagree the entries are rebuilt from the listing, sorted by filename;
// titles the log knows are kept and the filename stands in for the rest.
// Leftover staging files from interrupted downloads are deleted.
func (d *Dir) Reconcile() ([]Entry, error) {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	names, err := d.list()
	if err != nil {
		return nil, err
	}

	titles, err := d.readLog()
	if err != nil {
		d.logger.Warn("cache log unreadable, rebuilding from directory",
			logfields.Path(d.LogPath()), logfields.Error(err))
		titles = nil
	}

	if titles != nil && sameNames(names, titles) {
		d.entries = make([]Entry, 0, len(names))
		for _, name := range names {
			d.entries = append(d.entries, Entry{Name: name, Title: titles[name]})
		}
		return d.Entries(), nil
	}

	rebuilt := make([]Entry, 0, len(names))
	for _, name := range names {
		title, ok := titles[name]
		if !ok || strings.TrimSpace(title) == "" {
			title = name
		}
		rebuilt = append(rebuilt, Entry{Name: name, Title: title})
	}
	if titles != nil || len(names) > 0 {
		d.logger.Info("cache log rebuilt from directory listing",
			logfields.Path(d.path), logfields.Count(len(rebuilt)))
		d.dirty = true
	}
	d.entries = rebuilt
	return d.Entries(), nil
}

// list returns artifact names sorted ascending, removing stale staging files.
func (d *Dir) list() ([]string, error) {
	dirEntries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		name := de.Name()
		switch {
		case name == d.logName:
			continue
		case strings.HasPrefix(name, "."):
			continue
		case strings.HasSuffix(name, stagingSuffix):
			d.logger.Warn("removing interrupted download", logfields.File(name))
			if err := fsutil.RemoveIfExists(d.FilePath(name)); err != nil {
				d.logger.Warn("remove staging file", logfields.File(name), logfields.Error(err))
			}
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// readLog returns nil, nil when no log exists or the log is empty.
func (d *Dir) readLog() (map[string]string, error) {
	data, err := os.ReadFile(d.LogPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache log: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var titles map[string]string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, fmt.Errorf("parse cache log: %w", err)
	}
	if titles == nil {
		titles = map[string]string{}
	}
	return titles, nil
}

func sameNames(names []string, titles map[string]string) bool {
	if len(names) != len(titles) {
		return false
	}
	for _, name := range names {
		if _, ok := titles[name]; !ok {
			return false
		}
	}
	return true
}

// EvictToBound deletes the oldest entries until at most maxFiles remain and
// returns the evicted entries. A zero or negative maxFiles uses the Dir's
// bound. Files already missing from disk are skipped silently.
func (d *Dir) EvictToBound(maxFiles int) ([]Entry, error) {
	if maxFiles <= 0 {
		maxFiles = d.max
	}
	if len(d.entries) <= maxFiles {
		return nil, nil
	}

	n := len(d.entries) - maxFiles
	evicted := slices.Clone(d.entries[:n])
	var errs []error
	for _, e := range evicted {
		d.logger.Info("evicting cached file", logfields.File(e.Name))
		if err := fsutil.RemoveIfExists(d.FilePath(e.Name)); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", e.Name, err))
		}
	}
	d.entries = slices.Clone(d.entries[n:])
	d.dirty = true
	return evicted, errors.Join(errs...)
}

// Append records a new artifact at the end and enforces the bound.
func (d *Dir) Append(name, title string) error {
	if strings.TrimSpace(title) == "" {
		title = name
	}
	if i := d.Index(name); i >= 0 {
		d.entries[i].Title = title
		d.dirty = true
		return nil
	}
	d.entries = append(d.entries, Entry{Name: name, Title: title})
	d.dirty = true
	_, err := d.EvictToBound(d.max)
	return err
}

// Remove drops an entry and deletes its file.
func (d *Dir) Remove(name string) error {
	i := d.Index(name)
	if i < 0 {
		return fsutil.RemoveIfExists(d.FilePath(name))
	}
	d.entries = slices.Delete(d.entries, i, i+1)
	d.dirty = true
	if err := fsutil.RemoveIfExists(d.FilePath(name)); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// FindDuplicate returns the entry whose file has the same content as the
// file at candidate. The candidate itself is never reported.
func (d *Dir) FindDuplicate(candidate string) (string, bool, error) {
	want, err := Checksum(candidate)
	if err != nil {
		return "", false, err
	}
	candAbs, _ := filepath.Abs(candidate)
	for _, e := range d.entries {
		p := d.FilePath(e.Name)
		if abs, _ := filepath.Abs(p); abs == candAbs {
			continue
		}
		got, err := Checksum(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", false, err
		}
		if slices.Equal(got, want) {
			return e.Name, true, nil
		}
	}
	return "", false, nil
}

// Checksum returns the SHA-256 digest of the file at path, read through a
// fixed 1 KiB window.
func Checksum(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
	}
	return h.Sum(nil), nil
}

// Save rewrites the log when entries changed since the last load or save.
func (d *Dir) Save() error {
	if !d.dirty {
		return nil
	}
	titles := make(map[string]string, len(d.entries))
	for _, e := range d.entries {
		titles[e.Name] = e.Title
	}
	data, err := json.MarshalIndent(titles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache log: %w", err)
	}
	if err := fsutil.WriteFileAtomic(d.LogPath(), data, 0o644); err != nil {
		return fmt.Errorf("write cache log: %w", err)
	}
	d.dirty = false
	return nil
}
