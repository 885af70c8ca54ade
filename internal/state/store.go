package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/five82/inkframe/internal/fsutil"
	"github.com/five82/inkframe/internal/logfields"
)

// Record is the durable selection and cursor state.
type Record struct {
	Active  Kind
	Cursors [4]int
}

// DefaultRecord is used when no well-formed record exists on disk.
func DefaultRecord() Record {
	return Record{Active: Gallery}
}

// Cursor returns the stored cursor for k.
func (r Record) Cursor(k Kind) int {
	if !k.Valid() {
		return 0
	}
	return r.Cursors[k]
}

// fileRecord is the on-disk layout.
type fileRecord struct {
	ActiveApp     string `json:"active_app"`
	GalleryCursor int    `json:"gallery_cursor"`
	ApodCursor    int    `json:"apod_cursor"`
	XkcdCursor    int    `json:"xkcd_cursor"`
	ClockCursor   int    `json:"clock_cursor"`
}

func (r Record) toFile() fileRecord {
	return fileRecord{
		ActiveApp:     r.Active.String(),
		GalleryCursor: r.Cursors[Gallery],
		ApodCursor:    r.Cursors[Apod],
		XkcdCursor:    r.Cursors[Xkcd],
		ClockCursor:   r.Cursors[Clock],
	}
}

// Marshal encodes r in the on-disk format.
func (r Record) Marshal() ([]byte, error) {
	return json.MarshalIndent(r.toFile(), "", "  ")
}

// Unmarshal decodes a record. Unknown app names and negative cursors are
// reported as errors; the caller decides whether to fall back to defaults.
func Unmarshal(data []byte) (Record, error) {
	var raw fileRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("parse state: %w", err)
	}
	active, err := ParseKind(raw.ActiveApp)
	if err != nil {
		return Record{}, fmt.Errorf("parse state: %w", err)
	}
	rec := Record{
		Active: active,
		Cursors: [4]int{
			Gallery: raw.GalleryCursor,
			Apod:    raw.ApodCursor,
			Xkcd:    raw.XkcdCursor,
			Clock:   raw.ClockCursor,
		},
	}
	for _, k := range Kinds {
		if rec.Cursors[k] < 0 {
			return Record{}, fmt.Errorf("parse state: negative %s cursor %d", k, rec.Cursors[k])
		}
	}
	return rec, nil
}

// Store owns the durable record and its backing file. It is used from the
// single wake loop only and is not safe for concurrent use.
type Store struct {
	path   string
	rec    Record
	exists bool
	logger *slog.Logger
}

// Load reads the record at path. A missing, truncated or unparseable file
// yields the default record; parse failures are logged, never returned.
func Load(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, rec: DefaultRecord(), logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Error("read state file", logfields.Path(path), logfields.Error(err))
		}
		return s
	}

	rec, err := Unmarshal(data)
	if err != nil {
		logger.Error("state file unreadable, using defaults", logfields.Path(path), logfields.Error(err))
		return s
	}
	s.rec = rec
	s.exists = true
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Exists reports whether a well-formed record was loaded or has since been saved.
func (s *Store) Exists() bool { return s.exists }

// Record returns a copy of the current record.
func (s *Store) Record() Record { return s.rec }

// Active returns the selected app.
func (s *Store) Active() Kind { return s.rec.Active }

// Get returns the stored cursor for k.
func (s *Store) Get(k Kind) int { return s.rec.Cursor(k) }

// SetActive selects k and persists the record.
func (s *Store) SetActive(k Kind) error {
	if !k.Valid() {
		return fmt.Errorf("set active: invalid app %d", int(k))
	}
	s.rec.Active = k
	return s.Save()
}

// Set stores the cursor for k and persists the record.
func (s *Store) Set(k Kind, cursor int) error {
	if !k.Valid() {
		return fmt.Errorf("set cursor: invalid app %d", int(k))
	}
	if cursor < 0 {
		cursor = 0
	}
	s.rec.Cursors[k] = cursor
	return s.Save()
}

// Save overwrites the backing file with the whole record.
func (s *Store) Save() error {
	data, err := s.rec.Marshal()
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	s.exists = true
	return nil
}

// Clamp bounds a cursor to 0 <= c < max(1, count).
func Clamp(cursor, count int) int {
	if count < 1 {
		count = 1
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= count {
		return count - 1
	}
	return cursor
}
