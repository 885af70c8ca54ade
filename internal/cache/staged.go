package cache

import (
	"errors"
	"fmt"
	"os"

	"github.com/five82/inkframe/internal/fsutil"
)

// Staged is an artifact being downloaded. It lives under a ".part" name that
// Reconcile ignores and deletes, so an interrupted transfer is never
// mistaken for a complete file.
type Staged struct {
	dir    *Dir
	name   string
	f      *os.File
	closed bool
	done   bool
}

// Stage opens a staging file for name.
func (d *Dir) Stage(name string) (*Staged, error) {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	f, err := os.Create(d.FilePath(name + stagingSuffix))
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	return &Staged{dir: d, name: name, f: f}, nil
}

// Name returns the final artifact name.
func (s *Staged) Name() string { return s.name }

// Path returns the staging file path.
func (s *Staged) Path() string { return s.dir.FilePath(s.name + stagingSuffix) }

// Write appends to the staging file.
func (s *Staged) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errors.New("write to closed staging file")
	}
	return s.f.Write(p)
}

// Close flushes and closes the staging file. It is safe to call twice.
func (s *Staged) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	syncErr := s.f.Sync()
	closeErr := s.f.Close()
	if syncErr != nil {
		return fmt.Errorf("sync staging file: %w", syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close staging file: %w", closeErr)
	}
	return nil
}

// Commit renames the staging file to its final name. The entry is not
// recorded; callers Append it once they decide to keep it.
func (s *Staged) Commit() error {
	if s.done {
		return errors.New("staging file already finished")
	}
	if err := s.Close(); err != nil {
		_ = s.Discard()
		return err
	}
	s.done = true
	if err := os.Rename(s.Path(), s.dir.FilePath(s.name)); err != nil {
		_ = fsutil.RemoveIfExists(s.Path())
		return fmt.Errorf("commit %s: %w", s.name, err)
	}
	return nil
}

// Discard deletes the staging file.
func (s *Staged) Discard() error {
	_ = s.Close()
	s.done = true
	return fsutil.RemoveIfExists(s.Path())
}
