package status

import (
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/state"
)

// Report describes one finished wake cycle.
type Report struct {
	CycleID  string
	Cause    hw.WakeCause
	Pressed  hw.ButtonSet
	Command  string
	Record   state.Record
	Notice   string
	Duration time.Duration
	NextWake time.Time
	Frame    image.Image
}

// Snapshot represents the latest data available to the simulator UI.
type Snapshot struct {
	Report
	HasCycle            bool
	Cycles              int
	Launcher            bool
	FrameVersion        int // Bumped whenever Frame changes
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed cycles
}

// IsFailing returns true when several cycles in a row reported an error.
func (s Snapshot) IsFailing() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records a finished cycle. A cycle that failed still replaces the
// frame, since the scheduler always shows something, but err is kept for
// display and counted.
func (s *Store) Update(rep Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep.Frame = cloneFrame(rep.Frame)
	s.snapshot.Report = rep
	s.snapshot.HasCycle = true
	s.snapshot.Launcher = false
	s.snapshot.Cycles++
	s.snapshot.FrameVersion++
	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// ShowLauncher records that the launcher menu is on screen.
func (s *Store) ShowLauncher(frame image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Frame = cloneFrame(frame)
	s.snapshot.Launcher = true
	s.snapshot.FrameVersion++
	s.snapshot.LastUpdated = time.Now()
}

// SetNextWake updates the time of the armed timer.
func (s *Store) SetNextWake(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.NextWake = t
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Frame = cloneFrame(s.snapshot.Frame)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneFrame(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	dup := image.NewRGBA(img.Bounds())
	draw.Draw(dup, dup.Bounds(), img, img.Bounds().Min, draw.Src)
	return dup
}
