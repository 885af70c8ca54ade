// Package wake turns the timer and the buttons into a single stream of
// wake events. It replaces the RTC alarm and deep sleep: the scheduler
// arms a timer, then blocks in Wait until the timer fires or a button is
// pressed.
package wake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/five82/inkframe/internal/hw"
	"github.com/five82/inkframe/internal/logfields"
)

// minDelay is the shortest delay handed to the scheduler; anything shorter
// fires at once.
const minDelay = 10 * time.Millisecond

// Source arms one-shot wake timers and waits for wake events.
type Source struct {
	sched  gocron.Scheduler
	input  hw.Input
	now    func() time.Time
	logger *slog.Logger
	fired  chan struct{}

	mu       sync.Mutex
	gen      uint64
	job      uuid.UUID
	armed    bool
	deadline time.Time
}

// New starts a wake source reading presses from input. Scheduler options
// are passed to gocron.
func New(input hw.Input, logger *slog.Logger, opts ...gocron.SchedulerOption) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	sched.Start()
	return &Source{
		sched:  sched,
		input:  input,
		now:    time.Now,
		logger: logger,
		fired:  make(chan struct{}, 1),
	}, nil
}

// Arm schedules the next timer wake d from now, replacing any earlier
// timer. A pending unconsumed timer wake is discarded.
func (s *Source) Arm(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarmLocked()
	s.gen++
	s.deadline = s.now().Add(d)

	if d < minDelay {
		s.signal()
		return nil
	}

	job, err := s.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(d))),
		gocron.NewTask(s.fire, s.gen),
		gocron.WithName("wake"),
	)
	if err != nil {
		return fmt.Errorf("schedule wake: %w", err)
	}
	s.job = job.ID()
	s.armed = true
	s.logger.Debug("wake armed", logfields.NextWake(d))
	return nil
}

// Fire delivers a timer wake now, as if the armed timer expired.
func (s *Source) Fire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
	s.signal()
}

// Deadline returns when the armed timer is due.
func (s *Source) Deadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline, !s.deadline.IsZero()
}

// Wait blocks until the next wake event. A button press always wins over
// a timer that expired at the same time.
func (s *Source) Wait(ctx context.Context) (hw.WakeEvent, error) {
	presses := s.presses()

	select {
	case pressed := <-presses:
		return s.buttonEvent(pressed), nil
	default:
	}

	select {
	case <-ctx.Done():
		return hw.WakeEvent{}, ctx.Err()
	case pressed := <-presses:
		return s.buttonEvent(pressed), nil
	case <-s.fired:
		select {
		case pressed := <-presses:
			return s.buttonEvent(pressed), nil
		default:
		}
		s.mu.Lock()
		s.deadline = time.Time{}
		s.mu.Unlock()
		return hw.WakeEvent{Cause: hw.WakeTimer, At: s.now()}, nil
	}
}

// Close stops the scheduler.
func (s *Source) Close() error {
	s.mu.Lock()
	s.disarmLocked()
	s.mu.Unlock()
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}

func (s *Source) presses() <-chan hw.ButtonSet {
	if s.input == nil {
		return nil
	}
	return s.input.Presses()
}

func (s *Source) buttonEvent(pressed hw.ButtonSet) hw.WakeEvent {
	return hw.WakeEvent{Cause: hw.WakeButton, Pressed: pressed, At: s.now()}
}

func (s *Source) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.armed = false
	s.signal()
}

// signal must be called with mu held.
func (s *Source) signal() {
	select {
	case s.fired <- struct{}{}:
	default:
	}
}

// disarmLocked must be called with mu held.
func (s *Source) disarmLocked() {
	if s.armed {
		if err := s.sched.RemoveJob(s.job); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
			s.logger.Warn("remove wake job", logfields.Error(err))
		}
		s.armed = false
	}
	s.gen++
	s.deadline = time.Time{}
	select {
	case <-s.fired:
	default:
	}
}
