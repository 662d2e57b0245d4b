package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/soundprobe/soundprobe/internal/domain"
)

// DefaultFrameInterval is the redraw cadence while the scheduler is
// running. The sonar sweep is wall-clock-driven, so the loop keeps ticking
// while playback is paused.
const DefaultFrameInterval = 100 * time.Millisecond

// SchedulerState is the scheduler's lifecycle state.
type SchedulerState int

const (
	// SchedulerIdle means no redraw loop is running.
	SchedulerIdle SchedulerState = iota

	// SchedulerRunning means the redraw loop is active.
	SchedulerRunning
)

// String returns a human-readable representation of the scheduler state.
func (s SchedulerState) String() string {
	switch s {
	case SchedulerIdle:
		return "idle"
	case SchedulerRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Ticker abstracts time.Ticker so tests can step frames deterministically.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker for the given interval.
type TickerFactory func(interval time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(interval time.Duration) Ticker {
	return realTicker{t: time.NewTicker(interval)}
}

// Scheduler drives the redraw cadence as an explicit two-state machine:
// Idle (no loop) and Running (a goroutine invoking the frame callback on
// every tick). The transition into Running happens when playback starts or
// when the presenter keeps the sonar sweep animating; the transition back
// to Idle happens on Stop. Close cancels everything and must be called on
// teardown; a scheduler torn down without Stop/Close leaks its ticker
// goroutine.
type Scheduler struct {
	logger    *slog.Logger
	interval  time.Duration
	newTicker TickerFactory
	onFrame   func()

	mu     sync.Mutex
	state  SchedulerState
	stop   chan struct{}
	kick   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// NewScheduler creates an idle scheduler. onFrame is invoked once per tick
// while running; it must render all surfaces from a single snapshot.
func NewScheduler(logger *slog.Logger, interval time.Duration, onFrame func()) *Scheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Scheduler{
		logger:    logger,
		interval:  interval,
		newTicker: newRealTicker,
		onFrame:   onFrame,
		state:     SchedulerIdle,
		kick:      make(chan struct{}, 1),
	}
}

// SetTickerFactory replaces the ticker source. Tests inject a manual
// ticker here to step frames without real timers. Must be called while
// the scheduler is idle.
func (s *Scheduler) SetTickerFactory(factory TickerFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SchedulerIdle && factory != nil {
		s.newTicker = factory
	}
}

// State returns the current scheduler state.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start transitions Idle to Running and begins the redraw loop. Starting a
// running scheduler is a no-op. Starting a closed scheduler returns
// domain.ErrSchedulerClosed.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSchedulerClosed
	}
	if s.state == SchedulerRunning {
		s.mu.Unlock()
		return nil
	}

	s.state = SchedulerRunning
	s.stop = make(chan struct{})
	stop := s.stop
	ticker := s.newTicker(s.interval)
	s.wg.Add(1)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("frame scheduler started", slog.Duration("interval", s.interval))
	}

	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				s.onFrame()
			case <-s.kick:
				s.onFrame()
			}
		}
	}()

	return nil
}

// Stop transitions Running to Idle, cancelling the redraw loop and waiting
// for the in-flight frame to finish. Stopping an idle scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != SchedulerRunning {
		s.mu.Unlock()
		return
	}
	s.state = SchedulerIdle
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()

	if s.logger != nil {
		s.logger.Debug("frame scheduler stopped")
	}
}

// RequestFrame schedules a single redraw. While running, the frame is
// coalesced into the loop; while idle (e.g. a view-parameter change before
// playback ever started), the frame renders synchronously so the surfaces
// never show stale parameters.
func (s *Scheduler) RequestFrame() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	running := s.state == SchedulerRunning
	s.mu.Unlock()

	if !running {
		s.onFrame()
		return
	}

	select {
	case s.kick <- struct{}{}:
	default:
		// A kick is already pending; the next tick covers it.
	}
}

// Close stops the loop and marks the scheduler unusable. Safe to call
// multiple times.
func (s *Scheduler) Close() {
	s.Stop()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
