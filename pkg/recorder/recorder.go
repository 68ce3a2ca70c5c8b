// Package recorder models a capture session as an explicit state machine.
// It is the reference implementation of the upload contract for native
// clients: one session owns at most one capture device handle and one
// timer, and both are released on every exit path.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type State string

const (
	StateIdle      State = "IDLE"
	StateRecording State = "RECORDING"
	StatePaused    State = "PAUSED"
)

var ErrInvalidTransition = errors.New("invalid transition")

// Handle is an acquired capture device. Close releases it; a closed handle
// is never reused.
type Handle interface {
	Pause() error
	Resume() error
	Close() error
}

// Opener acquires the capture device. Open must either return a live handle
// or leave nothing acquired.
type Opener interface {
	Open(ctx context.Context) (Handle, error)
}

type Session struct {
	mu sync.Mutex

	opener Opener
	now    func() time.Time

	state     State
	handle    Handle
	startedAt time.Time
	elapsed   time.Duration
}

func NewSession(opener Opener) *Session {
	return &Session{
		opener: opener,
		now:    time.Now,
		state:  StateIdle,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed is the recorded time so far, excluding paused spans.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRecording {
		return s.elapsed + s.now().Sub(s.startedAt)
	}
	return s.elapsed
}

func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, s.state)
	}

	handle, err := s.opener.Open(ctx)
	if err != nil {
		// Nothing acquired: the session stays Idle and restartable.
		return fmt.Errorf("open capture device: %w", err)
	}

	s.handle = handle
	s.startedAt = s.now()
	s.elapsed = 0
	s.state = StateRecording
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, s.state)
	}

	if err := s.handle.Pause(); err != nil {
		return err
	}

	s.elapsed += s.now().Sub(s.startedAt)
	s.state = StatePaused
	return nil
}

func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, s.state)
	}

	if err := s.handle.Resume(); err != nil {
		return err
	}

	s.startedAt = s.now()
	s.state = StateRecording
	return nil
}

// Stop releases the device and returns the total recorded time. The handle
// is released even when Close fails.
func (s *Session) Stop() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return 0, fmt.Errorf("%w: stop from %s", ErrInvalidTransition, s.state)
	}

	if s.state == StateRecording {
		s.elapsed += s.now().Sub(s.startedAt)
	}

	err := s.handle.Close()
	s.handle = nil
	s.state = StateIdle

	total := s.elapsed
	s.elapsed = 0
	return total, err
}
