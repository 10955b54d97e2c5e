// Package session tracks the lifecycle of a reconstruction run.
package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

var (
	// ErrSessionBusy is returned when a run is requested while one is active
	ErrSessionBusy = errors.New("session busy")
	// ErrNotRunning is returned for run operations while idle
	ErrNotRunning = errors.New("no session running")
)

// State of the session
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Outcome is how a run ended
type Outcome int

const (
	Completed Outcome = iota
	Cancelled
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Session is the Idle/Running state machine. Like the value model it is owned
// by the UI thread; progress and completion reach it as marshalled messages.
type Session struct {
	state    State
	id       uint64
	progress float64
	cancel   bool
	last     Outcome
	reason   string
	runs     int

	onChange []func(*Session)
}

// New returns an idle session
func New() *Session {
	return &Session{}
}

// State returns the current state
func (s *Session) State() State { return s.state }

// Running reports whether a run is active
func (s *Session) Running() bool { return s.state == Running }

// ID identifies the active run, or the last one when idle
func (s *Session) ID() uint64 { return s.id }

// Progress returns the gauge value in [0, 1]
func (s *Session) Progress() float64 { return s.progress }

// CancelRequested reports whether the user asked the active run to stop
func (s *Session) CancelRequested() bool { return s.cancel }

// Last returns the outcome and reason of the last finished run
func (s *Session) Last() (Outcome, string) { return s.last, s.reason }

// Runs counts finished runs
func (s *Session) Runs() int { return s.runs }

// OnChange registers fn to be called after every state or progress change
func (s *Session) OnChange(fn func(*Session)) {
	s.onChange = append(s.onChange, fn)
}

func (s *Session) notify() {
	for _, fn := range s.onChange {
		fn(s)
	}
}

// Begin moves Idle to Running and returns the new run id
func (s *Session) Begin() (uint64, error) {
	if s.state == Running {
		return 0, fmt.Errorf("run %d is active: %w", s.id, ErrSessionBusy)
	}
	s.id++
	s.state = Running
	s.progress = 0
	s.cancel = false
	logrus.Infof("session: run %d started", s.id)
	s.notify()
	return s.id, nil
}

// SetProgress records an engine progress event for run id. Events from
// another run are dropped, values are clamped to [0, 1] and the gauge never
// moves backwards.
func (s *Session) SetProgress(id uint64, p float64) bool {
	if s.state != Running || id != s.id {
		return false
	}
	if math.IsNaN(p) {
		return false
	}
	p = math.Max(0, math.Min(1, p))
	if p <= s.progress {
		return false
	}
	s.progress = p
	s.notify()
	return true
}

// RequestCancel marks the active run as cancelling. The session stays
// Running until the engine's completion signal arrives.
func (s *Session) RequestCancel() error {
	if s.state != Running {
		return ErrNotRunning
	}
	if s.cancel {
		return nil
	}
	s.cancel = true
	logrus.Infof("session: cancel requested for run %d", s.id)
	s.notify()
	return nil
}

// Finish moves Running to Idle on the engine's completion signal for run id
func (s *Session) Finish(id uint64, o Outcome, reason string) error {
	if s.state != Running {
		return ErrNotRunning
	}
	if id != s.id {
		return fmt.Errorf("completion for run %d while run %d is active: %w", id, s.id, ErrNotRunning)
	}
	s.state = Idle
	s.last = o
	s.reason = reason
	s.cancel = false
	s.runs++
	if o == Completed {
		s.progress = 1
	}
	logrus.Infof("session: run %d %s %s", id, o, reason)
	s.notify()
	return nil
}

// Reset returns an idle session to its initial state
func (s *Session) Reset() error {
	if s.state == Running {
		return ErrSessionBusy
	}
	s.progress = 0
	s.last = Completed
	s.reason = ""
	s.notify()
	return nil
}
