// Package lifecycle implements the service state machine shared by the
// in-process service host and the administrative client.
//
// The in-process side is driven by a Host: the SCM delivers control events to
// its Translator, the Driver reports status transitions through a Reporter and
// a Supervisor runs the workers until the cancellation Signal is observed.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// State is the current state of a service instance. The numeric values match
// the SERVICE_* state codes used by the Windows SCM.
type State uint32

const (
	Stopped         State = 1
	StartPending    State = 2
	StopPending     State = 3
	Running         State = 4
	ContinuePending State = 5
	PausePending    State = 6
	Paused          State = 7
)

var stateNames = map[State]string{
	Stopped:         "Stopped",
	StartPending:    "StartPending",
	StopPending:     "StopPending",
	Running:         "Running",
	ContinuePending: "ContinuePending",
	PausePending:    "PausePending",
	Paused:          "Paused",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", uint32(s))
}

// Valid reports whether s is one of the seven known states.
func (s State) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// IsPending reports whether s is a transitional state.
func (s State) IsPending() bool {
	switch s {
	case StartPending, StopPending, PausePending, ContinuePending:
		return true
	}
	return false
}

// Accepted is the set of control requests a service is willing to take.
type Accepted uint32

const (
	AcceptStop          Accepted = 1
	AcceptPauseContinue Accepted = 2
)

func (a Accepted) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	if a&AcceptStop != 0 {
		parts = append(parts, "Stop")
	}
	if a&AcceptPauseContinue != 0 {
		parts = append(parts, "PauseContinue")
	}
	if rest := a &^ (AcceptStop | AcceptPauseContinue); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ErrInvalidStatus is returned when a status record breaks the reporting
// invariants.
var ErrInvalidStatus = errors.New("invalid service status")

// Status is one status record as pushed to, or queried from, the SCM.
type Status struct {
	State      State
	Accepts    Accepted
	ExitCode   uint32
	CheckPoint uint32
	WaitHint   time.Duration
	ProcessID  uint32 // zero when not known
}

// Validate checks the accepted-controls invariant: nothing is accepted while a
// transition is in progress, and only Running and Paused accept anything.
func (s Status) Validate() error {
	if !s.State.Valid() {
		return fmt.Errorf("%w: unknown state %d", ErrInvalidStatus, uint32(s.State))
	}
	switch s.State {
	case Running, Paused:
		if s.Accepts == 0 {
			return fmt.Errorf("%w: %s must accept at least one control", ErrInvalidStatus, s.State)
		}
	default:
		if s.Accepts != 0 {
			return fmt.Errorf("%w: %s cannot accept controls (%s)", ErrInvalidStatus, s.State, s.Accepts)
		}
	}
	return nil
}
