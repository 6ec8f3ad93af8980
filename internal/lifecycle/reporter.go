package lifecycle

import (
	"fmt"
	"sync"

	"servicekit/internal/logger"
)

// StatusHandle receives status records. On Windows it is backed by the SCM
// registration; elsewhere it only logs.
type StatusHandle interface {
	SetStatus(st Status) error
}

// StatusHandleFunc adapts a function to StatusHandle.
type StatusHandleFunc func(st Status) error

// SetStatus calls f(st).
func (f StatusHandleFunc) SetStatus(st Status) error { return f(st) }

// RunningAccepts is the control set advertised while the service runs.
const RunningAccepts = AcceptStop | AcceptPauseContinue

// Reporter pushes status records for one service registration and keeps the
// checkpoint counter honest.
type Reporter struct {
	handle StatusHandle

	mu       sync.Mutex
	current  Status
	reported bool
}

// NewReporter returns a reporter writing to handle.
func NewReporter(handle StatusHandle) *Reporter {
	return &Reporter{handle: handle}
}

// Report pushes a status record. A new phase starts at its baseline
// checkpoint (1 while pending, 0 otherwise); re-reporting the same pending
// state must advance the checkpoint.
func (r *Reporter) Report(state State, accepts Accepted, checkpoint uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Status{
		State:      state,
		Accepts:    accepts,
		CheckPoint: checkpoint,
	}
	if err := st.Validate(); err != nil {
		return err
	}
	samePhase := r.reported && r.current.State == state
	switch {
	case samePhase && state.IsPending():
		if checkpoint <= r.current.CheckPoint {
			return fmt.Errorf("%w: checkpoint %d does not advance past %d in %s",
				ErrInvalidStatus, checkpoint, r.current.CheckPoint, state)
		}
	case checkpoint != baselineCheckpoint(state):
		return fmt.Errorf("%w: %s must report checkpoint %d, got %d",
			ErrInvalidStatus, state, baselineCheckpoint(state), checkpoint)
	}

	log := logger.WithComponent("status")
	log.Info().
		Str("state", state.String()).
		Str("accepts", accepts.String()).
		Uint32("checkpoint", checkpoint).
		Msg("Setting service status")

	if err := r.handle.SetStatus(st); err != nil {
		return &StatusReportError{State: state, Err: err}
	}
	r.current = st
	r.reported = true
	return nil
}

// Enter moves to a new phase using its baseline record: pending states start
// at checkpoint 1 with no controls, Running and Paused accept Stop and
// Pause/Continue, Stopped reports checkpoint 0.
func (r *Reporter) Enter(state State) error {
	var accepts Accepted
	if state == Running || state == Paused {
		accepts = RunningAccepts
	}
	return r.Report(state, accepts, baselineCheckpoint(state))
}

func baselineCheckpoint(state State) uint32 {
	if state.IsPending() {
		return 1
	}
	return 0
}

// Progress re-reports the current pending phase with the next checkpoint.
func (r *Reporter) Progress() error {
	cur, ok := r.Current()
	if !ok || !cur.State.IsPending() {
		return fmt.Errorf("%w: no pending phase to report progress for", ErrInvalidStatus)
	}
	return r.Report(cur.State, 0, cur.CheckPoint+1)
}

// Current returns the last record that was pushed successfully.
func (r *Reporter) Current() (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.reported
}
