//go:build windows
// +build windows

package lifecycle

import (
	"time"

	"golang.org/x/sys/windows/svc"
)

// ToSvc converts a status record to the x/sys representation.
func (s Status) ToSvc() svc.Status {
	var accepts svc.Accepted
	if s.Accepts&AcceptStop != 0 {
		accepts |= svc.AcceptStop
	}
	if s.Accepts&AcceptPauseContinue != 0 {
		accepts |= svc.AcceptPauseAndContinue
	}
	return svc.Status{
		State:         svc.State(s.State),
		Accepts:       accepts,
		CheckPoint:    s.CheckPoint,
		WaitHint:      uint32(s.WaitHint / time.Millisecond),
		ProcessId:     s.ProcessID,
		Win32ExitCode: s.ExitCode,
	}
}

// StatusFromSvc converts a queried x/sys status record.
func StatusFromSvc(st svc.Status) Status {
	var accepts Accepted
	if st.Accepts&svc.AcceptStop != 0 {
		accepts |= AcceptStop
	}
	if st.Accepts&svc.AcceptPauseAndContinue != 0 {
		accepts |= AcceptPauseContinue
	}
	return Status{
		State:      State(st.State),
		Accepts:    accepts,
		ExitCode:   st.Win32ExitCode,
		CheckPoint: st.CheckPoint,
		WaitHint:   time.Duration(st.WaitHint) * time.Millisecond,
		ProcessID:  st.ProcessId,
	}
}

// ControlEventFromCmd maps an SCM command onto the control events the
// translator understands.
func ControlEventFromCmd(cmd svc.Cmd) ControlEvent {
	switch cmd {
	case svc.Interrogate:
		return ControlInterrogate
	case svc.Stop:
		return ControlStop
	case svc.Pause:
		return ControlPause
	case svc.Continue:
		return ControlContinue
	}
	return ControlOther
}
