package lifecycle

import "fmt"

// RegistrationError means the process could not obtain a control handle from
// the SCM. It is fatal: a service cannot run without one.
type RegistrationError struct {
	Service string
	Err     error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register service %q with the service control manager: %v", e.Service, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// StatusReportError means a status record could not be pushed to the SCM.
// The lifecycle keeps going after one of these.
type StatusReportError struct {
	State State
	Err   error
}

func (e *StatusReportError) Error() string {
	return fmt.Sprintf("failed to set service status to %s: %v", e.State, e.Err)
}

func (e *StatusReportError) Unwrap() error { return e.Err }

// WorkerError describes a worker that returned an error or panicked.
type WorkerError struct {
	Index    int
	Worker   string
	Err      error
	Panicked bool
	Panic    interface{}
	Stack    []byte
}

func (e *WorkerError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("worker %d (%s) panicked: %v", e.Index, e.Worker, e.Panic)
	}
	return fmt.Sprintf("worker %d (%s) failed: %v", e.Index, e.Worker, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }
