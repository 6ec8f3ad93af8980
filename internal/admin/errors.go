package admin

import (
	"errors"
	"fmt"

	"servicekit/internal/lifecycle"
)

// Kind classifies an administrative failure.
type Kind int

const (
	ConnectFailed Kind = iota + 1
	OpenFailed
	QueryFailed
	StartFailed
	StopFailed
	DeleteFailed
	CreateFailed
	Timeout
)

var kindNames = map[Kind]string{
	ConnectFailed: "ConnectFailed",
	OpenFailed:    "OpenFailed",
	QueryFailed:   "QueryFailed",
	StartFailed:   "StartFailed",
	StopFailed:    "StopFailed",
	DeleteFailed:  "DeleteFailed",
	CreateFailed:  "CreateFailed",
	Timeout:       "Timeout",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	// ErrTimeout matches every Timeout error: the service is still
	// transitioning, so the caller may poll again.
	ErrTimeout = errors.New("timeout reached while waiting for service state")

	// ErrClosed is returned for operations on a context after Delete or Close.
	ErrClosed = errors.New("service handle is closed")

	// ErrUnsupportedState is returned when the uninstall policy has no safe
	// action for the discovered state.
	ErrUnsupportedState = errors.New("no safe uninstall transition for service state")
)

// Error is an administrative failure: what was attempted, on which service,
// and the underlying OS error.
type Error struct {
	Kind    Kind
	Service string
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (service %q)", e.Context, e.Service)
	}
	return fmt.Sprintf("%s (service %q): %v", e.Context, e.Service, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTimeout) true for every Timeout error.
func (e *Error) Is(target error) bool {
	return target == ErrTimeout && e.Kind == Timeout
}

func newError(kind Kind, service, context string, err error) *Error {
	return &Error{Kind: kind, Service: service, Context: context, Err: err}
}

// KindOf returns the Kind of an administrative error, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// UnsupportedStateError reports the state the uninstall policy refused.
type UnsupportedStateError struct {
	State lifecycle.State
}

func (e *UnsupportedStateError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnsupportedState, e.State)
}

func (e *UnsupportedStateError) Unwrap() error { return ErrUnsupportedState }
