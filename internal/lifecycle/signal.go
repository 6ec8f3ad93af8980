package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
)

// Signal is the cooperative cancellation flag shared by the control handler
// and every worker. Once set it stays set.
type Signal struct {
	set  atomic.Bool
	once sync.Once
	done chan struct{}
}

// NewSignal returns an unset signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Set raises the signal. It reports whether this call was the one that
// raised it; later calls are no-ops.
func (s *Signal) Set() bool {
	raised := false
	s.once.Do(func() {
		s.set.Store(true)
		close(s.done)
		raised = true
	})
	return raised
}

// IsSet reports whether the signal has been raised.
func (s *Signal) IsSet() bool {
	return s.set.Load()
}

// Done returns a channel that is closed when the signal is raised.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Context derives a context that is cancelled when the signal is raised or
// parent is done. The returned cancel func must be called to release it.
func (s *Signal) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
