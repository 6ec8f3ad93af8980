package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"servicekit/internal/lifecycle"
)

// DefaultWaitSeconds is how many polls the installer allows a transition.
const DefaultWaitSeconds = 20

// StatusQuerier is anything that can report a service's current status.
type StatusQuerier interface {
	Name() string
	QueryStatus() (lifecycle.Status, error)
}

// Waiter polls a service at a fixed interval until it reaches a state.
type Waiter struct {
	clock    clock.Clock
	interval time.Duration
}

// NewWaiter returns a waiter polling once per second on the wall clock.
func NewWaiter() *Waiter {
	return NewWaiterWithClock(clock.New(), time.Second)
}

// NewWaiterWithClock returns a waiter using c and interval.
func NewWaiterWithClock(c clock.Clock, interval time.Duration) *Waiter {
	return &Waiter{clock: c, interval: interval}
}

// WaitFor polls q at most timeoutSeconds times. Each iteration calls onTick,
// queries and returns nil as soon as desired is observed; otherwise it sleeps
// one interval. A query error is returned immediately. After the last miss it
// returns a Timeout error without sleeping again.
func (w *Waiter) WaitFor(ctx context.Context, q StatusQuerier, desired lifecycle.State, timeoutSeconds uint32, onTick func()) error {
	for i := uint32(0); i < timeoutSeconds; i++ {
		if onTick != nil {
			onTick()
		}

		st, err := q.QueryStatus()
		if err != nil {
			return err
		}
		if st.State == desired {
			return nil
		}

		if i+1 == timeoutSeconds {
			break
		}
		if err := w.sleep(ctx); err != nil {
			return err
		}
	}

	return newError(Timeout, q.Name(),
		fmt.Sprintf("service did not reach %s after %d polls", desired, timeoutSeconds), ErrTimeout)
}

func (w *Waiter) sleep(ctx context.Context) error {
	timer := w.clock.Timer(w.interval)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
