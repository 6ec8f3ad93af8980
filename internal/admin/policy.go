package admin

import (
	"context"
	"fmt"

	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

// StepKind is one action taken before a delete.
type StepKind int

const (
	// StepWait polls until the service reaches Target.
	StepWait StepKind = iota + 1
	// StepStop sends a stop control.
	StepStop
)

// Step is one entry of an uninstall plan.
type Step struct {
	Kind   StepKind
	Target lifecycle.State // only for StepWait
}

func (s Step) String() string {
	if s.Kind == StepStop {
		return "stop"
	}
	return "wait for " + s.Target.String()
}

var (
	waitRunning = Step{Kind: StepWait, Target: lifecycle.Running}
	waitStopped = Step{Kind: StepWait, Target: lifecycle.Stopped}
	waitPaused  = Step{Kind: StepWait, Target: lifecycle.Paused}
	stop        = Step{Kind: StepStop}
)

// uninstallPolicy is the transition table applied before a delete so the SCM
// never sees a delete against a service mid-transition. Paused is left out on
// purpose: there is no agreed safe sequence for it.
var uninstallPolicy = map[lifecycle.State][]Step{
	lifecycle.Stopped:         nil,
	lifecycle.StartPending:    {waitRunning, stop, waitStopped},
	lifecycle.StopPending:     {waitStopped},
	lifecycle.Running:         {stop, waitStopped},
	lifecycle.ContinuePending: {waitRunning, stop, waitStopped},
	lifecycle.PausePending:    {waitPaused},
}

// Plan returns the steps required before a service discovered in state can
// be deleted.
func Plan(state lifecycle.State) ([]Step, error) {
	steps, ok := uninstallPolicy[state]
	if !ok {
		return nil, &UnsupportedStateError{State: state}
	}
	out := make([]Step, len(steps))
	copy(out, steps)
	return out, nil
}

// Controller is the subset of Context the plan executor needs.
type Controller interface {
	StatusQuerier
	Stop() error
}

// Execute runs steps in order and stops at the first failure.
func Execute(ctx context.Context, c Controller, w *Waiter, steps []Step, timeoutSeconds uint32, onTick func()) error {
	log := logger.WithComponent("admin")
	for _, step := range steps {
		log.Info().Str("service", c.Name()).Str("step", step.String()).Msg("Executing step")
		switch step.Kind {
		case StepStop:
			if err := c.Stop(); err != nil {
				return err
			}
		case StepWait:
			if err := w.WaitFor(ctx, c, step.Target, timeoutSeconds, onTick); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown step kind %d", step.Kind)
		}
	}
	return nil
}

// StopAndWait stops the service and waits for Stopped.
func StopAndWait(ctx context.Context, c Controller, w *Waiter, timeoutSeconds uint32, onTick func()) error {
	return Execute(ctx, c, w, []Step{stop, waitStopped}, timeoutSeconds, onTick)
}

// StartAndWait starts the service and waits for Running.
func StartAndWait(ctx context.Context, c *Context, w *Waiter, timeoutSeconds uint32, onTick func()) error {
	if err := c.Start(); err != nil {
		return err
	}
	return w.WaitFor(ctx, c, lifecycle.Running, timeoutSeconds, onTick)
}

// Uninstall brings the service to a deletable state according to the
// uninstall policy and then deletes it. Nothing is deleted if any step fails.
func Uninstall(ctx context.Context, c *Context, w *Waiter, timeoutSeconds uint32, onTick func()) error {
	log := logger.WithComponent("admin")

	st, err := c.QueryStatus()
	if err != nil {
		return err
	}
	log.Info().Str("service", c.Name()).Str("state", st.State.String()).Msg("Current service state")

	steps, err := Plan(st.State)
	if err != nil {
		return err
	}
	if err := Execute(ctx, c, w, steps, timeoutSeconds, onTick); err != nil {
		return err
	}

	return c.Delete()
}
