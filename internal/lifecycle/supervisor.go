package lifecycle

import (
	"errors"
	"fmt"
	"runtime/debug"

	"servicekit/internal/logger"
)

// Worker is one unit of business logic run by the service. Run must poll the
// signal and return promptly once it is set.
type Worker interface {
	Run(sig *Signal) error
	HandleError(err error)
}

// WorkerFactory builds a worker. It is invoked on the worker's own goroutine.
type WorkerFactory func() Worker

// Initializer is implemented by workers that need a setup step before Run.
// An Initialize error is passed to HandleError and Run is skipped.
type Initializer interface {
	Initialize() error
}

// ShutdownHook is implemented by workers that release resources once they
// are finished, whatever the outcome.
type ShutdownHook interface {
	ShuttingDown()
}

var errNilWorker = errors.New("factory returned nil worker")

// Supervisor runs one goroutine per worker factory and joins them all. It has
// no timeout: a worker that never observes the signal blocks Run forever.
type Supervisor struct{}

// NewSupervisor creates a supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

type workerSlot struct {
	done chan struct{}
	err  *WorkerError
}

// Run starts every factory and blocks until all workers have returned. Worker
// errors and panics are logged and returned; they never stop the join.
func (s *Supervisor) Run(factories []WorkerFactory, sig *Signal) []*WorkerError {
	log := logger.WithComponent("supervisor")
	log.Info().Int("workers", len(factories)).Msg("Starting workers")

	slots := make([]*workerSlot, len(factories))
	for i, factory := range factories {
		slot := &workerSlot{done: make(chan struct{})}
		slots[i] = slot
		go runWorker(i, factory, sig, slot)
	}

	var failures []*WorkerError
	for i, slot := range slots {
		<-slot.done
		if slot.err == nil {
			log.Info().Int("worker", i).Msg("Worker finished")
			continue
		}
		ev := log.Error().Int("worker", i).Str("name", slot.err.Worker)
		if slot.err.Panicked {
			ev = ev.Interface("panic", slot.err.Panic).Bytes("stack", slot.err.Stack)
		} else {
			ev = ev.Err(slot.err.Err)
		}
		ev.Msg("Worker failed")
		failures = append(failures, slot.err)
	}

	log.Info().Int("failed", len(failures)).Msg("All workers returned")
	return failures
}

func runWorker(index int, factory WorkerFactory, sig *Signal, slot *workerSlot) {
	defer close(slot.done)

	name := fmt.Sprintf("worker-%d", index)
	defer func() {
		if v := recover(); v != nil {
			slot.err = &WorkerError{
				Index:    index,
				Worker:   name,
				Panicked: true,
				Panic:    v,
				Stack:    debug.Stack(),
			}
		}
	}()

	w := factory()
	if w == nil {
		slot.err = &WorkerError{Index: index, Worker: name, Err: errNilWorker}
		return
	}
	name = workerName(w, index)

	if hook, ok := w.(ShutdownHook); ok {
		defer hook.ShuttingDown()
	}

	if initer, ok := w.(Initializer); ok {
		if err := initer.Initialize(); err != nil {
			slot.err = &WorkerError{Index: index, Worker: name, Err: fmt.Errorf("initialize: %w", err)}
			w.HandleError(err)
			return
		}
	}

	if err := w.Run(sig); err != nil {
		slot.err = &WorkerError{Index: index, Worker: name, Err: err}
		w.HandleError(err)
	}
}

func workerName(w Worker, index int) string {
	if n, ok := w.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T#%d", w, index)
}
