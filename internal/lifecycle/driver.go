package lifecycle

import (
	"servicekit/internal/logger"
)

// ExitSuccess is the exit code reported once the service has stopped cleanly.
const ExitSuccess uint32 = 0

// Host is the per-process service context: one signal, one translator and the
// ordered worker factories. It is built once at startup and handed to the
// platform glue.
type Host struct {
	name       string
	signal     *Signal
	translator *Translator
	factories  []WorkerFactory
	supervisor *Supervisor
}

// NewHost creates the service context for the named service.
func NewHost(name string, factories []WorkerFactory) *Host {
	sig := NewSignal()
	return &Host{
		name:       name,
		signal:     sig,
		translator: NewTranslator(sig),
		factories:  factories,
		supervisor: NewSupervisor(),
	}
}

// Name returns the service name.
func (h *Host) Name() string { return h.name }

// Signal returns the shared cancellation signal.
func (h *Host) Signal() *Signal { return h.signal }

// Translator returns the control event handler to register with the SCM.
func (h *Host) Translator() *Translator { return h.translator }

// Run drives one full lifecycle against handle and returns the exit code.
func (h *Host) Run(handle StatusHandle) uint32 {
	return NewDriver(NewReporter(handle), h.supervisor, h.factories, h.signal).Run()
}

// Driver walks the phase sequence StartPending, Running, StopPending,
// Stopped around one supervised run of the workers.
type Driver struct {
	reporter   *Reporter
	supervisor *Supervisor
	factories  []WorkerFactory
	signal     *Signal
}

// NewDriver wires a driver from its parts.
func NewDriver(reporter *Reporter, supervisor *Supervisor, factories []WorkerFactory, sig *Signal) *Driver {
	return &Driver{
		reporter:   reporter,
		supervisor: supervisor,
		factories:  factories,
		signal:     sig,
	}
}

// Run blocks until every worker has returned. A failed status push is
// logged and the sequence carries on toward Stopped.
func (d *Driver) Run() uint32 {
	log := logger.WithComponent("lifecycle")

	d.enter(StartPending)
	d.enter(Running)
	log.Info().Msg("Service running")

	failures := d.supervisor.Run(d.factories, d.signal)
	if len(failures) > 0 {
		log.Warn().Int("failed_workers", len(failures)).Msg("Some workers did not finish cleanly")
	}

	d.enter(StopPending)
	d.enter(Stopped)
	log.Info().Msg("All done, service stopped")
	return ExitSuccess
}

func (d *Driver) enter(state State) {
	if err := d.reporter.Enter(state); err != nil {
		log := logger.WithComponent("lifecycle")
		log.Error().Err(err).Str("state", state.String()).Msg("Failed to report service status")
	}
}
