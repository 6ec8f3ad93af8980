// Package worker holds the workers shipped with the sample service: a
// heartbeat that logs the process's own resource usage and a beacon that
// publishes liveness to Redis.
package worker

import (
	"context"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"

	"servicekit/internal/config"
	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

// Sample is one heartbeat reading.
type Sample struct {
	CPUPercent float64
	RSSBytes   uint64
	Goroutines int
	HostUptime time.Duration
}

// Sampler takes heartbeat readings.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

type processSampler struct {
	proc *process.Process
}

// NewProcessSampler returns a sampler for the current process.
func NewProcessSampler() (Sampler, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &processSampler{proc: p}, nil
}

func (s *processSampler) Sample(ctx context.Context) (Sample, error) {
	cpu, err := s.proc.CPUPercentWithContext(ctx)
	if err != nil {
		return Sample{}, err
	}
	mem, err := s.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return Sample{}, err
	}
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return Sample{}, err
	}
	return Sample{
		CPUPercent: cpu,
		RSSBytes:   mem.RSS,
		Goroutines: runtime.NumGoroutine(),
		HostUptime: time.Duration(uptime) * time.Second,
	}, nil
}

// Heartbeat logs a resource sample every interval until the stop signal is
// raised.
type Heartbeat struct {
	interval time.Duration
	clock    clock.Clock
	sampler  Sampler
	beats    atomic.Int64
}

// NewHeartbeat creates a heartbeat sampling the current process.
func NewHeartbeat(cfg config.HeartbeatConfig) *Heartbeat {
	return newHeartbeat(cfg.Interval, clock.New(), nil)
}

func newHeartbeat(interval time.Duration, clk clock.Clock, sampler Sampler) *Heartbeat {
	return &Heartbeat{
		interval: interval,
		clock:    clk,
		sampler:  sampler,
	}
}

// Name implements the supervisor's optional naming.
func (h *Heartbeat) Name() string { return "heartbeat" }

// Initialize resolves the process sampler.
func (h *Heartbeat) Initialize() error {
	if h.sampler != nil {
		return nil
	}
	s, err := NewProcessSampler()
	if err != nil {
		return err
	}
	h.sampler = s
	return nil
}

// Run samples immediately and then on every tick.
func (h *Heartbeat) Run(sig *lifecycle.Signal) error {
	log := logger.WithComponent("heartbeat")

	ctx, cancel := sig.Context(context.Background())
	defer cancel()

	ticker := h.clock.Ticker(h.interval)
	defer ticker.Stop()

	h.beat(ctx)
	for {
		select {
		case <-sig.Done():
			log.Info().Int64("beats", h.beats.Load()).Msg("Heartbeat stopped")
			return nil
		case <-ticker.C:
			h.beat(ctx)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context) {
	log := logger.WithComponent("heartbeat")

	s, err := h.sampler.Sample(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("Failed to sample process")
		}
		return
	}
	n := h.beats.Add(1)

	log.Info().
		Int64("beat", n).
		Float64("cpu_percent", s.CPUPercent).
		Uint64("rss_bytes", s.RSSBytes).
		Int("goroutines", s.Goroutines).
		Dur("host_uptime", s.HostUptime).
		Msg("Heartbeat")
}

// HandleError logs a failure reported by the supervisor.
func (h *Heartbeat) HandleError(err error) {
	log := logger.WithComponent("heartbeat")
	log.Error().Err(err).Msg("Heartbeat failed")
}
