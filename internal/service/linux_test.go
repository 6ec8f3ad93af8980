//go:build !windows
// +build !windows

package service

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"go.uber.org/goleak"

	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
)

func init() {
	_ = logger.Init(logger.Config{Level: "disabled"})
}

type waitingWorker struct {
	started  chan struct{}
	returned atomic.Bool
}

func newWaitingWorker() *waitingWorker {
	return &waitingWorker{started: make(chan struct{})}
}

func (w *waitingWorker) Run(sig *lifecycle.Signal) error {
	close(w.started)
	<-sig.Done()
	w.returned.Store(true)
	return nil
}

func (w *waitingWorker) HandleError(error) {}

func newTestService(w *waitingWorker) (*LinuxService, *lifecycle.Host) {
	host := lifecycle.NewHost("sample_service", []lifecycle.WorkerFactory{
		func() lifecycle.Worker { return w },
	})
	return NewService(host, Options{}).(*LinuxService), host
}

func runAsync(s *LinuxService, ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
		return nil
	}
}

func TestLinuxService_StopsOnSignal(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newWaitingWorker()
	s, host := newTestService(w)
	errCh := runAsync(s, context.Background())

	<-w.started
	s.signals <- syscall.SIGTERM

	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if !w.returned.Load() {
		t.Error("worker should have observed the stop signal")
	}
	if !host.Signal().IsSet() {
		t.Error("host signal should be set")
	}
}

func TestLinuxService_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newWaitingWorker()
	s, _ := newTestService(w)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runAsync(s, ctx)

	<-w.started
	cancel()

	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if !w.returned.Load() {
		t.Error("worker should have returned")
	}
}

func TestLinuxService_StopBeforeRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newWaitingWorker()
	s, _ := newTestService(w)
	s.Stop()

	if err := waitErr(t, runAsync(s, context.Background())); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if !w.returned.Load() {
		t.Error("worker should return immediately when already signalled")
	}
}

func TestExitError(t *testing.T) {
	if err := exitError("sample_service", lifecycle.ExitSuccess); err != nil {
		t.Errorf("expected nil for success, got %v", err)
	}
	if err := exitError("sample_service", 1066); err == nil {
		t.Error("expected error for non-zero exit code")
	}
}
