//go:build windows
// +build windows

package service

import (
	"fmt"

	"golang.org/x/sys/windows/svc/eventlog"
)

// ReportStartupError writes a startup failure to the Application event log
// under the service's own source, so "sc start" failures are visible in Event
// Viewer before the logger exists.
func ReportStartupError(serviceName string, err error) {
	// Idempotent when the installer already registered the source.
	_ = eventlog.InstallAsEventCreate(serviceName, eventlog.Error|eventlog.Warning|eventlog.Info)

	elog, openErr := eventlog.Open(serviceName)
	if openErr != nil {
		return
	}
	defer elog.Close()

	elog.Error(1, fmt.Sprintf("%s failed to start: %v", serviceName, err))
}
