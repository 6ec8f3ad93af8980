package worker

import (
	"servicekit/internal/config"
	"servicekit/internal/lifecycle"
)

// Factories returns the worker factories enabled in cfg, heartbeat first.
// Settings are captured now so a later config reload does not affect workers
// that have not been built yet.
func Factories(cfg *config.Config) []lifecycle.WorkerFactory {
	var factories []lifecycle.WorkerFactory

	if cfg.Heartbeat.Enabled {
		hb := cfg.Heartbeat
		factories = append(factories, func() lifecycle.Worker {
			return NewHeartbeat(hb)
		})
	}
	if cfg.Beacon.Enabled {
		name, bc := cfg.Service.Name, cfg.Beacon
		factories = append(factories, func() lifecycle.Worker {
			return NewBeacon(name, bc)
		})
	}

	return factories
}
