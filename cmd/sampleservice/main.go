// Package main is the entry point for the sample service host.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"servicekit/internal/config"
	"servicekit/internal/lifecycle"
	"servicekit/internal/logger"
	"servicekit/internal/service"
	"servicekit/internal/worker"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const defaultServiceName = "sample_service"

func main() {
	var (
		configPath  = flag.String("config", "conf/SampleService/SampleService.json", "Path to service configuration file")
		loggingPath = flag.String("logging", "conf/SampleService/Logging.json", "Path to logging configuration file")
		console     = flag.Bool("console", false, "Run in the foreground instead of under the service manager")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("sampleservice %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	// The SCM starts services in the system directory; an absolute config
	// path means the install root is three levels above the file.
	if filepath.IsAbs(*configPath) {
		basePath := filepath.Dir(filepath.Dir(filepath.Dir(*configPath)))
		if err := os.Chdir(basePath); err != nil {
			fail(defaultServiceName, fmt.Errorf("failed to chdir to %s: %w", basePath, err))
		}
	}

	cfg, lc, err := config.LoadSplit(*configPath, *loggingPath)
	if err != nil {
		fail(defaultServiceName, err)
	}
	name := cfg.Service.Name

	host := lifecycle.NewHost(name, worker.Factories(cfg))
	svc := service.NewService(host, service.Options{Console: *console})
	if svc.IsService() && !*console {
		logger.SetServiceMode(true)
	}

	if err := logger.Init(*lc); err != nil {
		fail(name, err)
	}
	defer logger.Close()

	log := logger.WithComponent("main")
	log.Info().
		Str("version", version).
		Str("service", name).
		Str("config", *configPath).
		Str("logging", *loggingPath).
		Bool("heartbeat", cfg.Heartbeat.Enabled).
		Bool("beacon", cfg.Beacon.Enabled).
		Msg("Starting service host")

	cleanup := setupWatchers(*configPath, *loggingPath)
	defer cleanup()

	if err := svc.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("Service exited with error")
		service.ReportStartupError(name, err)
		logger.Close()
		os.Exit(1)
	}

	log.Info().Msg("Service host stopped")
}

// fail reports an error that happened before the service could start and
// exits.
func fail(name string, err error) {
	service.ReportStartupError(name, err)
	service.WriteStartupErrorFile(filepath.Join("log", name), name, err)
	fmt.Fprintf(os.Stderr, "Failed to start %s: %v\n", name, err)
	os.Exit(1)
}

// setupWatchers starts hot reload for Logging.json and change notices for the
// service config. Worker settings are fixed once the host starts, so a config
// change is only logged. Returns a function that stops every started watcher.
func setupWatchers(configPath, loggingPath string) func() {
	log := logger.WithComponent("main")
	var mu sync.Mutex
	var cleanups []func()

	start := func(name string, w *config.FileWatcher, err error) {
		if err != nil {
			log.Warn().Err(err).Str("watcher", name).Msg("Failed to create watcher, hot reload disabled")
			return
		}
		if err := w.Start(); err != nil {
			log.Warn().Err(err).Str("watcher", name).Msg("Failed to start watcher")
			return
		}
		cleanups = append(cleanups, func() {
			if err := w.Stop(); err != nil {
				log.Error().Err(err).Str("watcher", name).Msg("Error stopping watcher")
			}
		})
	}

	lw, err := config.NewLoggingWatcher(loggingPath, func(lc *logger.Config) {
		mu.Lock()
		defer mu.Unlock()
		// Re-fetch so the record goes through the reloaded writers.
		l := logger.WithComponent("main")
		if err := logger.Init(*lc); err != nil {
			l.Error().Err(err).Msg("Failed to update logging configuration")
			return
		}
		l = logger.WithComponent("main")
		l.Info().Str("level", lc.Level).Msg("Logging configuration updated")
	})
	start("logging", lw, err)

	cw, err := config.NewWatcher(configPath, func(cfg *config.Config) {
		l := logger.WithComponent("main")
		l.Warn().
			Str("service", cfg.Service.Name).
			Msg("Service configuration changed, restart the service to apply it")
	})
	start("config", cw, err)

	return func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
}
