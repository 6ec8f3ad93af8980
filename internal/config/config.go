// Package config provides configuration management for hosted services.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Service   ServiceConfig   `json:"Service"`
	Heartbeat HeartbeatConfig `json:"Heartbeat"`
	Beacon    BeaconConfig    `json:"Beacon"`
	Admin     AdminConfig     `json:"Admin"`
}

// ServiceConfig describes the service registration.
type ServiceConfig struct {
	Name        string `json:"Name"`
	DisplayName string `json:"DisplayName"`
	Description string `json:"Description"`
	AutoStart   bool   `json:"AutoStart"`
}

// HeartbeatConfig contains settings for the heartbeat worker.
type HeartbeatConfig struct {
	Enabled  bool          `json:"Enabled"`
	Interval time.Duration `json:"Interval"`
}

// BeaconConfig contains settings for the Redis liveness beacon.
type BeaconConfig struct {
	Enabled   bool          `json:"Enabled"`
	Address   string        `json:"Address"`
	Password  string        `json:"Password"`
	DB        int           `json:"DB"`
	Interval  time.Duration `json:"Interval"`
	TTL       time.Duration `json:"TTL"`
	KeyPrefix string        `json:"KeyPrefix"`
}

// Key returns the Redis key the beacon writes for service.
func (b BeaconConfig) Key(service string) string {
	return b.KeyPrefix + ":" + service
}

// AdminConfig contains settings used by the installer.
type AdminConfig struct {
	WaitTimeoutSeconds uint32 `json:"WaitTimeoutSeconds"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "sample_service",
			DisplayName: "Sample Service",
			Description: "Sample service hosted by servicekit",
		},
		Heartbeat: HeartbeatConfig{
			Enabled:  true,
			Interval: 10 * time.Second,
		},
		Beacon: BeaconConfig{
			Address:   "localhost:6379",
			Interval:  5 * time.Second,
			TTL:       30 * time.Second,
			KeyPrefix: "servicekit:beacon",
		},
		Admin: AdminConfig{
			WaitTimeoutSeconds: 20,
		},
	}
}

// Merge applies non-zero values from other to this config. Booleans are
// always taken from other.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Service.Name != "" {
		c.Service.Name = other.Service.Name
	}
	if other.Service.DisplayName != "" {
		c.Service.DisplayName = other.Service.DisplayName
	}
	if other.Service.Description != "" {
		c.Service.Description = other.Service.Description
	}
	c.Service.AutoStart = other.Service.AutoStart

	c.Heartbeat.Enabled = other.Heartbeat.Enabled
	if other.Heartbeat.Interval != 0 {
		c.Heartbeat.Interval = other.Heartbeat.Interval
	}

	c.Beacon.Enabled = other.Beacon.Enabled
	if other.Beacon.Address != "" {
		c.Beacon.Address = other.Beacon.Address
	}
	if other.Beacon.Password != "" {
		c.Beacon.Password = other.Beacon.Password
	}
	if other.Beacon.DB != 0 {
		c.Beacon.DB = other.Beacon.DB
	}
	if other.Beacon.Interval != 0 {
		c.Beacon.Interval = other.Beacon.Interval
	}
	if other.Beacon.TTL != 0 {
		c.Beacon.TTL = other.Beacon.TTL
	}
	if other.Beacon.KeyPrefix != "" {
		c.Beacon.KeyPrefix = other.Beacon.KeyPrefix
	}

	if other.Admin.WaitTimeoutSeconds != 0 {
		c.Admin.WaitTimeoutSeconds = other.Admin.WaitTimeoutSeconds
	}
}

// Validate checks the settings that would otherwise fail at runtime.
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("Service.Name must not be empty")
	}
	if c.Heartbeat.Enabled && c.Heartbeat.Interval <= 0 {
		return fmt.Errorf("Heartbeat.Interval must be positive, got %s", c.Heartbeat.Interval)
	}
	if c.Beacon.Enabled {
		if c.Beacon.Address == "" {
			return fmt.Errorf("Beacon.Address must not be empty when the beacon is enabled")
		}
		if c.Beacon.Interval <= 0 {
			return fmt.Errorf("Beacon.Interval must be positive, got %s", c.Beacon.Interval)
		}
		if c.Beacon.TTL < c.Beacon.Interval {
			return fmt.Errorf("Beacon.TTL (%s) must not be shorter than Beacon.Interval (%s)", c.Beacon.TTL, c.Beacon.Interval)
		}
	}
	if c.Admin.WaitTimeoutSeconds == 0 {
		return fmt.Errorf("Admin.WaitTimeoutSeconds must be positive")
	}
	return nil
}

// GetHostname returns the system hostname, or "unknown".
func GetHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
