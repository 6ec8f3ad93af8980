package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"servicekit/internal/logger"
)

// rawConfig is used for JSON unmarshaling with duration strings. Booleans are
// pointers so an absent key keeps its default.
type rawConfig struct {
	Service   rawServiceConfig   `json:"Service"`
	Heartbeat rawHeartbeatConfig `json:"Heartbeat"`
	Beacon    rawBeaconConfig    `json:"Beacon"`
	Admin     AdminConfig        `json:"Admin"`
}

type rawServiceConfig struct {
	Name        string `json:"Name"`
	DisplayName string `json:"DisplayName"`
	Description string `json:"Description"`
	AutoStart   *bool  `json:"AutoStart"`
}

type rawHeartbeatConfig struct {
	Enabled  *bool  `json:"Enabled"`
	Interval string `json:"Interval"`
}

type rawBeaconConfig struct {
	Enabled   *bool  `json:"Enabled"`
	Address   string `json:"Address"`
	Password  string `json:"Password"`
	DB        int    `json:"DB"`
	Interval  string `json:"Interval"`
	TTL       string `json:"TTL"`
	KeyPrefix string `json:"KeyPrefix"`
}

type rawLoggingConfig struct {
	Level      string `json:"Level"`
	FilePath   string `json:"FilePath"`
	MaxSizeMB  int    `json:"MaxSizeMB"`
	MaxBackups int    `json:"MaxBackups"`
	MaxAgeDays int    `json:"MaxAgeDays"`
	Compress   bool   `json:"Compress"`
	Console    bool   `json:"Console"`
	Format     string `json:"Format"`
}

// Load reads configuration from the specified file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses and validates configuration from JSON bytes.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	cfg := DefaultConfig()
	parsed, err := convertRawConfig(&raw, cfg)
	if err != nil {
		return nil, err
	}

	cfg.Merge(parsed)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func convertRawConfig(raw *rawConfig, def *Config) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        raw.Service.Name,
			DisplayName: raw.Service.DisplayName,
			Description: raw.Service.Description,
			AutoStart:   boolOr(raw.Service.AutoStart, def.Service.AutoStart),
		},
		Heartbeat: HeartbeatConfig{
			Enabled: boolOr(raw.Heartbeat.Enabled, def.Heartbeat.Enabled),
		},
		Beacon: BeaconConfig{
			Enabled:   boolOr(raw.Beacon.Enabled, def.Beacon.Enabled),
			Address:   raw.Beacon.Address,
			Password:  raw.Beacon.Password,
			DB:        raw.Beacon.DB,
			KeyPrefix: raw.Beacon.KeyPrefix,
		},
		Admin: raw.Admin,
	}

	var err error
	if cfg.Heartbeat.Interval, err = parseDuration("Heartbeat.Interval", raw.Heartbeat.Interval); err != nil {
		return nil, err
	}
	if cfg.Beacon.Interval, err = parseDuration("Beacon.Interval", raw.Beacon.Interval); err != nil {
		return nil, err
	}
	if cfg.Beacon.TTL, err = parseDuration("Beacon.TTL", raw.Beacon.TTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", field, err)
	}
	return d, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func convertRawLogging(raw *rawLoggingConfig) logger.Config {
	return logger.Config{
		Level:      raw.Level,
		FilePath:   raw.FilePath,
		MaxSizeMB:  raw.MaxSizeMB,
		MaxBackups: raw.MaxBackups,
		MaxAgeDays: raw.MaxAgeDays,
		Compress:   raw.Compress,
		Console:    raw.Console,
		Format:     raw.Format,
	}
}

// LoadLogging reads logging configuration from the specified file path.
func LoadLogging(path string) (*logger.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logging config file: %w", err)
	}
	return ParseLogging(data)
}

// ParseLogging parses logging configuration from JSON bytes.
func ParseLogging(data []byte) (*logger.Config, error) {
	var raw rawLoggingConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse logging config JSON: %w", err)
	}

	def := logger.DefaultConfig()
	parsed := convertRawLogging(&raw)

	if parsed.Level != "" {
		def.Level = parsed.Level
	}
	if parsed.FilePath != "" {
		def.FilePath = parsed.FilePath
	}
	if parsed.MaxSizeMB != 0 {
		def.MaxSizeMB = parsed.MaxSizeMB
	}
	if parsed.MaxBackups != 0 {
		def.MaxBackups = parsed.MaxBackups
	}
	if parsed.MaxAgeDays != 0 {
		def.MaxAgeDays = parsed.MaxAgeDays
	}
	if parsed.Format != "" {
		def.Format = parsed.Format
	}
	def.Compress = parsed.Compress
	def.Console = parsed.Console

	return &def, nil
}

// LoadSplit loads the service configuration and the logging configuration
// from their separate files.
func LoadSplit(configPath, loggingPath string) (*Config, *logger.Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	lc, err := LoadLogging(loggingPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load logging config: %w", err)
	}

	return cfg, lc, nil
}
