package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"servicekit/internal/logger"
)

func init() {
	_ = logger.Init(logger.Config{Level: "disabled"})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Service.Name != "sample_service" {
		t.Errorf("expected Service.Name=sample_service, got %q", cfg.Service.Name)
	}
	if cfg.Service.AutoStart {
		t.Error("expected manual start by default")
	}
	if !cfg.Heartbeat.Enabled || cfg.Heartbeat.Interval != 10*time.Second {
		t.Errorf("unexpected heartbeat defaults: %+v", cfg.Heartbeat)
	}
	if cfg.Beacon.Enabled {
		t.Error("beacon should be disabled by default")
	}
	if cfg.Admin.WaitTimeoutSeconds != 20 {
		t.Errorf("expected WaitTimeoutSeconds=20, got %d", cfg.Admin.WaitTimeoutSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestParse_FullConfig(t *testing.T) {
	input := `{
		"Service": {
			"Name": "heartbeat_svc",
			"DisplayName": "Heartbeat Service",
			"Description": "Publishes liveness",
			"AutoStart": true
		},
		"Heartbeat": {"Enabled": false, "Interval": "30s"},
		"Beacon": {
			"Enabled": true,
			"Address": "10.20.30.40:6379",
			"Password": "secret",
			"DB": 3,
			"Interval": "2s",
			"TTL": "10s",
			"KeyPrefix": "plant:beacon"
		},
		"Admin": {"WaitTimeoutSeconds": 45}
	}`

	cfg, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := ServiceConfig{Name: "heartbeat_svc", DisplayName: "Heartbeat Service", Description: "Publishes liveness", AutoStart: true}
	if cfg.Service != want {
		t.Errorf("Service = %+v, want %+v", cfg.Service, want)
	}
	if cfg.Heartbeat.Enabled || cfg.Heartbeat.Interval != 30*time.Second {
		t.Errorf("unexpected heartbeat: %+v", cfg.Heartbeat)
	}
	b := cfg.Beacon
	if !b.Enabled || b.Address != "10.20.30.40:6379" || b.Password != "secret" || b.DB != 3 {
		t.Errorf("unexpected beacon connection settings: %+v", b)
	}
	if b.Interval != 2*time.Second || b.TTL != 10*time.Second {
		t.Errorf("unexpected beacon timing: %+v", b)
	}
	if b.Key("heartbeat_svc") != "plant:beacon:heartbeat_svc" {
		t.Errorf("Key() = %q", b.Key("heartbeat_svc"))
	}
	if cfg.Admin.WaitTimeoutSeconds != 45 {
		t.Errorf("expected WaitTimeoutSeconds=45, got %d", cfg.Admin.WaitTimeoutSeconds)
	}
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	def := DefaultConfig()
	if *cfg != *def {
		t.Errorf("empty config should equal defaults:\n got %+v\nwant %+v", cfg, def)
	}
}

func TestParse_AbsentBooleanKeepsDefault(t *testing.T) {
	cfg, err := Parse([]byte(`{"Heartbeat": {"Interval": "1m"}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !cfg.Heartbeat.Enabled {
		t.Error("Heartbeat.Enabled should keep its default when the key is absent")
	}
	if cfg.Heartbeat.Interval != time.Minute {
		t.Errorf("expected 1m interval, got %s", cfg.Heartbeat.Interval)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"invalid json", `{"Service": }`, "failed to parse config JSON"},
		{"bad duration", `{"Heartbeat": {"Interval": "often"}}`, "invalid Heartbeat.Interval duration"},
		{"bad ttl", `{"Beacon": {"TTL": "5 minutes"}}`, "invalid Beacon.TTL duration"},
		{"ttl shorter than interval", `{"Beacon": {"Enabled": true, "Interval": "10s", "TTL": "5s"}}`, "Beacon.TTL"},
		{"negative heartbeat", `{"Heartbeat": {"Interval": "-1s"}}`, "Heartbeat.Interval must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestMerge_EmptyValuesDoNotOverwrite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{
		Heartbeat: HeartbeatConfig{Enabled: true},
		Beacon:    BeaconConfig{Address: "redis:6379"},
	})

	if cfg.Service.Name != "sample_service" {
		t.Errorf("Service.Name overwritten: %q", cfg.Service.Name)
	}
	if cfg.Heartbeat.Interval != 10*time.Second {
		t.Errorf("Heartbeat.Interval overwritten: %s", cfg.Heartbeat.Interval)
	}
	if cfg.Beacon.Address != "redis:6379" {
		t.Errorf("Beacon.Address not merged: %q", cfg.Beacon.Address)
	}
	if cfg.Beacon.KeyPrefix != "servicekit:beacon" {
		t.Errorf("Beacon.KeyPrefix overwritten: %q", cfg.Beacon.KeyPrefix)
	}
	cfg.Merge(nil)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Service.Name = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty service name")
	}

	cfg = DefaultConfig()
	cfg.Beacon.Enabled = true
	cfg.Beacon.Address = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for beacon without address")
	}

	cfg = DefaultConfig()
	cfg.Admin.WaitTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero wait timeout")
	}
}

func TestParseLogging(t *testing.T) {
	lc, err := ParseLogging([]byte(`{"Level": "debug", "FilePath": "log/svc/svc.log", "Console": true, "Format": "fixed"}`))
	if err != nil {
		t.Fatalf("ParseLogging failed: %v", err)
	}
	if lc.Level != "debug" || lc.FilePath != "log/svc/svc.log" || !lc.Console || lc.Format != logger.FormatFixed {
		t.Errorf("unexpected logging config: %+v", lc)
	}
	def := logger.DefaultConfig()
	if lc.MaxSizeMB != def.MaxSizeMB || lc.MaxBackups != def.MaxBackups {
		t.Errorf("rotation defaults lost: %+v", lc)
	}

	if _, err := ParseLogging([]byte(`[]`)); err == nil {
		t.Error("expected error for non-object logging config")
	}
}

func TestLoadSplit(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "SampleService.json")
	logPath := filepath.Join(dir, "Logging.json")
	os.WriteFile(cfgPath, []byte(`{"Service": {"Name": "split_svc"}}`), 0644)
	os.WriteFile(logPath, []byte(`{"Level": "warn"}`), 0644)

	cfg, lc, err := LoadSplit(cfgPath, logPath)
	if err != nil {
		t.Fatalf("LoadSplit failed: %v", err)
	}
	if cfg.Service.Name != "split_svc" {
		t.Errorf("expected split_svc, got %q", cfg.Service.Name)
	}
	if lc.Level != "warn" {
		t.Errorf("expected warn, got %q", lc.Level)
	}

	if _, _, err := LoadSplit(filepath.Join(dir, "missing.json"), logPath); err == nil {
		t.Error("expected error for missing config file")
	}
	if _, _, err := LoadSplit(cfgPath, filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing logging file")
	}
}
