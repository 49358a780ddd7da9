package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.MaxDepth != DefaultMaxDepth {
		t.Errorf("max_depth = %d, want %d", cfg.Limits.MaxDepth, DefaultMaxDepth)
	}
	if cfg.Limits.MaxSteps != DefaultMaxSteps {
		t.Errorf("max_steps = %d, want %d", cfg.Limits.MaxSteps, DefaultMaxSteps)
	}
	if cfg.Limits.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", cfg.Limits.Timeout, DefaultTimeout)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("driver = %q, want %q", cfg.Store.Driver, DriverSQLite)
	}
	if cfg.Store.DSN != DefaultDSN {
		t.Errorf("dsn = %q, want %q", cfg.Store.DSN, DefaultDSN)
	}
}

func TestParseConfig_Full(t *testing.T) {
	yaml := `
limits:
  max_depth: 200
  max_steps: -1
  timeout: 5s
store:
  driver: mysql
  dsn: user:pw@tcp(localhost:3306)/newmap
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.MaxDepth != 200 {
		t.Errorf("max_depth = %d, want 200", cfg.Limits.MaxDepth)
	}
	if cfg.Limits.MaxSteps != 0 {
		t.Errorf("max_steps = %d, want 0 (unlimited)", cfg.Limits.MaxSteps)
	}
	if cfg.Limits.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Limits.Timeout)
	}
	if cfg.Store.Driver != DriverMySQL {
		t.Errorf("driver = %q, want %q", cfg.Store.Driver, DriverMySQL)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative depth", "limits: {max_depth: -3}", "max_depth"},
		{"negative timeout", "limits: {timeout: -1s}", "timeout"},
		{"unknown driver", "store: {driver: postgres}", "not supported"},
		{"mysql without dsn", "store: {driver: mysql}", "dsn is required"},
		{"bad yaml", "limits: [", "parsing test.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newmap.yaml")
	if err := os.WriteFile(path, []byte("limits:\n  max_steps: 50\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limits.MaxSteps != 50 {
		t.Errorf("max_steps = %d, want 50", cfg.Limits.MaxSteps)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
