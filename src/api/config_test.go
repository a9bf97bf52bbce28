package api

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:5000" {
		t.Fatalf("unexpected default base url %q", cfg.BaseURL)
	}
	if cfg.Timezone != DefaultTimezone {
		t.Fatalf("unexpected default timezone %q", cfg.Timezone)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visualize.yaml")
	body := "base_url: https://measure.example.org\ntimezone: UTC\nusername: carol\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://measure.example.org" || cfg.Timezone != "UTC" || cfg.Username != "carol" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.IperfURL() != "https://measure.example.org/iperf3/" {
		t.Fatalf("unexpected iperf url %q", cfg.IperfURL())
	}
	if cfg.LatencyURL() != "https://measure.example.org/sockperf/" {
		t.Fatalf("unexpected latency url %q", cfg.LatencyURL())
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("NANOPI_API_BASE_URL", "http://env.example.org")
	t.Setenv("NANOPI_API_USERNAME", "dave")
	cfg := DefaultConfig().FromEnv()
	if cfg.BaseURL != "http://env.example.org" {
		t.Fatalf("env base url not applied: %q", cfg.BaseURL)
	}
	if cfg.Username != "dave" {
		t.Fatalf("env username not applied: %q", cfg.Username)
	}
	// untouched fields keep their defaults
	if cfg.Timezone != DefaultTimezone {
		t.Fatalf("timezone should be default, got %q", cfg.Timezone)
	}
}

func TestConfigLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != DefaultTimezone {
		t.Fatalf("unexpected location %s", loc)
	}
	cfg.Timezone = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Fatal("expected error for bogus timezone")
	}
}
