package api

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimezone is the zone measurements are reported in. Ping observation
// times are converted to it, and hour-of-day/day-of-week groupings use it.
const DefaultTimezone = "America/Edmonton"

// Config holds everything needed to talk to the measurement API. The zero
// value is not useful; start from DefaultConfig.
type Config struct {
	BaseURL     string        `yaml:"base_url"`
	Timezone    string        `yaml:"timezone"`
	Username    string        `yaml:"username"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:5000",
		Timezone:    DefaultTimezone,
		HTTPTimeout: 120 * time.Second,
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error; the defaults are returned unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv applies NANOPI_API_* environment overrides. Call after loading any
// .env file so both sources are visible.
func (c Config) FromEnv() Config {
	if v := os.Getenv("NANOPI_API_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("NANOPI_API_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("NANOPI_API_USERNAME"); v != "" {
		c.Username = v
	}
	return c
}

// Location resolves the configured report timezone.
func (c Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

func (c Config) NanopiURL() string  { return c.BaseURL + "/nanopi/" }
func (c Config) IperfURL() string   { return c.BaseURL + "/iperf3/" }
func (c Config) JitterURL() string  { return c.BaseURL + "/jitter/" }
func (c Config) LatencyURL() string { return c.BaseURL + "/sockperf/" }
func (c Config) PingURL() string    { return c.BaseURL + "/ping/" }
