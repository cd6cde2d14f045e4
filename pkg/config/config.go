package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the opsboard configuration file
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Probe   ProbeConfig   `yaml:"probe"`
	Gateway GatewayConfig `yaml:"gateway"`
	Poll    PollConfig    `yaml:"poll"`
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// ---- SERVER ----

type ServerConfig struct {
	Listen       string        `yaml:"listen"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Each status request spawns a probe process, so the endpoint is
	// throttled with a token bucket. Zero RatePerSecond disables it.
	RatePerSecond float64 `yaml:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst"`
}

// ---- PROBE ----

type ProbeConfig struct {
	Command []string      `yaml:"command"`
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// ---- GATEWAY ----

type GatewayConfig struct {
	URL       string        `yaml:"url"`
	TokenFile string        `yaml:"token_file"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ---- POLL ----

type PollConfig struct {
	URL             string        `yaml:"url"`
	ShortInterval   time.Duration `yaml:"short_interval"`
	LongInterval    time.Duration `yaml:"long_interval"`
	WorkingStart    int           `yaml:"working_start"`
	WorkingEnd      int           `yaml:"working_end"`
	AlignToInterval *bool         `yaml:"align_to_interval"`
	MaxRetries      *int          `yaml:"max_retries"`
	RetryBaseDelay  time.Duration `yaml:"retry_base_delay"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
}

// Align reports whether short-interval polls snap to wall-clock marks
func (p PollConfig) Align() bool {
	return p.AlignToInterval == nil || *p.AlignToInterval
}

// Retries returns the configured retry bound
func (p PollConfig) Retries() int {
	if p.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *p.MaxRetries
}

const (
	DefaultListen         = "127.0.0.1:3000"
	DefaultProbeTimeout   = 10 * time.Second
	DefaultGatewayURL     = "http://127.0.0.1:18789"
	DefaultGatewayToken   = "~/.openclaw/gateway.token"
	DefaultGatewayTimeout = 5 * time.Second
	DefaultShortInterval  = 15 * time.Minute
	DefaultLongInterval   = 3 * time.Hour
	DefaultWorkingStart   = 6
	DefaultWorkingEnd     = 23
	DefaultMaxRetries     = 3
	MaxRetriesLimit       = 16
	DefaultRetryBaseDelay = 1500 * time.Millisecond
	DefaultFetchTimeout   = 30 * time.Second
)

// DefaultProbeCommand is the health-check process run per status request
var DefaultProbeCommand = []string{"openclaw", "health", "--verbose"}

// Default returns a Config with every field at its default
func Default() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Load reads a YAML file, applies defaults and validates the result.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills unset fields with defaults and expands ~ in paths
func (c *Config) Normalize() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// must outlast the probe and gateway timeouts
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.RateBurst == 0 && c.Server.RatePerSecond > 0 {
		c.Server.RateBurst = int(c.Server.RatePerSecond) + 1
	}

	if len(c.Probe.Command) == 0 {
		c.Probe.Command = append([]string(nil), DefaultProbeCommand...)
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = DefaultProbeTimeout
	}
	c.Probe.Dir = expandHome(c.Probe.Dir)

	if c.Gateway.URL == "" {
		c.Gateway.URL = DefaultGatewayURL
	}
	if c.Gateway.TokenFile == "" {
		c.Gateway.TokenFile = DefaultGatewayToken
	}
	c.Gateway.TokenFile = expandHome(c.Gateway.TokenFile)
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = DefaultGatewayTimeout
	}

	if c.Poll.URL == "" {
		c.Poll.URL = "http://" + c.Server.Listen
	}
	if c.Poll.ShortInterval == 0 {
		c.Poll.ShortInterval = DefaultShortInterval
	}
	if c.Poll.LongInterval == 0 {
		c.Poll.LongInterval = DefaultLongInterval
	}
	if c.Poll.WorkingStart == 0 && c.Poll.WorkingEnd == 0 {
		c.Poll.WorkingStart = DefaultWorkingStart
		c.Poll.WorkingEnd = DefaultWorkingEnd
	}
	if c.Poll.RetryBaseDelay == 0 {
		c.Poll.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.Poll.FetchTimeout == 0 {
		c.Poll.FetchTimeout = DefaultFetchTimeout
	}
}

// Validate checks the normalized configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Probe.Timeout < 0 {
		errs = append(errs, errors.New("probe.timeout must not be negative"))
	}
	if c.Gateway.Timeout < 0 {
		errs = append(errs, errors.New("gateway.timeout must not be negative"))
	}
	if !strings.HasPrefix(c.Gateway.URL, "http://") && !strings.HasPrefix(c.Gateway.URL, "https://") {
		errs = append(errs, fmt.Errorf("gateway.url %q must be an http(s) URL", c.Gateway.URL))
	}
	if c.Poll.ShortInterval <= 0 || c.Poll.LongInterval <= 0 {
		errs = append(errs, errors.New("poll intervals must be positive"))
	}
	if c.Poll.WorkingStart < 0 || c.Poll.WorkingEnd > 24 || c.Poll.WorkingStart >= c.Poll.WorkingEnd {
		errs = append(errs, fmt.Errorf("poll working window %d-%d is invalid", c.Poll.WorkingStart, c.Poll.WorkingEnd))
	}
	if n := c.Poll.Retries(); n < 0 || n > MaxRetriesLimit {
		errs = append(errs, fmt.Errorf("poll.max_retries %d must be between 0 and %d", n, MaxRetriesLimit))
	}
	if c.Poll.RetryBaseDelay < 0 {
		errs = append(errs, errors.New("poll.retry_base_delay must not be negative"))
	}
	if c.Server.RatePerSecond < 0 {
		errs = append(errs, errors.New("server.rate_per_second must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
