package crawler

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/PentesterFlow/ParamCrawler/internal/browser"
	"gopkg.in/yaml.v3"
)

// Config holds all crawler configuration.
type Config struct {
	// Seed URLs; each gets its own traversal run
	Seeds []string `json:"seeds" yaml:"seeds"`

	// Number of concurrent traversal runs
	Workers int `json:"workers" yaml:"workers"`

	// Link hops followed from each seed (0 = seed only)
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Politeness delay after every processed page
	Delay time.Duration `json:"delay" yaml:"delay"`

	// Per-request timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// HTTP attempts per URL, including the first
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Render pages in a headless browser instead of plain HTTP
	UseBrowser bool `json:"use_browser" yaml:"use_browser"`

	// Browser configuration
	Browser browser.Config `json:"browser" yaml:"browser"`

	// Rate limiting
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`

	// Custom headers to include in all requests
	Headers map[string]string `json:"headers" yaml:"headers"`

	// Report file that results are appended to
	Output string `json:"output" yaml:"output"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`

	// Disable coloured console output
	NoColor bool `json:"no_color" yaml:"no_color"`
}

// RateLimitConfig paces outgoing HTTP requests.
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"` // 0 = unlimited
	Burst             int     `json:"burst" yaml:"burst"`
	PerHost           float64 `json:"per_host" yaml:"per_host"` // Extra per-host limit, 0 = none
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:    5,
		MaxDepth:   1,
		Delay:      0,
		Timeout:    15 * time.Second,
		MaxRetries: 3,
		Browser:    browser.DefaultConfig(),
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             1,
		},
	}
}

// LoadFromFile loads configuration from a file (JSON or YAML).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		config = DefaultConfig()
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return fmt.Errorf("at least one seed URL is required")
	}

	for _, seed := range c.Seeds {
		if err := validateSeed(seed); err != nil {
			return err
		}
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth cannot be negative")
	}

	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("retries must be at least 1")
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.PerHost < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}

	return nil
}

func validateSeed(seed string) error {
	u, err := url.Parse(seed)
	if err != nil {
		return fmt.Errorf("invalid seed URL %q: %w", seed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid seed URL %q: scheme must be http or https", seed)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid seed URL %q: missing host", seed)
	}
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Seeds = slices.Clone(c.Seeds)
	clone.Headers = maps.Clone(c.Headers)
	clone.Browser.Headers = maps.Clone(c.Browser.Headers)
	return &clone
}
