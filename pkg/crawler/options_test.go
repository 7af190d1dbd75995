package crawler

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/PentesterFlow/ParamCrawler/internal/browser"
	"github.com/PentesterFlow/ParamCrawler/internal/fetch"
	"github.com/PentesterFlow/ParamCrawler/internal/logger"
	"github.com/PentesterFlow/ParamCrawler/internal/metrics"
)

// Helper to create a minimal crawler for option testing
func newTestCrawler() *Crawler {
	return &Crawler{
		config: DefaultConfig(),
	}
}

// =============================================================================
// Seed Tests
// =============================================================================

func TestWithSeeds(t *testing.T) {
	c := newTestCrawler()
	if err := WithSeeds("https://a.com", "https://b.com")(c); err != nil {
		t.Fatalf("WithSeeds() error = %v", err)
	}
	if err := WithSeeds("https://a.com")(c); err != nil {
		t.Fatalf("WithSeeds() error = %v", err)
	}

	if len(c.config.Seeds) != 3 {
		t.Errorf("Seeds = %v, want 3 entries with duplicates kept", c.config.Seeds)
	}
}

// =============================================================================
// Numeric Option Tests
// =============================================================================

func TestWithWorkers(t *testing.T) {
	tests := []struct {
		name   string
		input  int
		expect int
	}{
		{"normal value", 10, 10},
		{"zero", 0, 1},
		{"negative", -5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCrawler()
			if err := WithWorkers(tt.input)(c); err != nil {
				t.Fatalf("WithWorkers() error = %v", err)
			}
			if c.config.Workers != tt.expect {
				t.Errorf("Workers = %d, want %d", c.config.Workers, tt.expect)
			}
		})
	}
}

func TestWithMaxDepth(t *testing.T) {
	tests := []struct {
		name   string
		input  int
		expect int
	}{
		{"normal value", 3, 3},
		{"zero", 0, 0},
		{"negative", -2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCrawler()
			if err := WithMaxDepth(tt.input)(c); err != nil {
				t.Fatalf("WithMaxDepth() error = %v", err)
			}
			if c.config.MaxDepth != tt.expect {
				t.Errorf("MaxDepth = %d, want %d", c.config.MaxDepth, tt.expect)
			}
		})
	}
}

func TestWithRetries(t *testing.T) {
	tests := []struct {
		input  int
		expect int
	}{
		{5, 5},
		{1, 1},
		{0, 1},
	}

	for _, tt := range tests {
		c := newTestCrawler()
		if err := WithRetries(tt.input)(c); err != nil {
			t.Fatalf("WithRetries() error = %v", err)
		}
		if c.config.MaxRetries != tt.expect {
			t.Errorf("WithRetries(%d): MaxRetries = %d, want %d", tt.input, c.config.MaxRetries, tt.expect)
		}
	}
}

func TestWithDelay(t *testing.T) {
	c := newTestCrawler()
	WithDelay(1500 * time.Millisecond)(c)
	if c.config.Delay != 1500*time.Millisecond {
		t.Errorf("Delay = %v, want 1.5s", c.config.Delay)
	}

	WithDelay(-time.Second)(c)
	if c.config.Delay != 0 {
		t.Errorf("Delay = %v, want 0 for negative input", c.config.Delay)
	}
}

func TestWithTimeout(t *testing.T) {
	c := newTestCrawler()
	WithTimeout(45 * time.Second)(c)
	if c.config.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", c.config.Timeout)
	}
}

func TestWithRateLimit(t *testing.T) {
	c := newTestCrawler()
	WithRateLimit(2.5, 4)(c)
	if c.config.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", c.config.RateLimit.RequestsPerSecond)
	}
	if c.config.RateLimit.Burst != 4 {
		t.Errorf("Burst = %d, want 4", c.config.RateLimit.Burst)
	}
}

// =============================================================================
// Browser Option Tests
// =============================================================================

func TestWithBrowser(t *testing.T) {
	c := newTestCrawler()
	WithBrowser(true)(c)
	if !c.config.UseBrowser {
		t.Error("UseBrowser should be true")
	}
}

func TestWithBrowserConfig(t *testing.T) {
	c := newTestCrawler()
	bc := browser.DefaultConfig()
	bc.Bin = "/usr/bin/chromium"
	WithBrowserConfig(bc)(c)

	if c.config.Browser.Bin != "/usr/bin/chromium" {
		t.Errorf("Browser.Bin = %q", c.config.Browser.Bin)
	}
}

// =============================================================================
// Header and Output Option Tests
// =============================================================================

func TestWithCustomHeaders_Merge(t *testing.T) {
	c := newTestCrawler()
	WithCustomHeaders(map[string]string{"X-A": "1"})(c)
	WithCustomHeaders(map[string]string{"X-B": "2", "X-A": "3"})(c)

	if len(c.config.Headers) != 2 {
		t.Errorf("Headers = %v, want 2 entries", c.config.Headers)
	}
	if c.config.Headers["X-A"] != "3" {
		t.Errorf("X-A = %q, want 3", c.config.Headers["X-A"])
	}
}

func TestWithOutputFile(t *testing.T) {
	c := newTestCrawler()
	WithOutputFile("params.txt")(c)
	if c.config.Output != "params.txt" {
		t.Errorf("Output = %q, want params.txt", c.config.Output)
	}
}

func TestWithOutput(t *testing.T) {
	c := newTestCrawler()
	var buf bytes.Buffer
	WithOutput(&buf)(c)
	if c.outputWriter != &buf {
		t.Error("outputWriter not set")
	}
}

func TestWithColor(t *testing.T) {
	c := newTestCrawler()
	if c.useColor() {
		t.Error("useColor() should be false for a non-stdout writer")
	}

	c.outputWriter = &bytes.Buffer{}
	WithColor(true)(c)
	if !c.useColor() {
		t.Error("useColor() should honour WithColor(true)")
	}
}

func TestWithVerboseDebug(t *testing.T) {
	c := newTestCrawler()
	WithVerbose(true)(c)
	WithDebug(true)(c)
	if !c.config.Verbose || !c.config.Debug {
		t.Errorf("Verbose = %v, Debug = %v, want both true", c.config.Verbose, c.config.Debug)
	}
}

// =============================================================================
// Component Option Tests
// =============================================================================

func TestWithConfig(t *testing.T) {
	c := newTestCrawler()
	config := DefaultConfig()
	config.Workers = 9

	if err := WithConfig(config)(c); err != nil {
		t.Fatalf("WithConfig() error = %v", err)
	}
	if c.config.Workers != 9 {
		t.Errorf("Workers = %d, want 9", c.config.Workers)
	}

	WithSeeds("https://example.com")(c)
	if len(config.Seeds) != 0 {
		t.Errorf("caller config Seeds = %v, later options should not touch it", config.Seeds)
	}
}

func TestWithConfig_Nil(t *testing.T) {
	c := newTestCrawler()
	if err := WithConfig(nil)(c); err == nil {
		t.Error("WithConfig(nil) should return an error")
	}
}

func TestWithLoggerAndMetrics(t *testing.T) {
	c := newTestCrawler()
	l := logger.Nop()
	m := metrics.New()
	WithLogger(l)(c)
	WithMetrics(m)(c)

	if c.logger != l {
		t.Error("logger not set")
	}
	if c.metrics != m {
		t.Error("metrics not set")
	}
}

func TestWithFetcherAndSleeper(t *testing.T) {
	c := newTestCrawler()
	f := siteFetcher{}
	slept := false
	WithFetcher(f)(c)
	WithSleeper(func(ctx context.Context, d time.Duration) error {
		slept = true
		return nil
	})(c)

	if _, ok := c.fetcher.(siteFetcher); !ok {
		t.Errorf("fetcher = %T, want siteFetcher", c.fetcher)
	}
	c.sleeper(context.Background(), time.Second)
	if !slept {
		t.Error("sleeper not set")
	}
}

var _ fetch.Fetcher = siteFetcher{}
