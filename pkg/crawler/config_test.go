package crawler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// DefaultConfig Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if config.Workers != 5 {
		t.Errorf("Workers = %d, want 5", config.Workers)
	}
	if config.MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1", config.MaxDepth)
	}
	if config.Delay != 0 {
		t.Errorf("Delay = %v, want 0", config.Delay)
	}
	if config.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", config.Timeout)
	}
	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.UseBrowser {
		t.Error("UseBrowser should be false")
	}
	if config.RateLimit.RequestsPerSecond != 0 {
		t.Errorf("RateLimit.RequestsPerSecond = %v, want 0", config.RateLimit.RequestsPerSecond)
	}
	if !config.Browser.Headless {
		t.Error("Browser.Headless should be true")
	}
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no seeds", func(c *Config) { c.Seeds = nil }, "at least one seed"},
		{"bad scheme", func(c *Config) { c.Seeds = []string{"ftp://example.com"} }, "scheme must be http or https"},
		{"missing host", func(c *Config) { c.Seeds = []string{"https://"} }, "missing host"},
		{"unparseable", func(c *Config) { c.Seeds = []string{"http://[::1"} }, "invalid seed URL"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, "depth"},
		{"negative delay", func(c *Config) { c.Delay = -time.Second }, "delay"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, "retries"},
		{"negative rate", func(c *Config) { c.RateLimit.RequestsPerSecond = -1 }, "rate limit"},
		{"negative per-host rate", func(c *Config) { c.RateLimit.PerHost = -1 }, "rate limit"},
		{"depth zero allowed", func(c *Config) { c.MaxDepth = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Seeds = []string{"https://example.com"}
			tt.modify(config)

			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Clone Tests
// =============================================================================

func TestConfig_Clone(t *testing.T) {
	original := DefaultConfig()
	original.Seeds = []string{"https://example.com"}
	original.Headers = map[string]string{"X-Test": "1"}
	original.Browser.Headers = map[string]string{"X-Browser": "1"}
	original.Delay = 250 * time.Millisecond
	original.NoColor = true

	clone := original.Clone()

	if clone.Workers != original.Workers || clone.Seeds[0] != original.Seeds[0] {
		t.Errorf("Clone() = %+v, want copy of %+v", clone, original)
	}

	if clone.Delay != original.Delay || !clone.NoColor || clone.Browser.Timeout != original.Browser.Timeout {
		t.Errorf("Clone() = %+v, want every scalar copied", clone)
	}

	clone.Headers["X-Test"] = "2"
	clone.Browser.Headers["X-Browser"] = "2"
	clone.Seeds[0] = "https://other.com"
	if original.Headers["X-Test"] != "1" {
		t.Error("modifying clone headers affected original")
	}
	if original.Browser.Headers["X-Browser"] != "1" {
		t.Error("modifying clone browser headers affected original")
	}
	if original.Seeds[0] != "https://example.com" {
		t.Error("modifying clone seeds affected original")
	}
}

func TestConfig_Clone_NilMaps(t *testing.T) {
	clone := DefaultConfig().Clone()
	if clone.Headers != nil || clone.Seeds != nil {
		t.Errorf("Clone() = %+v, want nil seeds and headers preserved", clone)
	}
}

// =============================================================================
// File Tests
// =============================================================================

func TestConfig_SaveToFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	config := DefaultConfig()
	config.Seeds = []string{"https://example.com"}
	config.Workers = 7
	config.Delay = 2 * time.Second

	if err := config.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		t.Errorf("expected JSON output, got %q", string(data))
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Workers != 7 {
		t.Errorf("Workers = %d, want 7", loaded.Workers)
	}
	if loaded.Delay != 2*time.Second {
		t.Errorf("Delay = %v, want 2s", loaded.Delay)
	}
	if len(loaded.Seeds) != 1 || loaded.Seeds[0] != "https://example.com" {
		t.Errorf("Seeds = %v", loaded.Seeds)
	}
}

func TestConfig_SaveToFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	config := DefaultConfig()
	config.Seeds = []string{"https://a.com", "https://b.com"}
	config.MaxDepth = 3
	config.Output = "report.txt"

	if err := config.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", loaded.MaxDepth)
	}
	if loaded.Output != "report.txt" {
		t.Errorf("Output = %q, want report.txt", loaded.Output)
	}
	if len(loaded.Seeds) != 2 {
		t.Errorf("Seeds = %v, want 2 entries", loaded.Seeds)
	}
}

func TestLoadFromFile_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("seeds:\n  - https://example.com\nmax_depth: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", loaded.MaxDepth)
	}
	if loaded.Workers != 5 {
		t.Errorf("Workers = %d, want default 5", loaded.Workers)
	}
	if loaded.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", loaded.MaxRetries)
	}
}

func TestLoadFromFile_NonExistent(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("LoadFromFile() should fail for missing file")
	}
}

func TestLoadFromFile_InvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workers: [unclosed\n\t{"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() should fail for invalid content")
	}
}
