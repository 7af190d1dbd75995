// Package browser provides a rendered-page fetch strategy via headless Chrome.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/PentesterFlow/ParamCrawler/internal/errors"
	"github.com/PentesterFlow/ParamCrawler/internal/fetch"
	"github.com/PentesterFlow/ParamCrawler/internal/logger"
	"github.com/PentesterFlow/ParamCrawler/internal/metrics"
)

// Config defines browser configuration.
type Config struct {
	Headless          bool              `json:"headless" yaml:"headless"`
	Timeout           time.Duration     `json:"timeout" yaml:"timeout"`
	ViewportWidth     int               `json:"viewport_width" yaml:"viewport_width"`
	ViewportHeight    int               `json:"viewport_height" yaml:"viewport_height"`
	IgnoreHTTPSErrors bool              `json:"ignore_https_errors" yaml:"ignore_https_errors"`
	Bin               string            `json:"bin" yaml:"bin"` // Chrome binary; empty lets the launcher find or download one
	Headers           map[string]string `json:"headers" yaml:"headers"`
}

// DefaultConfig returns default browser configuration.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		Timeout:           15 * time.Second,
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		IgnoreHTTPSErrors: true,
	}
}

// Session is one live browser, valid for a single fetch.
type Session interface {
	// Render navigates to url, waits for load and returns the final URL
	// and the rendered document markup.
	Render(ctx context.Context, url string, req RenderRequest) (finalURL, markup string, err error)
	// Close releases the page, the browser and the launcher.
	Close() error
}

// RenderRequest carries per-navigation overrides.
type RenderRequest struct {
	UserAgent string
	Headers   map[string]string
}

// SessionFactory acquires a fresh browser session.
type SessionFactory func(ctx context.Context, config Config) (Session, error)

// Fetcher fetches pages through a freshly launched browser per call.
// It makes a single attempt and never retries.
type Fetcher struct {
	config    Config
	open      SessionFactory
	userAgent fetch.UserAgentPicker
	metrics   *metrics.Collector
	log       *logger.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithSessionFactory replaces how browser sessions are acquired.
func WithSessionFactory(open SessionFactory) Option {
	return func(f *Fetcher) { f.open = open }
}

// WithUserAgentPicker replaces the User-Agent selection.
func WithUserAgentPicker(p fetch.UserAgentPicker) Option {
	return func(f *Fetcher) { f.userAgent = p }
}

// WithMetrics records fetches into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(f *Fetcher) { f.metrics = c }
}

// WithLogger sets the fetcher logger.
func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// NewFetcher creates a rendered-browser fetcher backed by Rod.
func NewFetcher(config Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		config:    config,
		open:      LaunchRod,
		userAgent: fetch.RandomUserAgent,
		metrics:   metrics.New(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch renders target in a new browser session.
//
// Failing to acquire a session is returned as an error. Navigation and
// markup failures are reported as a browser-kind failure outcome. The
// session is released on every exit path.
func (f *Fetcher) Fetch(ctx context.Context, target string) (fetch.Outcome, error) {
	session, err := f.open(ctx, f.config)
	if err != nil {
		return fetch.Outcome{}, fmt.Errorf("failed to acquire browser session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			f.log.WarnEvent(cerr, target, "browser_close")
		}
	}()

	f.metrics.RecordRequest()
	start := time.Now()

	finalURL, markup, err := session.Render(ctx, target, RenderRequest{
		UserAgent: f.userAgent(),
		Headers:   f.config.Headers,
	})
	f.metrics.RecordResponseTime(time.Since(start))

	if err != nil {
		crawlErr := errors.NewBrowserError(target, "render", err)
		if ctx.Err() != nil {
			crawlErr = errors.NewCancelledError(target, "render")
		}
		f.metrics.RecordError(crawlErr.Type.String())
		return fetch.Failed(target, crawlErr, 1), nil
	}

	if finalURL == "" {
		finalURL = target
	}
	f.log.Debugf("rendered %s (%d bytes)", target, len(markup))
	return fetch.Succeeded(target, finalURL, markup, 0, 1), nil
}
