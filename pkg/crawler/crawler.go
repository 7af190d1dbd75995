package crawler

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PentesterFlow/ParamCrawler/internal/browser"
	"github.com/PentesterFlow/ParamCrawler/internal/dispatch"
	"github.com/PentesterFlow/ParamCrawler/internal/errors"
	"github.com/PentesterFlow/ParamCrawler/internal/extract"
	"github.com/PentesterFlow/ParamCrawler/internal/fetch"
	"github.com/PentesterFlow/ParamCrawler/internal/logger"
	"github.com/PentesterFlow/ParamCrawler/internal/metrics"
	"github.com/PentesterFlow/ParamCrawler/internal/ratelimit"
	"github.com/PentesterFlow/ParamCrawler/internal/report"
	"github.com/PentesterFlow/ParamCrawler/internal/traversal"
	"github.com/fatih/color"
)

// Crawler runs one traversal per seed and reports the parameters found.
type Crawler struct {
	config       *Config
	fetcher      fetch.Fetcher
	sleeper      errors.Sleeper
	outputWriter io.Writer
	colored      *bool
	logger       *logger.Logger
	metrics      *metrics.Collector

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
}

// New creates a new crawler with the given options.
func New(opts ...Option) (*Crawler, error) {
	c := &Crawler{
		config: DefaultConfig(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	// Validate config
	if err := c.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.logger == nil {
		c.logger = logger.New(logger.Config{
			Level:     logger.LevelFor(c.config.Verbose, c.config.Debug),
			Pretty:    true,
			Component: "crawler",
		})
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}
	if c.outputWriter == nil {
		c.outputWriter = os.Stdout
	}

	return c, nil
}

// Config returns the crawler configuration.
func (c *Crawler) Config() *Config {
	return c.config
}

// Start crawls every seed and prints results as runs complete.
//
// Per-seed failures are reported and collected in the result, never
// returned. Cancelling ctx stops in-flight runs; Start still prints the
// completion line and returns what finished.
func (c *Crawler) Start(ctx context.Context) (*CrawlResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("crawler is already running")
	}
	defer c.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	result := &CrawlResult{StartedAt: time.Now()}

	f, limiter, closeFetcher := c.newFetcher()
	defer closeFetcher()

	engineOpts := []traversal.Option{
		traversal.WithMetrics(c.metrics),
		traversal.WithLogger(c.logger.WithComponent("engine")),
	}
	if c.sleeper != nil {
		engineOpts = append(engineOpts, traversal.WithSleeper(c.sleeper))
	}
	engine := traversal.NewEngine(traversal.Config{
		MaxDepth:       c.config.MaxDepth,
		Delay:          c.config.Delay,
		EstimatedPages: traversal.DefaultConfig().EstimatedPages,
	}, f, extract.NewHTMLExtractor(), engineOpts...)

	reporter := report.NewReporter(
		report.NewPrinter(c.outputWriter, c.useColor()),
		c.logger.WithComponent("report"),
	)
	forward := reporter.Sink(c.config.Output)

	d := dispatch.New(engine,
		dispatch.WithWorkers(c.config.Workers),
		dispatch.WithMetrics(c.metrics),
		dispatch.WithLogger(c.logger.WithComponent("dispatch")),
	)

	reporter.Start()
	summary := d.Run(ctx, c.config.Seeds, func(o dispatch.Outcome) {
		if o.Err != nil {
			result.Errors = append(result.Errors, o.Err)
		} else {
			result.Results = append(result.Results, o.Result)
		}
		forward(o)
	})

	reporter.Done()

	result.CompletedAt = time.Now()
	result.Interrupted = ctx.Err() != nil
	result.Metrics = c.metrics.Snapshot()

	if result.Interrupted {
		c.logger.Warnf("crawl interrupted after %d of %d seeds", summary.Completed+summary.Failed, len(c.config.Seeds))
	}
	c.logger.Infof("%d runs completed, %d failed in %v", summary.Completed, summary.Failed, summary.Duration)
	c.logger.StatsEvent(statsFields(result.Metrics, limiter))

	return result, nil
}

// statsFields merges the metrics summary with the limiter's counters.
// limiter is nil when no HTTP fetcher was built.
func statsFields(snap *metrics.Snapshot, limiter *ratelimit.Limiter) map[string]interface{} {
	fields := snap.Summary()
	if limiter != nil {
		ls := limiter.Stats()
		fields["rate_limit_requests"] = ls.RequestsSeen
		fields["rate_limit_hosts"] = ls.HostCount
	}
	return fields
}

// newFetcher builds the configured fetch strategy. The limiter is nil
// unless the HTTP fetcher is used.
func (c *Crawler) newFetcher() (fetch.Fetcher, *ratelimit.Limiter, func()) {
	if c.fetcher != nil {
		return c.fetcher, nil, func() {}
	}

	if c.config.UseBrowser {
		bc := c.config.Browser
		bc.Timeout = c.config.Timeout
		if len(c.config.Headers) > 0 {
			bc.Headers = c.config.Headers
		}
		return browser.NewFetcher(bc,
			browser.WithMetrics(c.metrics),
			browser.WithLogger(c.logger.WithComponent("browser")),
		), nil, func() {}
	}

	limiter := ratelimit.NewLimiter(c.config.RateLimit.RequestsPerSecond, c.config.RateLimit.Burst)
	if c.config.RateLimit.PerHost > 0 {
		limiter.SetHostRate(c.config.RateLimit.PerHost, c.config.RateLimit.Burst)
	}

	hc := fetch.DefaultHTTPConfig()
	hc.Timeout = c.config.Timeout
	hc.MaxRetries = c.config.MaxRetries
	hc.Headers = c.config.Headers

	opts := []fetch.HTTPOption{
		fetch.WithLimiter(limiter),
		fetch.WithMetrics(c.metrics),
		fetch.WithLogger(c.logger.WithComponent("fetch")),
	}
	if c.sleeper != nil {
		opts = append(opts, fetch.WithSleeper(c.sleeper))
	}
	hf := fetch.NewHTTPFetcher(hc, opts...)
	return hf, limiter, hf.Close
}

// useColor reports whether console output gets ANSI colours.
func (c *Crawler) useColor() bool {
	if c.colored != nil {
		return *c.colored
	}
	if c.config.NoColor {
		return false
	}
	return c.outputWriter == os.Stdout && !color.NoColor
}

// Stop cancels a running crawl.
func (c *Crawler) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.Load() || c.cancel == nil {
		return fmt.Errorf("crawler is not running")
	}
	c.cancel()
	return nil
}

// IsRunning reports whether Start is in progress.
func (c *Crawler) IsRunning() bool {
	return c.running.Load()
}

// Metrics returns the metrics collector.
func (c *Crawler) Metrics() *metrics.Collector {
	return c.metrics
}

// MetricsSnapshot returns a point-in-time snapshot of all metrics.
func (c *Crawler) MetricsSnapshot() *metrics.Snapshot {
	if c.metrics == nil {
		return nil
	}
	return c.metrics.Snapshot()
}
