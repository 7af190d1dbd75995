package crawler

import (
	"fmt"
	"io"
	"time"

	"github.com/PentesterFlow/ParamCrawler/internal/browser"
	"github.com/PentesterFlow/ParamCrawler/internal/errors"
	"github.com/PentesterFlow/ParamCrawler/internal/fetch"
	"github.com/PentesterFlow/ParamCrawler/internal/logger"
	"github.com/PentesterFlow/ParamCrawler/internal/metrics"
)

// Option is a functional option for configuring the Crawler.
type Option func(*Crawler) error

// WithConfig sets a copy of the entire configuration.
func WithConfig(config *Config) Option {
	return func(c *Crawler) error {
		if config == nil {
			return fmt.Errorf("config cannot be nil")
		}
		c.config = config.Clone()
		return nil
	}
}

// WithSeeds appends seed URLs.
func WithSeeds(seeds ...string) Option {
	return func(c *Crawler) error {
		c.config.Seeds = append(c.config.Seeds, seeds...)
		return nil
	}
}

// WithWorkers sets the number of concurrent traversal runs.
func WithWorkers(n int) Option {
	return func(c *Crawler) error {
		if n < 1 {
			n = 1
		}
		c.config.Workers = n
		return nil
	}
}

// WithMaxDepth sets the maximum crawl depth. Depth 0 fetches only the seeds.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) error {
		if depth < 0 {
			depth = 0
		}
		c.config.MaxDepth = depth
		return nil
	}
}

// WithDelay sets the politeness delay after each processed page.
func WithDelay(delay time.Duration) Option {
	return func(c *Crawler) error {
		if delay < 0 {
			delay = 0
		}
		c.config.Delay = delay
		return nil
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Crawler) error {
		c.config.Timeout = timeout
		return nil
	}
}

// WithRetries sets the number of HTTP attempts per URL.
func WithRetries(n int) Option {
	return func(c *Crawler) error {
		if n < 1 {
			n = 1
		}
		c.config.MaxRetries = n
		return nil
	}
}

// WithBrowser switches to the rendered-browser fetch strategy.
func WithBrowser(enabled bool) Option {
	return func(c *Crawler) error {
		c.config.UseBrowser = enabled
		return nil
	}
}

// WithBrowserConfig sets the browser configuration.
func WithBrowserConfig(config browser.Config) Option {
	return func(c *Crawler) error {
		c.config.Browser = config
		return nil
	}
}

// WithRateLimit sets the global request rate. rps 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Crawler) error {
		c.config.RateLimit.RequestsPerSecond = rps
		c.config.RateLimit.Burst = burst
		return nil
	}
}

// WithCustomHeaders sets custom headers for all requests.
func WithCustomHeaders(headers map[string]string) Option {
	return func(c *Crawler) error {
		if c.config.Headers == nil {
			c.config.Headers = make(map[string]string)
		}
		for k, v := range headers {
			c.config.Headers[k] = v
		}
		return nil
	}
}

// WithOutputFile sets the report file results are appended to.
func WithOutputFile(path string) Option {
	return func(c *Crawler) error {
		c.config.Output = path
		return nil
	}
}

// WithOutput sets the console writer.
func WithOutput(w io.Writer) Option {
	return func(c *Crawler) error {
		c.outputWriter = w
		return nil
	}
}

// WithColor forces coloured console output on or off.
func WithColor(enabled bool) Option {
	return func(c *Crawler) error {
		c.colored = &enabled
		return nil
	}
}

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(c *Crawler) error {
		c.config.Verbose = verbose
		return nil
	}
}

// WithDebug enables debug mode.
func WithDebug(debug bool) Option {
	return func(c *Crawler) error {
		c.config.Debug = debug
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Crawler) error {
		c.logger = l
		return nil
	}
}

// WithMetrics sets a custom metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Crawler) error {
		c.metrics = m
		return nil
	}
}

// WithFetcher replaces the fetch strategy.
func WithFetcher(f fetch.Fetcher) Option {
	return func(c *Crawler) error {
		c.fetcher = f
		return nil
	}
}

// WithSleeper replaces the sleeper used for backoff and politeness delays.
func WithSleeper(s errors.Sleeper) Option {
	return func(c *Crawler) error {
		c.sleeper = s
		return nil
	}
}
