package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/PentesterFlow/ParamCrawler/internal/errors"
	"github.com/PentesterFlow/ParamCrawler/internal/logger"
	"github.com/PentesterFlow/ParamCrawler/internal/metrics"
	"github.com/PentesterFlow/ParamCrawler/internal/ratelimit"
	"golang.org/x/net/html/charset"
)

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 5 * 1024 * 1024

// HTTPConfig holds configuration for the plain HTTP fetcher.
type HTTPConfig struct {
	Timeout       time.Duration     // Per-attempt request timeout
	MaxRetries    int               // Total attempts per URL
	BaseDelay     time.Duration     // Backoff unit
	MaxBodySize   int64             // Bytes read from a response body
	MaxRedirects  int               // Redirects followed before giving up
	Headers       map[string]string // Extra request headers
	SkipTLSVerify bool
}

// DefaultHTTPConfig returns the crawler's fetch defaults.
func DefaultHTTPConfig() HTTPConfig {
	retry := errors.DefaultRetryConfig()
	return HTTPConfig{
		Timeout:       15 * time.Second,
		MaxRetries:    retry.MaxAttempts,
		BaseDelay:     retry.BaseDelay,
		MaxBodySize:   DefaultMaxBodySize,
		MaxRedirects:  10,
		SkipTLSVerify: true,
	}
}

// HTTPFetcher fetches pages with plain GET requests, retrying failed
// attempts with exponential backoff.
type HTTPFetcher struct {
	client    *http.Client
	config    HTTPConfig
	retrier   *errors.Retrier
	sleep     errors.Sleeper
	userAgent UserAgentPicker
	limiter   *ratelimit.Limiter
	metrics   *metrics.Collector
	log       *logger.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithSleeper replaces the backoff sleeper.
func WithSleeper(s errors.Sleeper) HTTPOption {
	return func(f *HTTPFetcher) { f.sleep = s }
}

// WithUserAgentPicker replaces the User-Agent selection.
func WithUserAgentPicker(p UserAgentPicker) HTTPOption {
	return func(f *HTTPFetcher) { f.userAgent = p }
}

// WithLimiter paces every attempt through l.
func WithLimiter(l *ratelimit.Limiter) HTTPOption {
	return func(f *HTTPFetcher) { f.limiter = l }
}

// WithMetrics records attempts into c.
func WithMetrics(c *metrics.Collector) HTTPOption {
	return func(f *HTTPFetcher) { f.metrics = c }
}

// WithLogger sets the fetcher logger.
func WithLogger(l *logger.Logger) HTTPOption {
	return func(f *HTTPFetcher) { f.log = l }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// NewHTTPFetcher creates a plain HTTP fetcher.
func NewHTTPFetcher(config HTTPConfig, opts ...HTTPOption) *HTTPFetcher {
	defaults := DefaultHTTPConfig()
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = defaults.BaseDelay
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = defaults.MaxBodySize
	}
	if config.MaxRedirects <= 0 {
		config.MaxRedirects = defaults.MaxRedirects
	}

	f := &HTTPFetcher{
		config:    config,
		userAgent: RandomUserAgent,
		limiter:   ratelimit.Unlimited(),
		metrics:   metrics.New(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = newClient(config)
	}

	f.retrier = errors.NewRetrier(errors.RetryConfig{
		MaxAttempts: config.MaxRetries,
		BaseDelay:   config.BaseDelay,
	}, f.sleep)
	f.retrier.OnRetry(func(url string, attempt int, err error, wait time.Duration) {
		f.metrics.RecordRetry()
		f.log.RetryEvent(err, url, attempt, wait)
	})

	return f
}

func newClient(config HTTPConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.SkipTLSVerify,
		},
	}

	maxRedirects := config.MaxRedirects
	return &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Fetch retrieves target, retrying up to MaxRetries attempts in total.
// The returned error is always nil.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (Outcome, error) {
	var page Outcome

	result := f.retrier.Do(ctx, target, func(ctx context.Context, attempt int) error {
		out, err := f.get(ctx, target)
		if err != nil {
			f.metrics.RecordError(errors.GetErrorType(err).String())
			return err
		}
		page = out
		return nil
	})

	if !result.Success {
		return Failed(target, errors.Categorize(result.LastError, target), result.Attempts), nil
	}

	page.Attempts = result.Attempts
	return page, nil
}

// get performs a single attempt.
func (f *HTTPFetcher) get(ctx context.Context, target string) (Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Outcome{}, errors.NewCrawlError(errors.Parse, target, "request_creation", "failed to create request", err)
	}

	if err := f.limiter.WaitHost(ctx, req.URL.Host); err != nil {
		return Outcome{}, errors.NewCancelledError(target, "rate_limit_wait")
	}

	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.config.Headers {
		req.Header.Set(k, v)
	}

	f.metrics.RecordRequest()
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return Outcome{}, errors.Categorize(unwrapURLError(err), target)
	}
	defer resp.Body.Close()

	f.metrics.RecordStatusCode(resp.StatusCode)
	f.metrics.RecordResponseTime(time.Since(start))

	if httpErr := errors.CategorizeHTTPStatus(resp.StatusCode, target); httpErr != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return Outcome{}, httpErr
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.config.MaxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return Outcome{}, errors.NewParseError(target, "charset_decode", err)
	}
	markup, err := io.ReadAll(body)
	if err != nil {
		return Outcome{}, errors.NewNetworkError(target, "body_read", err)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	f.log.Debugf("fetched %s (%d, %d bytes)", target, resp.StatusCode, len(markup))
	return Succeeded(target, finalURL, string(markup), resp.StatusCode, 0), nil
}

// unwrapURLError keeps the timeout signal of *url.Error while dropping its
// method/URL prefix from the message.
func unwrapURLError(err error) error {
	if urlErr, ok := err.(*url.Error); ok && !urlErr.Timeout() && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() {
	f.client.CloseIdleConnections()
}
