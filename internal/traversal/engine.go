// Package traversal implements the breadth-first crawl of a single seed.
package traversal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/PentesterFlow/ParamCrawler/internal/errors"
	"github.com/PentesterFlow/ParamCrawler/internal/extract"
	"github.com/PentesterFlow/ParamCrawler/internal/fetch"
	"github.com/PentesterFlow/ParamCrawler/internal/frontier"
	"github.com/PentesterFlow/ParamCrawler/internal/logger"
	"github.com/PentesterFlow/ParamCrawler/internal/metrics"
)

// Config bounds a traversal run.
type Config struct {
	MaxDepth       int           // Link hops followed from the seed; 0 fetches only the seed
	Delay          time.Duration // Politeness pause after every processed entry
	EstimatedPages int           // Sizing hint for the visited set
}

// DefaultConfig returns depth 1 with no delay.
func DefaultConfig() Config {
	return Config{
		MaxDepth:       1,
		EstimatedPages: 1000,
	}
}

// RunStats counts what a run did.
type RunStats struct {
	PagesFetched  int           `json:"pages_fetched"`
	PagesFailed   int           `json:"pages_failed"`
	Discarded     int           `json:"discarded"`
	LinksEnqueued int           `json:"links_enqueued"`
	Duration      time.Duration `json:"duration"`
}

// Result is the outcome of one traversal run.
type Result struct {
	Seed       string   `json:"seed"`
	Parameters []string `json:"parameters"` // Distinct names, sorted
	Stats      RunStats `json:"stats"`
}

// Engine runs breadth-first traversals. An Engine holds no per-run state,
// so one Engine may serve concurrent runs if its fetcher and extractor can.
type Engine struct {
	config    Config
	fetcher   fetch.Fetcher
	extractor extract.Extractor
	sleep     errors.Sleeper
	metrics   *metrics.Collector
	log       *logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSleeper replaces the politeness-delay sleeper.
func WithSleeper(s errors.Sleeper) Option {
	return func(e *Engine) { e.sleep = s }
}

// WithMetrics records page counts into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine.
func NewEngine(config Config, fetcher fetch.Fetcher, extractor extract.Extractor, opts ...Option) *Engine {
	e := &Engine{
		config:    config,
		fetcher:   fetcher,
		extractor: extractor,
		sleep:     errors.SleepContext,
		metrics:   metrics.New(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// run is the mutable state of one traversal.
type run struct {
	seed    string
	queue   *frontier.Queue
	visited *frontier.VisitedSet
	params  map[string]struct{}
	stats   RunStats
	start   time.Time
}

// Run crawls breadth-first from seed until the frontier is empty.
//
// Fetch failures are logged and skipped. A non-nil error means the run was
// cut short, by cancellation or by a fetcher fault; the partial result is
// returned alongside it.
func (e *Engine) Run(ctx context.Context, seed string) (*Result, error) {
	r := &run{
		seed:    seed,
		queue:   frontier.NewQueue(frontier.Entry{URL: seed, Depth: 0}),
		visited: frontier.NewVisitedSet(e.config.EstimatedPages),
		params:  make(map[string]struct{}),
		start:   time.Now(),
	}
	log := e.log.WithSeed(seed)
	log.Infof("starting traversal (max depth %d)", e.config.MaxDepth)

	for !r.queue.IsEmpty() {
		if err := ctx.Err(); err != nil {
			return r.result(), err
		}

		entry, err := r.queue.Pop()
		if err != nil {
			break
		}

		if r.visited.Contains(entry.URL) || entry.Depth > e.config.MaxDepth {
			r.stats.Discarded++
			continue
		}
		r.visited.Add(entry.URL)

		if err := e.process(ctx, r, entry, log); err != nil {
			return r.result(), err
		}

		if e.config.Delay > 0 {
			if err := e.sleep(ctx, e.config.Delay); err != nil {
				return r.result(), err
			}
		}
	}

	res := r.result()
	log.Infof("traversal finished: %d pages, %d failed, %d parameters",
		res.Stats.PagesFetched, res.Stats.PagesFailed, len(res.Parameters))
	return res, nil
}

// process fetches one entry and folds its parameters and links into r.
func (e *Engine) process(ctx context.Context, r *run, entry frontier.Entry, log *logger.Logger) error {
	start := time.Now()
	out, err := e.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", entry.URL, err)
	}

	if !out.OK() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.stats.PagesFailed++
		e.metrics.RecordPageFailed()
		log.WithDepth(entry.Depth).WarnEvent(out.Failure, entry.URL, "fetch")
		return nil
	}

	r.stats.PagesFetched++
	e.metrics.RecordPageCrawled()
	log.FetchEvent(entry.URL, entry.Depth, out.Attempts, time.Since(start))

	params, links := e.extractor.Extract(out.Markup, entry.URL)
	for _, p := range params {
		r.params[p] = struct{}{}
	}

	if entry.Depth >= e.config.MaxDepth {
		return nil
	}
	for _, link := range links {
		if r.visited.Contains(link) {
			continue
		}
		r.queue.Push(frontier.Entry{URL: link, Depth: entry.Depth + 1})
		r.stats.LinksEnqueued++
	}
	return nil
}

func (r *run) result() *Result {
	params := make([]string, 0, len(r.params))
	for p := range r.params {
		params = append(params, p)
	}
	sort.Strings(params)

	stats := r.stats
	stats.Duration = time.Since(r.start)
	return &Result{
		Seed:       r.seed,
		Parameters: params,
		Stats:      stats,
	}
}
