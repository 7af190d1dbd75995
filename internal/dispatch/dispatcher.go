// Package dispatch runs one traversal per seed on a bounded worker pool.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PentesterFlow/ParamCrawler/internal/logger"
	"github.com/PentesterFlow/ParamCrawler/internal/metrics"
	"github.com/PentesterFlow/ParamCrawler/internal/traversal"
)

// DefaultWorkers is the default number of concurrent runs.
const DefaultWorkers = 5

// Runner performs a single traversal run.
type Runner interface {
	Run(ctx context.Context, seed string) (*traversal.Result, error)
}

// RunError is a traversal run that ended abnormally.
type RunError struct {
	Seed string
	Err  error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return fmt.Sprintf("run %s: %v", e.Seed, e.Err)
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error {
	return e.Err
}

// Outcome is delivered to the sink once per seed. Exactly one of Result
// and Err is set.
type Outcome struct {
	Seed   string
	Result *traversal.Result
	Err    *RunError
}

// Sink consumes outcomes. Calls never overlap.
type Sink func(Outcome)

// Summary counts the outcomes of a dispatch.
type Summary struct {
	Completed int
	Failed    int
	Duration  time.Duration
}

// Dispatcher fans seeds out to concurrent traversal runs.
type Dispatcher struct {
	runner  Runner
	workers int
	metrics *metrics.Collector
	log     *logger.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers sets the maximum number of concurrent runs.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithMetrics records run outcomes into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Dispatcher) { d.metrics = c }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// New creates a dispatcher around runner.
func New(runner Runner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner:  runner,
		workers: DefaultWorkers,
		metrics: metrics.New(),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Run starts one traversal per seed, at most Workers at a time, and hands
// every outcome to sink in completion order. A failing or panicking run
// does not affect its siblings. Run returns once every run has joined and
// every sink call has returned.
func (d *Dispatcher) Run(ctx context.Context, seeds []string, sink Sink) Summary {
	start := time.Now()
	outcomes := make(chan Outcome)
	summary := Summary{}

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for o := range outcomes {
			if o.Err != nil {
				summary.Failed++
			} else {
				summary.Completed++
			}
			sink(o)
		}
	}()

	d.log.Infof("dispatching %d seeds on %d workers", len(seeds), d.workers)

	var g errgroup.Group
	g.SetLimit(d.workers)
	for _, seed := range seeds {
		g.Go(func() error {
			outcomes <- d.runOne(ctx, seed)
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)
	<-collected

	summary.Duration = time.Since(start)
	return summary
}

// runOne executes a single run, converting errors and panics to a RunError.
func (d *Dispatcher) runOne(ctx context.Context, seed string) (out Outcome) {
	out.Seed = seed
	log := d.log.WithSeed(seed)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("run panicked: %v\n%s", r, debug.Stack())
			out.Result = nil
			out.Err = &RunError{Seed: seed, Err: fmt.Errorf("panic: %v", r)}
			d.metrics.RecordRun(0, true)
		}
	}()

	res, err := d.runner.Run(ctx, seed)
	if err != nil {
		log.ErrorEvent(err, seed, "traversal")
		out.Err = &RunError{Seed: seed, Err: err}
		d.metrics.RecordRun(0, true)
		return out
	}
	if res == nil {
		res = &traversal.Result{Seed: seed, Parameters: []string{}}
	}

	out.Result = res
	d.metrics.RecordRun(len(res.Parameters), false)
	return out
}
