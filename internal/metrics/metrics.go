// Package metrics provides crawl counters shared by concurrent traversal runs.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects and aggregates metrics. All methods are safe for concurrent use.
type Collector struct {
	requestsTotal    atomic.Int64
	retriesTotal     atomic.Int64
	errorsTotal      atomic.Int64
	pagesCrawled     atomic.Int64
	pagesFailed      atomic.Int64
	parametersFound  atomic.Int64
	runsCompleted    atomic.Int64
	runsFailed       atomic.Int64
	responseTimesSum atomic.Int64
	responseTimesNum atomic.Int64

	errorMu     sync.RWMutex
	errorCounts map[string]*atomic.Int64

	statusMu    sync.RWMutex
	statusCodes map[int]*atomic.Int64

	startTime time.Time
}

// New creates a new metrics collector.
func New() *Collector {
	return &Collector{
		errorCounts: make(map[string]*atomic.Int64),
		statusCodes: make(map[int]*atomic.Int64),
		startTime:   time.Now(),
	}
}

// RecordRequest records one fetch attempt.
func (c *Collector) RecordRequest() {
	c.requestsTotal.Add(1)
}

// RecordRetry records a retry attempt.
func (c *Collector) RecordRetry() {
	c.retriesTotal.Add(1)
}

// RecordError records an attempt error by type.
func (c *Collector) RecordError(errorType string) {
	c.errorsTotal.Add(1)

	c.errorMu.Lock()
	if c.errorCounts[errorType] == nil {
		c.errorCounts[errorType] = &atomic.Int64{}
	}
	c.errorCounts[errorType].Add(1)
	c.errorMu.Unlock()
}

// RecordStatusCode records an HTTP status code.
func (c *Collector) RecordStatusCode(code int) {
	c.statusMu.Lock()
	if c.statusCodes[code] == nil {
		c.statusCodes[code] = &atomic.Int64{}
	}
	c.statusCodes[code].Add(1)
	c.statusMu.Unlock()
}

// RecordResponseTime records a response time.
func (c *Collector) RecordResponseTime(d time.Duration) {
	c.responseTimesSum.Add(d.Milliseconds())
	c.responseTimesNum.Add(1)
}

// RecordPageCrawled increments pages whose markup reached the extractor.
func (c *Collector) RecordPageCrawled() {
	c.pagesCrawled.Add(1)
}

// RecordPageFailed increments pages that produced no content.
func (c *Collector) RecordPageFailed() {
	c.pagesFailed.Add(1)
}

// RecordRun records a finished traversal run and its parameter count.
func (c *Collector) RecordRun(parameters int, failed bool) {
	if failed {
		c.runsFailed.Add(1)
		return
	}
	c.runsCompleted.Add(1)
	c.parametersFound.Add(int64(parameters))
}

// GetAverageResponseTime returns the average response time.
func (c *Collector) GetAverageResponseTime() time.Duration {
	num := c.responseTimesNum.Load()
	if num == 0 {
		return 0
	}
	return time.Duration(c.responseTimesSum.Load()/num) * time.Millisecond
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() *Snapshot {
	s := &Snapshot{
		Uptime:              time.Since(c.startTime),
		RequestsTotal:       c.requestsTotal.Load(),
		RetriesTotal:        c.retriesTotal.Load(),
		ErrorsTotal:         c.errorsTotal.Load(),
		PagesCrawled:        c.pagesCrawled.Load(),
		PagesFailed:         c.pagesFailed.Load(),
		ParametersFound:     c.parametersFound.Load(),
		RunsCompleted:       c.runsCompleted.Load(),
		RunsFailed:          c.runsFailed.Load(),
		AverageResponseTime: c.GetAverageResponseTime(),
		ErrorCounts:         make(map[string]int64),
		StatusCodes:         make(map[int]int64),
	}

	c.errorMu.RLock()
	for k, v := range c.errorCounts {
		s.ErrorCounts[k] = v.Load()
	}
	c.errorMu.RUnlock()

	c.statusMu.RLock()
	for k, v := range c.statusCodes {
		s.StatusCodes[k] = v.Load()
	}
	c.statusMu.RUnlock()

	return s
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	Uptime              time.Duration    `json:"uptime"`
	RequestsTotal       int64            `json:"requests_total"`
	RetriesTotal        int64            `json:"retries_total"`
	ErrorsTotal         int64            `json:"errors_total"`
	PagesCrawled        int64            `json:"pages_crawled"`
	PagesFailed         int64            `json:"pages_failed"`
	ParametersFound     int64            `json:"parameters_found"`
	RunsCompleted       int64            `json:"runs_completed"`
	RunsFailed          int64            `json:"runs_failed"`
	AverageResponseTime time.Duration    `json:"average_response_time"`
	ErrorCounts         map[string]int64 `json:"error_counts"`
	StatusCodes         map[int]int64    `json:"status_codes"`
}

// ErrorRate returns the error rate (errors/requests).
func (s *Snapshot) ErrorRate() float64 {
	if s.RequestsTotal == 0 {
		return 0
	}
	return float64(s.ErrorsTotal) / float64(s.RequestsTotal)
}

// Summary returns the fields worth logging at the end of a crawl.
func (s *Snapshot) Summary() map[string]interface{} {
	return map[string]interface{}{
		"uptime":               s.Uptime.Round(time.Millisecond).String(),
		"requests_total":       s.RequestsTotal,
		"retries_total":        s.RetriesTotal,
		"errors_total":         s.ErrorsTotal,
		"error_rate":           s.ErrorRate(),
		"pages_crawled":        s.PagesCrawled,
		"pages_failed":         s.PagesFailed,
		"parameters_found":     s.ParametersFound,
		"runs_completed":       s.RunsCompleted,
		"runs_failed":          s.RunsFailed,
		"avg_response_time_ms": s.AverageResponseTime.Milliseconds(),
	}
}
