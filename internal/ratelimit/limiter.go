// Package ratelimit provides request pacing shared by all traversal runs.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing requests globally and, optionally, per host.
// A Limiter created with a non-positive rate never blocks.
type Limiter struct {
	mu           sync.Mutex
	limiter      *rate.Limiter
	perHost      map[string]*rate.Limiter
	hostRate     rate.Limit
	hostBurst    int
	requestsSeen int64
}

// NewLimiter creates a limiter allowing requestsPerSecond with the given
// burst. requestsPerSecond <= 0 disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{
		limiter:   rate.NewLimiter(limit, burst),
		perHost:   make(map[string]*rate.Limiter),
		hostRate:  rate.Inf,
		hostBurst: burst,
	}
}

// Unlimited returns a limiter that never blocks.
func Unlimited() *Limiter {
	return NewLimiter(0, 1)
}

// SetHostRate enables an additional per-host limit applied by WaitHost.
func (l *Limiter) SetHostRate(requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst < 1 {
		burst = 1
	}
	l.hostRate = rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		l.hostRate = rate.Inf
	}
	l.hostBurst = burst
	l.perHost = make(map[string]*rate.Limiter)
}

// Wait blocks until a request is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	l.mu.Lock()
	l.requestsSeen++
	l.mu.Unlock()
	return nil
}

// WaitHost applies the global limit and then the per-host limit.
func (l *Limiter) WaitHost(ctx context.Context, host string) error {
	if err := l.Wait(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	if l.hostRate == rate.Inf {
		l.mu.Unlock()
		return nil
	}
	hl, ok := l.perHost[host]
	if !ok {
		hl = rate.NewLimiter(l.hostRate, l.hostBurst)
		l.perHost[host] = hl
	}
	l.mu.Unlock()

	return hl.Wait(ctx)
}

// Stats returns limiter statistics.
func (l *Limiter) Stats() LimiterStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := LimiterStats{
		HostCount:    len(l.perHost),
		Burst:        l.limiter.Burst(),
		RequestsSeen: l.requestsSeen,
	}
	if limit := l.limiter.Limit(); limit != rate.Inf {
		s.Rate = float64(limit)
	}
	return s
}

// LimiterStats contains rate limiter statistics. Rate is 0 when unlimited.
type LimiterStats struct {
	HostCount    int     `json:"host_count"`
	Rate         float64 `json:"rate"`
	Burst        int     `json:"burst"`
	RequestsSeen int64   `json:"requests_seen"`
}
