// Package crawler discovers input parameter names by crawling seed URLs.
package crawler

import (
	"sort"
	"time"

	"github.com/PentesterFlow/ParamCrawler/internal/dispatch"
	"github.com/PentesterFlow/ParamCrawler/internal/metrics"
	"github.com/PentesterFlow/ParamCrawler/internal/traversal"
)

// CrawlResult represents the complete result of a crawl session.
type CrawlResult struct {
	Results     []*traversal.Result   `json:"results"`
	Errors      []*dispatch.RunError  `json:"errors,omitempty"`
	StartedAt   time.Time             `json:"started_at"`
	CompletedAt time.Time             `json:"completed_at,omitempty"`
	Interrupted bool                  `json:"interrupted"`
	Metrics     *metrics.Snapshot     `json:"metrics,omitempty"`
}

// Duration returns how long the session took.
func (r *CrawlResult) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Parameters returns the sorted union of parameter names over all runs.
func (r *CrawlResult) Parameters() []string {
	seen := make(map[string]struct{})
	for _, res := range r.Results {
		for _, p := range res.Parameters {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ResultFor returns the first completed run for seed, or nil.
func (r *CrawlResult) ResultFor(seed string) *traversal.Result {
	for _, res := range r.Results {
		if res.Seed == seed {
			return res
		}
	}
	return nil
}
