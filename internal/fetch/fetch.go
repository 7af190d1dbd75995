// Package fetch retrieves page markup for the traversal engine.
package fetch

import (
	"context"
	"math/rand/v2"

	"github.com/PentesterFlow/ParamCrawler/internal/errors"
)

// Fetcher retrieves the markup of a single URL.
//
// Transport problems are reported through the Outcome and never as an error.
// A non-nil error means the fetcher itself is unusable and the traversal run
// cannot continue.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Outcome, error)
}

// Outcome is the result of one Fetch call: either markup or a failure.
type Outcome struct {
	URL        string
	FinalURL   string
	Markup     string
	StatusCode int
	Attempts   int
	Failure    *errors.CrawlError
}

// OK reports whether the fetch produced markup.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Kind returns the failure kind, or errors.Unknown for a successful outcome.
func (o Outcome) Kind() errors.ErrorType {
	if o.Failure == nil {
		return errors.Unknown
	}
	return o.Failure.Type
}

// Succeeded builds a success outcome.
func Succeeded(url, finalURL, markup string, status, attempts int) Outcome {
	return Outcome{
		URL:        url,
		FinalURL:   finalURL,
		Markup:     markup,
		StatusCode: status,
		Attempts:   attempts,
	}
}

// Failed builds a failure outcome.
func Failed(url string, failure *errors.CrawlError, attempts int) Outcome {
	if failure == nil {
		failure = errors.NewCrawlError(errors.Unknown, url, "fetch", "fetch failed", nil)
	}
	return Outcome{
		URL:        url,
		StatusCode: failure.StatusCode,
		Attempts:   attempts,
		Failure:    failure,
	}
}

// UserAgents is the pool of desktop browser identities requests rotate through.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:90.0) Gecko/20100101 Firefox/90.0",
}

// UserAgentPicker returns the User-Agent for the next request.
type UserAgentPicker func() string

// RandomUserAgent picks uniformly from UserAgents.
func RandomUserAgent() string {
	return UserAgents[rand.IntN(len(UserAgents))]
}
