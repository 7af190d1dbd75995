// Package errors provides the transport error taxonomy for the parameter crawler.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// ErrorType is the kind of a failed fetch.
type ErrorType int

const (
	Unknown     ErrorType = iota
	Network               // DNS, dial, reset
	Timeout               // deadline or transport timeout
	RateLimit             // HTTP 429
	Auth                  // HTTP 401, 403
	NotFound              // HTTP 404
	ServerError           // HTTP 5xx
	ClientError           // any other non-2xx final status
	Parse                 // request construction or body decoding
	Browser               // launch, navigation or CDP failure
	Cancelled             // context cancelled
)

var typeNames = [...]string{
	Unknown:     "unknown",
	Network:     "network",
	Timeout:     "timeout",
	RateLimit:   "rate_limit",
	Auth:        "auth",
	NotFound:    "not_found",
	ServerError: "server_error",
	ClientError: "client_error",
	Parse:       "parse",
	Browser:     "browser",
	Cancelled:   "cancelled",
}

// String returns the metric/log name of the type.
func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[Unknown]
	}
	return typeNames[t]
}

// CrawlError is a categorized fetch failure.
type CrawlError struct {
	Type       ErrorType
	URL        string
	Operation  string
	Message    string
	Cause      error
	StatusCode int
}

func (e *CrawlError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s: %s", e.Type, e.Operation, e.URL, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	return b.String()
}

func (e *CrawlError) Unwrap() error {
	return e.Cause
}

// Is matches any *CrawlError of the same Type.
func (e *CrawlError) Is(target error) bool {
	t, ok := target.(*CrawlError)
	return ok && e.Type == t.Type
}

// NewCrawlError creates a new CrawlError.
func NewCrawlError(errType ErrorType, url, operation, message string, cause error) *CrawlError {
	return &CrawlError{
		Type:      errType,
		URL:       url,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

func NewNetworkError(url, operation string, cause error) *CrawlError {
	return NewCrawlError(Network, url, operation, "network failure", cause)
}

func NewTimeoutError(url, operation string, cause error) *CrawlError {
	return NewCrawlError(Timeout, url, operation, "request timed out", cause)
}

func NewRateLimitError(url string) *CrawlError {
	err := NewCrawlError(RateLimit, url, "request", "rate limit exceeded", nil)
	err.StatusCode = http.StatusTooManyRequests
	return err
}

func NewParseError(url, operation string, cause error) *CrawlError {
	return NewCrawlError(Parse, url, operation, "parsing failed", cause)
}

func NewBrowserError(url, operation string, cause error) *CrawlError {
	return NewCrawlError(Browser, url, operation, "browser operation failed", cause)
}

func NewCancelledError(url, operation string) *CrawlError {
	return NewCrawlError(Cancelled, url, operation, "operation cancelled", nil)
}

// Categorize maps a transport error onto the taxonomy. A *CrawlError
// anywhere in the chain is returned as is.
func Categorize(err error, url string) *CrawlError {
	if err == nil {
		return nil
	}

	var crawlErr *CrawlError
	switch {
	case errors.As(err, &crawlErr):
		return crawlErr
	case errors.Is(err, context.Canceled):
		return NewCancelledError(url, "request")
	case isTimeout(err):
		return NewTimeoutError(url, "request", err)
	case isNetworkError(err):
		return NewNetworkError(url, "request", err)
	default:
		return NewCrawlError(Unknown, url, "request", err.Error(), err)
	}
}

// CategorizeHTTPStatus returns nil for 2xx and a failure for every other
// final status, redirects included.
func CategorizeHTTPStatus(statusCode int, url string) *CrawlError {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	if statusCode == http.StatusTooManyRequests {
		return NewRateLimitError(url)
	}

	errType, message := ClientError, fmt.Sprintf("unexpected status %d", statusCode)
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		errType, message = Auth, strings.ToLower(http.StatusText(statusCode))
	case statusCode == http.StatusNotFound:
		errType, message = NotFound, "page not found"
	case statusCode >= 500:
		errType, message = ServerError, fmt.Sprintf("server returned %d", statusCode)
	}

	err := NewCrawlError(errType, url, "request", message, nil)
	err.StatusCode = statusCode
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "timeout")
}

// dialErrnos are socket errors that mean the host could not be reached.
var dialErrnos = []syscall.Errno{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.EHOSTUNREACH,
	syscall.ENETUNREACH,
}

func isNetworkError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return true
	}
	for _, errno := range dialErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host")
}

// IsRateLimitError reports whether err is an HTTP 429 failure.
func IsRateLimitError(err error) bool {
	return GetErrorType(err) == RateLimit
}

// GetStatusCode returns the HTTP status carried by err, or 0.
func GetStatusCode(err error) int {
	var crawlErr *CrawlError
	if errors.As(err, &crawlErr) {
		return crawlErr.StatusCode
	}
	return 0
}

// GetErrorType returns the Type carried by err, or Unknown.
func GetErrorType(err error) ErrorType {
	var crawlErr *CrawlError
	if errors.As(err, &crawlErr) {
		return crawlErr.Type
	}
	return Unknown
}
