package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// StatusError is a non-200 response from a download endpoint.
type StatusError struct {
	URL        string
	StatusCode int
	// RetryAfter is the delay the server asked for, zero when absent.
	RetryAfter time.Duration
}

// NewStatusError builds a StatusError from resp, honouring Retry-After
// given either in seconds or as an HTTP date.
func NewStatusError(resp *http.Response) *StatusError {
	e := &StatusError{StatusCode: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		e.URL = resp.Request.URL.String()
	}
	e.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	return e
}

func (e *StatusError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Temporary reports whether the status is worth retrying: request
// timeout, too many requests, or a gateway or server overload.
func (e *StatusError) Temporary() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// Class is the retry disposition of an error.
type Class int

// Error classes.
const (
	Permanent Class = iota
	Transient
	Canceled
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Canceled:
		return "canceled"
	default:
		return "permanent"
	}
}

// Classify sorts err into Canceled (the caller gave up), Transient
// (temporary HTTP status, network timeout, dropped connection or
// truncated body) or Permanent.
func Classify(err error) Class {
	if err == nil {
		return Permanent
	}
	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var se *StatusError
	if errors.As(err, &se) {
		if se.Temporary() {
			return Transient
		}
		return Permanent
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return Transient
	}
	return Permanent
}

// IsTransient reports whether Classify(err) is Transient.
func IsTransient(err error) bool {
	return Classify(err) == Transient
}

// RetryDelay returns the Retry-After delay carried by err, if any.
func RetryDelay(err error) (time.Duration, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > 0 {
		return se.RetryAfter, true
	}
	return 0, false
}
