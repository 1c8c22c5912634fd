package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// maxErrorBody caps how much of a response body an error message quotes
const maxErrorBody = 200

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return fmt.Sprintf("api: %s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, body)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// isRetryable reports whether a failed attempt may be repeated
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return retryableStatus(se.Code)
	}
	var te *transportError
	return errors.As(err, &te)
}

// transportError marks failures that happened before a response arrived
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "api: transport: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }
