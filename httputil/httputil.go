// Package httputil holds the transport-level error shared by every HTTP caller.
package httputil

import (
	"fmt"
	"net/http"
)

// TransportError is a network failure or a non-2xx HTTP status.
type TransportError struct {
	URL        string
	StatusCode int // 0 for network failures
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("HTTP error from %s: %s", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

// CheckStatus returns a *TransportError unless resp carries a 2xx status.
func CheckStatus(url string, resp *http.Response) error {
	if IsSuccess(resp.StatusCode) {
		return nil
	}
	return &TransportError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
}
