package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultErrorTitle  = "Error"
	defaultErrorDetail = "An unexpected error occurred"
)

var (
	// ErrRefreshFailed marks an error returned after the access token could not
	// be renewed. The session has been logged out when a caller sees it.
	ErrRefreshFailed = errors.New("access token refresh failed")

	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// NowFunc returns the current time. It can be overridden in tests.
var NowFunc = time.Now

// APIError is the single error shape produced by the client. StatusCode is 0
// when no HTTP response was received.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
	Timestamp  string
	Path       string
	Message    string

	cause error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Detail
	}
	if e.StatusCode == 0 {
		return msg
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Summary is the text shown to users: the detail, falling back to the title.
func (e *APIError) Summary() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Title != "" {
		return e.Title
	}
	return defaultErrorDetail
}

func newAPIError(status int) *APIError {
	return &APIError{
		StatusCode: status,
		Title:      defaultErrorTitle,
		Detail:     defaultErrorDetail,
		Timestamp:  NowFunc().UTC().Format(time.RFC3339),
	}
}

// Normalize converts any error into an *APIError. An *APIError anywhere in
// the chain is returned as is, so Normalize(Normalize(err)) == Normalize(err).
// Errors without an HTTP response become StatusCode 0 with the error text as
// detail.
func Normalize(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	e := newAPIError(0)
	if msg := err.Error(); msg != "" {
		e.Detail = msg
		e.Message = msg
	}
	e.cause = err
	return e
}

// problemDetail is the structured error body the API sends.
type problemDetail struct {
	Status    json.RawMessage `json:"status"`
	Title     string          `json:"title"`
	Detail    string          `json:"detail"`
	Message   string          `json:"message"`
	Timestamp json.RawMessage `json:"timestamp"`
	Path      string          `json:"path"`
	Instance  string          `json:"instance"`
}

// newResponseError builds the error for a non-2xx response body.
func newResponseError(status int, body []byte, path string) *APIError {
	e := newAPIError(status)
	e.Path = path

	trimmed := strings.TrimSpace(string(body))
	// A JSON-encoded string body is unwrapped before classification.
	var quoted string
	if json.Unmarshal([]byte(trimmed), &quoted) == nil {
		trimmed = strings.TrimSpace(quoted)
	}
	// null, "" and blank bodies carry nothing and keep the defaults.
	if trimmed == "" || trimmed == "null" {
		e.Message = http.StatusText(status)
		if e.Message == "" {
			e.Message = e.Detail
		}
		return e
	}

	var pd problemDetail
	if !strings.HasPrefix(trimmed, "{") || json.Unmarshal([]byte(trimmed), &pd) != nil {
		e.Detail = trimmed
		e.Title = trimmed
		e.Message = trimmed
		return e
	}

	switch {
	case pd.Detail != "":
		e.Detail = pd.Detail
	case pd.Message != "":
		e.Detail = pd.Message
	}
	if code, ok := parseStatus(pd.Status); ok {
		e.StatusCode = code
	}
	if pd.Title != "" {
		e.Title = pd.Title
	}
	if ts, ok := parseTimestamp(pd.Timestamp); ok {
		e.Timestamp = ts
	}
	switch {
	case pd.Path != "":
		e.Path = pd.Path
	case pd.Instance != "":
		e.Path = pd.Instance
	}
	e.Message = e.Detail
	return e
}

// parseStatus accepts the status as a number or a numeric string. Envelope
// style statuses such as "error" are ignored.
func parseStatus(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if json.Unmarshal(raw, &n) == nil && n > 0 {
		return n, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if _, err := fmt.Sscanf(s, "%d", &n); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// parseTimestamp accepts an ISO-8601 string or epoch seconds.
func parseTimestamp(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, s != ""
	}
	var secs float64
	if json.Unmarshal(raw, &secs) == nil && secs > 0 {
		whole := int64(secs)
		nanos := int64((secs - float64(whole)) * float64(time.Second))
		return time.Unix(whole, nanos).UTC().Format(time.RFC3339Nano), true
	}
	return "", false
}

// IsStatus returns true if err (or any wrapped error) is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}
