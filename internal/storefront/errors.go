package storefront

import (
	"errors"
	"net/http"
	"strings"
)

// ErrorKind groups backend failures by what the caller should do next.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindAuth              ErrorKind = "auth"
	KindTransport         ErrorKind = "transport"
	KindUnknown           ErrorKind = "unknown"
)

// APIError is returned for every failed storefront call.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *APIError) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindUnknown when err is not an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

var authPhrases = []string{
	"unauthorized",
	"jwt expired",
	"token expired",
	"token has expired",
	"session expired",
	"session has expired",
}

// classify derives a kind from the HTTP status first. The message is only
// consulted when the status carries no signal of its own: the wallet service
// reports low balance as a plain 400, and some failures come back as a
// success:false envelope on HTTP 200.
func classify(status int, message string) ErrorKind {
	switch {
	case status == http.StatusPaymentRequired:
		return KindInsufficientFunds
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= http.StatusInternalServerError:
		return KindTransport
	case status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return KindValidation
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "insufficient"), strings.Contains(lower, "balance"):
		return KindInsufficientFunds
	case containsAny(lower, authPhrases):
		return KindAuth
	case status == http.StatusBadRequest:
		return KindValidation
	}
	return KindUnknown
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
