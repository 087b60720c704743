package cloudpay

import (
	"net/http"
)

// Middleware represents a middleware function
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Option represents a configuration option
type Option func(*Client)

// RequestOptions are per-call settings. They are never stored.
type RequestOptions struct {
	// IdempotencyKey is sent as X-Request-ID so that a retried call is not
	// processed twice by the gateway. When set, the config's connection
	// headers are not sent.
	IdempotencyKey string

	// PathPrefix replaces the namespace prefix for this call.
	PathPrefix string

	// RaiseOnError turns unsuccessful results and failed validation into
	// returned errors.
	RaiseOnError bool

	// APIVersion selects an alternative endpoint version where one exists.
	// Only Payments.Find honours it (2 uses /v2/payments).
	APIVersion int

	// Config re-targets this call. It accepts anything Repo.Resolve accepts;
	// nil keeps the client's configuration.
	Config any
}
