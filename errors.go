package cloudpay

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors for errors.Is checks across the taxonomy.
var (
	// ErrCloudPay matches every error produced by this package's taxonomy.
	ErrCloudPay = errors.New("cloudpay: error")

	// ErrServer matches every HTTP-level failure (status >= 300).
	ErrServer = errors.New("cloudpay: server error")

	// ErrGateway matches every gateway-domain failure, reasoned or not.
	ErrGateway = errors.New("cloudpay: gateway error")

	// ErrReasonedGateway matches gateway failures carrying a known reason code.
	ErrReasonedGateway = errors.New("cloudpay: reasoned gateway error")

	// ErrValidation is returned when required attributes are missing.
	ErrValidation = errors.New("cloudpay: validation failed")

	// ErrConfigResolution is returned when a configuration reference has an
	// unsupported shape.
	ErrConfigResolution = errors.New("cloudpay: cannot resolve config")

	// ErrSignature is returned when a webhook HMAC does not match.
	ErrSignature = errors.New("cloudpay: signature mismatch")

	// ErrCodec wraps JSON encode and decode failures.
	ErrCodec = errors.New("cloudpay: wire codec")

	// ErrTransport matches failures to reach the gateway at all.
	ErrTransport = errors.New("cloudpay: transport failure")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("cloudpay: invalid config")
)

// TransportError reports a request that never produced an HTTP response:
// connection refused, DNS failure, timeout or a cancelled context.
type TransportError struct {
	Method    string
	URL       string
	RequestID string
	Duration  time.Duration
	Cause     error
}

// Error implements error interface.
func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("cloudpay: %s %s failed", e.Method, e.URL)
	if e.RequestID != "" {
		msg += fmt.Sprintf(" [RequestID: %s]", e.RequestID)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is matches ErrTransport and ErrCloudPay.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport || target == ErrCloudPay
}

// HTTPError is returned by the request pipeline for every response with a
// status >= 300. It is never swallowed.
type HTTPError struct {
	Kind       *ErrorKind
	StatusCode int
	Body       string
	Header     http.Header
}

// Error implements error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Body)
}

// Is matches the error's kind, ErrServer and ErrCloudPay.
func (e *HTTPError) Is(target error) bool {
	if e == nil {
		return false
	}
	if kind, ok := target.(*ErrorKind); ok {
		return kind == e.Kind
	}
	return target == ErrServer || target == ErrCloudPay
}

// GatewayError is a domain failure reported by the gateway without a
// recognised reason code.
type GatewayError struct {
	Message string
	Body    any
}

// Error implements error interface.
func (e *GatewayError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return "Unknown Gateway Error"
	}
	return e.Message
}

// Is matches ErrGateway and ErrCloudPay.
func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway || target == ErrCloudPay
}

// ReasonedGatewayError is a domain failure whose reason code maps to a
// registered error kind.
type ReasonedGatewayError struct {
	Kind       *ErrorKind
	ReasonCode int
	Message    string
	Body       any
}

// Error implements error interface.
func (e *ReasonedGatewayError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return "Unknown Gateway Error"
	}
	return e.Message
}

// Is matches the error's kind, ErrReasonedGateway, ErrGateway and ErrCloudPay.
func (e *ReasonedGatewayError) Is(target error) bool {
	if e == nil {
		return false
	}
	if kind, ok := target.(*ErrorKind); ok {
		return kind == e.Kind
	}
	return target == ErrReasonedGateway || target == ErrGateway || target == ErrCloudPay
}

// ValidationError lists the attributes a call requires when any of them is
// missing.
type ValidationError struct {
	Keys []string
}

// Error implements error interface.
func (e *ValidationError) Error() string {
	return validationMessage(e.Keys)
}

// Is matches ErrValidation and ErrCloudPay.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == ErrCloudPay
}

func validationMessage(keys []string) string {
	return strings.Join(keys, ", ") + " attributes are required"
}

// ConfigResolutionError reports a configuration reference of an unsupported
// shape.
type ConfigResolutionError struct {
	Value any
	Cause error
}

// Error implements error interface.
func (e *ConfigResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cloudpay: cannot resolve config from %T (%v)", e.Value, e.Cause)
	}
	return fmt.Sprintf("cloudpay: cannot resolve config from %T", e.Value)
}

// Unwrap returns the underlying cause.
func (e *ConfigResolutionError) Unwrap() error {
	return e.Cause
}

// Is matches ErrConfigResolution and ErrCloudPay.
func (e *ConfigResolutionError) Is(target error) bool {
	return target == ErrConfigResolution || target == ErrCloudPay
}

// SignatureError is returned when a webhook body fails HMAC verification.
type SignatureError struct {
	Cause error
}

// Error implements error interface.
func (e *SignatureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cloudpay: webhook signature mismatch (%v)", e.Cause)
	}
	return "cloudpay: webhook signature mismatch"
}

// Unwrap returns the underlying cause.
func (e *SignatureError) Unwrap() error {
	return e.Cause
}

// Is matches ErrSignature and ErrCloudPay.
func (e *SignatureError) Is(target error) bool {
	return target == ErrSignature || target == ErrCloudPay
}

// IsRetryable reports whether err is a gateway failure whose kind is in the
// DefaultRegistry's retryable set (format errors, insufficient funds,
// gateway timeouts, unreachable network and system errors by default).
// Retrying such a call is only safe with the same idempotency key.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var reasoned *ReasonedGatewayError
	if errors.As(err, &reasoned) {
		return DefaultRegistry.Retryable(reasoned.Kind)
	}
	return false
}
