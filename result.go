package cloudpay

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Result is a read-only view over a decoded response envelope
// {success, model, message}.
type Result struct {
	data map[string]any

	// missing is set when the call was rejected before sending.
	missing []string

	registry *Registry
}

// NewResult wraps decoded response data. A nil map is treated as empty.
func NewResult(data map[string]any) *Result {
	if data == nil {
		data = map[string]any{}
	}
	return &Result{data: data}
}

func validationResult(keys []string) *Result {
	return &Result{
		data: map[string]any{
			"success": false,
			"message": validationMessage(keys),
		},
		missing: keys,
	}
}

// Data returns the underlying decoded data.
func (r *Result) Data() map[string]any { return r.data }

// Success reports whether the gateway accepted the operation.
func (r *Result) Success() bool { return truthy(r.data["success"]) }

// Model is the operation payload: nil, a mapping or a list of mappings.
func (r *Result) Model() any { return r.data["model"] }

// ModelMap returns the model when it is a mapping.
func (r *Result) ModelMap() (map[string]any, bool) {
	m, ok := r.data["model"].(map[string]any)
	return m, ok
}

// Message returns the top-level message and whether one was present.
func (r *Result) Message() (string, bool) {
	return stringValue(r.data["message"])
}

// GatewayMessage is the card holder message of a mapping model.
func (r *Result) GatewayMessage() (string, bool) {
	m, ok := r.ModelMap()
	if !ok {
		return "", false
	}
	return stringValue(m["card_holder_message"])
}

// ErrorMessage is Message, falling back to GatewayMessage.
func (r *Result) ErrorMessage() string {
	if msg, ok := r.Message(); ok {
		return msg
	}
	msg, _ := r.GatewayMessage()
	return msg
}

// ReasonCode returns the model's reason code, if any.
func (r *Result) ReasonCode() (int, bool) {
	m, ok := r.ModelMap()
	if !ok {
		return 0, false
	}
	return intValue(m["reason_code"])
}

// Decimal reads a model amount without going through float64.
func (r *Result) Decimal(key string) (decimal.Decimal, error) {
	m, ok := r.ModelMap()
	if !ok {
		return decimal.Zero, fmt.Errorf("cloudpay: model is %T, not a mapping", r.Model())
	}
	switch v := m[key].(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case nil:
		return decimal.Zero, fmt.Errorf("cloudpay: model has no %q", key)
	default:
		return decimal.Zero, fmt.Errorf("cloudpay: model %q is %T", key, v)
	}
}

// DecodeModel re-encodes the model in wire form and decodes it into v, which
// lets callers use structs tagged with the gateway's field names.
func (r *Result) DecodeModel(v any) error {
	raw, err := Encode(r.Model())
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decode model: %v", ErrCodec, err)
	}
	return nil
}

// Err returns the error a raising call would have returned for r, or nil
// when r succeeded. Reason codes are mapped with the registry of the client
// that produced r, or DefaultRegistry.
func (r *Result) Err() error {
	registry := r.registry
	if registry == nil {
		registry = DefaultRegistry
	}
	return r.errFrom(registry)
}

func (r *Result) errFrom(registry *Registry) error {
	if r.Success() {
		return nil
	}
	if r.missing != nil {
		return &ValidationError{Keys: r.missing}
	}

	if code, ok := r.ReasonCode(); ok {
		msg, _ := r.GatewayMessage()
		if kind, ok := registry.LookupReason(code); ok {
			return &ReasonedGatewayError{Kind: kind, ReasonCode: code, Message: msg, Body: r.Model()}
		}
		return &GatewayError{Message: msg, Body: r.Model()}
	}

	msg, _ := r.Message()
	return &GatewayError{Message: msg, Body: r.Model()}
}

// Unwrap converts a non-raising call into its raising form returning the
// model: Unwrap(payments.Get(ctx, id, opts)).
func Unwrap(res *Result, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Model(), nil
}

// Succeeded converts a non-raising call into its raising form returning the
// success flag.
func Succeeded(res *Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	if err := res.Err(); err != nil {
		return false, err
	}
	return res.Success(), nil
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	default:
		return true
	}
}

func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	default:
		return fmt.Sprint(s), true
	}
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
