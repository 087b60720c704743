package cloudpay

import "github.com/undr/cloud-pay/internal/keycase"

// Attributes is a snake_case keyed request or response payload.
type Attributes = map[string]any

// ToWire rewrites every mapping key of value into the gateway's PascalCase
// form. Mappings are rebuilt key by key, sequences element-wise, and any
// other value is returned unchanged.
func ToWire(value any) any {
	return convertKeys(value, keycase.Camelize)
}

// FromWire is the inverse of ToWire: it rewrites PascalCase keys into the
// internal snake_case form.
func FromWire(value any) any {
	return convertKeys(value, keycase.Underscore)
}

func convertKeys(value any, convert func(string) string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[convert(key)] = convertKeys(item, convert)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convertKeys(item, convert)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convertKeys(item, convert)
		}
		return out
	default:
		return value
	}
}
