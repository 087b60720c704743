package cloudpay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"

	"github.com/shopspring/decimal"
)

var jsonContentType = regexp.MustCompile(`json`)

// Encode serializes an internal payload into a wire JSON body. A nil payload
// yields an empty body rather than the literal "null".
func Encode(data any) ([]byte, error) {
	if isNilPayload(data) {
		return []byte{}, nil
	}

	body, err := json.Marshal(normalizeAmounts(ToWire(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrCodec, err)
	}
	return body, nil
}

// Decode parses a wire JSON body into its internal form. Empty input decodes
// to nil. Numbers are kept as json.Number so amounts survive unrounded.
func Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrCodec)
	}
	return FromWire(value), nil
}

// DecodeBody decodes a response body according to its content type. Only
// JSON content types are parsed; anything else is returned as raw text.
func DecodeBody(contentType string, body []byte) (any, error) {
	if jsonContentType.MatchString(contentType) {
		return Decode(body)
	}
	return string(body), nil
}

func isNilPayload(data any) bool {
	switch v := data.(type) {
	case nil:
		return true
	case map[string]any:
		return v == nil
	case []any:
		return v == nil
	default:
		return false
	}
}

// normalizeAmounts replaces decimal values with JSON numbers; decimal's own
// MarshalJSON quotes the value, which the gateway rejects for amounts.
func normalizeAmounts(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = normalizeAmounts(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = normalizeAmounts(item)
		}
		return v
	case decimal.Decimal:
		return json.Number(v.String())
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		return json.Number(v.String())
	default:
		return value
	}
}
