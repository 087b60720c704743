package cloudpay

import (
	"context"
	"regexp"
	"sort"
)

var repeatedSlashes = regexp.MustCompile(`/+`)

// Namespace groups gateway operations sharing a path prefix.
type Namespace struct {
	client *Client
	prefix string
}

// NewNamespace binds prefix to client. An empty prefix means "/".
func NewNamespace(client *Client, prefix string) *Namespace {
	if prefix == "" {
		prefix = "/"
	}
	return &Namespace{client: client, prefix: prefix}
}

// Client returns the client the namespace sends through.
func (n *Namespace) Client() *Client { return n.client }

// Prefix returns the namespace's path prefix.
func (n *Namespace) Prefix() string { return n.prefix }

// ResourcePath joins the prefix (or opts.PathPrefix) and path, squeezing
// repeated slashes. An empty path addresses the prefix itself.
func (n *Namespace) ResourcePath(path string, opts RequestOptions) string {
	prefix := n.prefix
	if opts.PathPrefix != "" {
		prefix = opts.PathPrefix
	}

	joined := prefix
	if path != "" {
		joined = prefix + "/" + path
	}
	return repeatedSlashes.ReplaceAllString(joined, "/")
}

// Request sends attributes to path and wraps the response in a Result. An
// unsuccessful result is returned as is unless opts.RaiseOnError is set, in
// which case it is converted to a *ReasonedGatewayError (known reason code) or
// a *GatewayError.
func (n *Namespace) Request(ctx context.Context, path string, attributes any, opts RequestOptions) (*Result, error) {
	resourcePath := n.ResourcePath(path, opts)

	resp, err := n.client.Send(ctx, resourcePath, attributes, opts)
	if err != nil {
		return nil, err
	}

	result := resp.Result()
	result.registry = n.client.registry

	if result.Success() {
		return result, nil
	}

	n.client.metrics.RecordGatewayFailure(resourcePath, n.failureReason(result))
	if opts.RaiseOnError {
		return nil, result.errFrom(n.client.registry)
	}
	return result, nil
}

func (n *Namespace) failureReason(result *Result) string {
	code, ok := result.ReasonCode()
	if !ok {
		return "none"
	}
	if kind, ok := n.client.registry.LookupReason(code); ok {
		return kind.Name()
	}
	return "unknown"
}

// RunIfValid calls fn only when none of keys is missing (absent or nil) from
// attributes. A nil keys list requires every attribute present in the map.
// On a miss no request is made: the call fails with a *ValidationError when
// opts.RaiseOnError is set, and otherwise returns a failed Result whose
// error message lists keys.
func (n *Namespace) RunIfValid(ctx context.Context, attributes Attributes, keys []string, opts RequestOptions, fn func(ctx context.Context, attributes Attributes) (*Result, error)) (*Result, error) {
	if keys == nil {
		keys = sortedKeys(attributes)
	}

	if missingAny(attributes, keys) {
		n.client.metrics.RecordValidationFailure(n.prefix)
		if opts.RaiseOnError {
			return nil, &ValidationError{Keys: keys}
		}
		result := validationResult(keys)
		result.registry = n.client.registry
		return result, nil
	}

	return fn(ctx, attributes)
}

// call is the common "validate, then request" shape of namespace operations.
func (n *Namespace) call(ctx context.Context, path string, attributes Attributes, keys []string, opts RequestOptions) (*Result, error) {
	return n.RunIfValid(ctx, attributes, keys, opts, func(ctx context.Context, attributes Attributes) (*Result, error) {
		return n.Request(ctx, path, attributes, opts)
	})
}

func missingAny(attributes Attributes, keys []string) bool {
	for _, key := range keys {
		if attributes[key] == nil {
			return true
		}
	}
	return false
}

func sortedKeys(attributes Attributes) []string {
	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// with returns a copy of attributes with key set to value.
func with(attributes Attributes, key string, value any) Attributes {
	out := make(Attributes, len(attributes)+1)
	for k, v := range attributes {
		out[k] = v
	}
	out[key] = value
	return out
}
