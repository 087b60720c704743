package cloudpay

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultHost is the production API origin.
const DefaultHost = "https://api.cloudpayments.ru"

// DefaultTimeout applies when ConnectionOptions.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// ConnectionOptions are the transport settings used to build the HTTP client
// for a configuration.
type ConnectionOptions struct {
	Timeout time.Duration
	Proxy   string
	Headers map[string]string
}

// Clone returns a copy whose Headers map does not alias the receiver's.
func (o ConnectionOptions) Clone() ConnectionOptions {
	clone := o
	if o.Headers != nil {
		clone.Headers = make(map[string]string, len(o.Headers))
		for k, v := range o.Headers {
			clone.Headers[k] = v
		}
	}
	return clone
}

// Config holds the credentials and transport settings for one merchant
// account. Configs stored in a Repo are replaced, never mutated in place, so a
// *Config obtained from Resolve can be read without locking.
type Config struct {
	Host              string
	PublicKey         string
	SecretKey         string
	ConnectionOptions ConnectionOptions

	// Log enables the default stderr logger when Logger is nil.
	Log    bool
	Logger Logger
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{Host: DefaultHost}
}

// Clone returns a copy of c with its connection options deep-copied.
func (c *Config) Clone() *Config {
	clone := *c
	clone.ConnectionOptions = c.ConnectionOptions.Clone()
	return &clone
}

var defaultLogger = sync.OnceValue(NewDefaultLogger)

// ActiveLogger returns the logger requests should write to: Logger when set,
// the shared default logger when Log is true, nil otherwise.
func (c *Config) ActiveLogger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.Log {
		return defaultLogger()
	}
	return nil
}

// Overrides is a partial Config. Nil fields leave the base value untouched.
type Overrides struct {
	Host              *string
	PublicKey         *string
	SecretKey         *string
	ConnectionOptions *ConnectionOptions
	Log               *bool
	Logger            Logger
}

// Merge returns a copy of c with o overlaid. c is left untouched.
func (c *Config) Merge(o Overrides) *Config {
	merged := c.Clone()
	if o.Host != nil {
		merged.Host = *o.Host
	}
	if o.PublicKey != nil {
		merged.PublicKey = *o.PublicKey
	}
	if o.SecretKey != nil {
		merged.SecretKey = *o.SecretKey
	}
	if o.ConnectionOptions != nil {
		merged.ConnectionOptions = o.ConnectionOptions.Clone()
	}
	if o.Log != nil {
		merged.Log = *o.Log
	}
	if o.Logger != nil {
		merged.Logger = o.Logger
	}
	return merged
}

// OverridesFromMap reads snake_case keyed settings (host, public_key,
// secret_key, connection_options, log, logger) into Overrides. Unknown keys are
// ignored; a known key holding a value of the wrong type is an error.
func OverridesFromMap(m map[string]any) (Overrides, error) {
	var o Overrides
	var problems []string

	str := func(key string) *string {
		v, ok := m[key]
		if !ok {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s must be a string, got %T", key, v))
			return nil
		}
		return &s
	}

	o.Host = str("host")
	o.PublicKey = str("public_key")
	o.SecretKey = str("secret_key")

	if v, ok := m["log"]; ok {
		if b, ok := v.(bool); ok {
			o.Log = &b
		} else {
			problems = append(problems, fmt.Sprintf("log must be a bool, got %T", v))
		}
	}

	if v, ok := m["logger"]; ok && v != nil {
		if l, ok := v.(Logger); ok {
			o.Logger = l
		} else {
			problems = append(problems, fmt.Sprintf("logger must implement Logger, got %T", v))
		}
	}

	if v, ok := m["connection_options"]; ok {
		opts, err := connectionOptionsFrom(v)
		if err != nil {
			problems = append(problems, err.Error())
		} else {
			o.ConnectionOptions = &opts
		}
	}

	if len(problems) > 0 {
		return Overrides{}, fmt.Errorf("invalid overrides: %s", strings.Join(problems, "; "))
	}
	return o, nil
}

func connectionOptionsFrom(v any) (ConnectionOptions, error) {
	switch opts := v.(type) {
	case ConnectionOptions:
		return opts, nil
	case *ConnectionOptions:
		if opts == nil {
			return ConnectionOptions{}, nil
		}
		return *opts, nil
	case map[string]any:
		var out ConnectionOptions
		if t, ok := opts["timeout"]; ok {
			switch d := t.(type) {
			case time.Duration:
				out.Timeout = d
			case int:
				out.Timeout = time.Duration(d) * time.Second
			case float64:
				out.Timeout = time.Duration(d * float64(time.Second))
			default:
				return ConnectionOptions{}, fmt.Errorf("connection_options.timeout must be a duration or seconds, got %T", t)
			}
		}
		if p, ok := opts["proxy"]; ok {
			s, ok := p.(string)
			if !ok {
				return ConnectionOptions{}, fmt.Errorf("connection_options.proxy must be a string, got %T", p)
			}
			out.Proxy = s
		}
		if h, ok := opts["headers"]; ok {
			switch headers := h.(type) {
			case map[string]string:
				out.Headers = headers
			case map[string]any:
				out.Headers = make(map[string]string, len(headers))
				for k, v := range headers {
					out.Headers[k] = fmt.Sprint(v)
				}
			default:
				return ConnectionOptions{}, fmt.Errorf("connection_options.headers must be a map, got %T", h)
			}
		}
		return out.Clone(), nil
	default:
		return ConnectionOptions{}, fmt.Errorf("connection_options must be a map or ConnectionOptions, got %T", v)
	}
}

// Validate reports every problem with c at once. Resolve never calls it:
// configs are allowed to be incomplete until a request is made.
func (c *Config) Validate() error {
	var problems []string

	if c.Host == "" {
		problems = append(problems, "host is required")
	} else if u, err := url.Parse(c.Host); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("host %q must be an absolute http(s) URL", c.Host))
	}

	if c.PublicKey == "" {
		problems = append(problems, "public_key is required")
	}
	if c.SecretKey == "" {
		problems = append(problems, "secret_key is required")
	}

	if c.ConnectionOptions.Timeout < 0 {
		problems = append(problems, "connection_options.timeout must be non-negative")
	}
	if c.ConnectionOptions.Proxy != "" {
		if _, err := url.Parse(c.ConnectionOptions.Proxy); err != nil {
			problems = append(problems, fmt.Sprintf("connection_options.proxy: %v", err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// newHTTPClient builds the transport described by the connection options.
func (o ConnectionOptions) newHTTPClient() (*http.Client, error) {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{Timeout: timeout}
	if o.Proxy != "" {
		proxyURL, err := url.Parse(o.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy: %w", err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		client.Transport = transport
	}
	return client, nil
}
