package cloudpay

import (
	"net/http"
	"sync"
)

// WithRepo resolves configuration references against repo instead of
// DefaultRepo.
func WithRepo(repo *Repo) Option {
	return func(c *Client) {
		if repo != nil {
			c.repo = repo
		}
	}
}

// WithRegistry maps reason codes with registry instead of DefaultRegistry.
func WithRegistry(registry *Registry) Option {
	return func(c *Client) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithHTTPClient sets a custom HTTP client. Connection options of the
// resolved configs are then ignored, except for extra headers.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithMiddleware adds middleware to the client
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// defaultMetrics is the collector registered on the default registerer. It is
// built once because a second registration of the same names panics.
var defaultMetrics = sync.OnceValue(NewMetricsCollector)

// WithMetrics enables Prometheus metrics collection on the default
// registerer. Every client using it shares one collector.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = defaultMetrics()
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithDebug enables debug logging with default configuration
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithLogger sets the logger used for debug output. Transport failures are
// still logged to the resolved config's logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithConsoleLogger enables debug logging through the default zap console
// logger.
func WithConsoleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewDefaultLogger()
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}
