package cloudpay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client sends authenticated requests to the payment gateway. It is safe for
// concurrent use.
type Client struct {
	repo     *Repo
	registry *Registry

	// A named reference is looked up on every call so later Configure calls
	// apply. Other references are resolved once into config. With neither,
	// every call resolves the context's current default.
	name   ConfigName
	named  bool
	config *Config

	httpClient  *http.Client
	httpClients sync.Map // transportKey -> *http.Client

	middleware []Middleware
	metrics    *MetricsCollector
	debug      *DebugConfig
	logger     Logger
	userAgent  string
}

// NewClient creates a client for ref, which may be anything Repo.Resolve
// accepts. A nil ref defers resolution to each call, so scoped defaults set on
// the call's context apply. A ConfigName or string ref follows later
// Configure calls on that name.
func NewClient(ref any, options ...Option) (*Client, error) {
	client := &Client{
		repo:       DefaultRepo,
		registry:   DefaultRegistry,
		middleware: []Middleware{},
		debug:      DefaultDebugConfig(),
		userAgent:  UserAgent(),
	}

	for _, option := range options {
		option(client)
	}

	if name, ok := nameOf(ref); ok {
		client.name, client.named = name, true
	} else if ref != nil {
		cfg, err := client.repo.Resolve(context.Background(), ref)
		if err != nil {
			return nil, err
		}
		client.config = cfg
	}

	return client, nil
}

// Config returns the configuration a call made with ctx would use.
func (c *Client) Config(ctx context.Context) (*Config, error) {
	return c.resolveConfig(ctx, nil)
}

func (c *Client) resolveConfig(ctx context.Context, override any) (*Config, error) {
	if override != nil {
		return c.repo.Resolve(ctx, override)
	}
	if c.named {
		return c.repo.Config(c.name), nil
	}
	if c.config != nil {
		return c.config, nil
	}
	return c.repo.Resolve(ctx, nil)
}

type transportKey struct {
	timeout time.Duration
	proxy   string
}

func (c *Client) transportFor(cfg *Config) (*http.Client, error) {
	if c.httpClient != nil {
		return c.httpClient, nil
	}

	key := transportKey{cfg.ConnectionOptions.Timeout, cfg.ConnectionOptions.Proxy}
	if hc, ok := c.httpClients.Load(key); ok {
		return hc.(*http.Client), nil
	}

	hc, err := cfg.ConnectionOptions.newHTTPClient()
	if err != nil {
		return nil, err
	}
	actual, _ := c.httpClients.LoadOrStore(key, hc)
	return actual.(*http.Client), nil
}

// Send POSTs attributes to path on the configured host and returns the
// decoded response. Every status >= 300 is returned as an *HTTPError; there is
// no option to suppress it.
func (c *Client) Send(ctx context.Context, path string, attributes any, opts RequestOptions) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	cfg, err := c.resolveConfig(ctx, opts.Config)
	if err != nil {
		return nil, err
	}

	body, err := Encode(attributes)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(cfg.Host, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cloudpay: build request: %w", err)
	}
	c.prepareRequest(req, cfg, opts)

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}

	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("Starting request", "requestID", requestID, "url", req.URL.String(), "idempotencyKey", opts.IdempotencyKey, "bodySize", len(body))
	}

	c.metrics.RecordRequestStart(path)
	resp, err := c.roundTrip(cfg, req)
	c.metrics.RecordRequestEnd(path)

	if err != nil {
		c.metrics.RecordTransportError(path)
		if c.debugEnabled() {
			c.logger.Warn("Request failed", "requestID", requestID, "url", req.URL.String(), "error", err)
		}
		return nil, &TransportError{
			Method:    req.Method,
			URL:       req.URL.String(),
			RequestID: requestID,
			Duration:  time.Since(start),
			Cause:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.metrics.RecordRequest(path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &TransportError{
			Method:    req.Method,
			URL:       req.URL.String(),
			RequestID: requestID,
			Duration:  time.Since(start),
			Cause:     fmt.Errorf("read body: %w", err),
		}
	}

	if c.debugEnabled() && c.debug.LogResponses {
		c.logger.Debug("Received response", "requestID", requestID, "status", resp.StatusCode, "duration", time.Since(start))
	}

	if resp.StatusCode >= 300 {
		return nil, c.transportFailure(cfg, path, resp, raw)
	}

	return newResponse(resp.StatusCode, resp.Header, raw)
}

// prepareRequest sets auth and headers. The idempotency header replaces the
// configured connection headers rather than adding to them.
func (c *Client) prepareRequest(req *http.Request, cfg *Config, opts RequestOptions) {
	if opts.IdempotencyKey != "" {
		req.Header.Set("X-Request-ID", opts.IdempotencyKey)
	} else {
		for name, value := range cfg.ConnectionOptions.Headers {
			req.Header.Set(name, value)
		}
	}

	req.SetBasicAuth(cfg.PublicKey, cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

func (c *Client) transportFailure(cfg *Config, path string, resp *http.Response, raw []byte) error {
	kind, ok := KindForStatus(resp.StatusCode)
	if !ok {
		kind = KindServerError
	}
	c.metrics.RecordHTTPError(path, kind)

	httpErr := &HTTPError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Body:       string(raw),
		Header:     resp.Header,
	}
	if logger := cfg.ActiveLogger(); logger != nil {
		logger.Fatal(httpErr.Error(), "status", resp.StatusCode, "path", path, "kind", kind.Name())
	}
	return httpErr
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled && c.logger != nil
}

func (c *Client) roundTrip(cfg *Config, req *http.Request) (*http.Response, error) {
	hc, err := c.transportFor(cfg)
	if err != nil {
		return nil, err
	}
	return c.executeMiddleware(hc, req)
}

func (c *Client) executeMiddleware(hc *http.Client, req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return hc.Do(req)
	}

	current := RoundTripperFunc(hc.Do)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}

// Ping reports whether the gateway answers its test endpoint with success.
// Transport failures, HTTP errors and unsuccessful answers all yield false.
func (c *Client) Ping(ctx context.Context) bool {
	resp, err := c.Send(ctx, "/test", nil, RequestOptions{})
	if err != nil {
		return false
	}
	data, ok := resp.Body.(map[string]any)
	if !ok {
		return false
	}
	return truthy(data["success"])
}
