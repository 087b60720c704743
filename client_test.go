package cloudpay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testPublicKey          = "pk_test"
	testSecretKey          = "secret"
	contentTypeJSON        = "application/json"
	failedWriteResponseMsg = "Failed to write response: %v"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf(failedWriteResponseMsg, err)
	}
}

// newTestClient returns a client whose default config points at server.
func newTestClient(t *testing.T, server *httptest.Server, options ...Option) (*Client, *Repo) {
	t.Helper()
	repo := NewRepo()
	repo.Configure(DefaultConfigName, func(c *Config) {
		c.Host = server.URL
		c.PublicKey = testPublicKey
		c.SecretKey = testSecretKey
	})

	client, err := NewClient(nil, append([]Option{WithRepo(repo), WithRegistry(NewRegistry())}, options...)...)
	if err != nil {
		t.Fatalf("NewClient() returned error: %v", err)
	}
	return client, repo
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(nil)
	if err != nil {
		t.Fatalf("NewClient() returned error: %v", err)
	}
	if client.repo != DefaultRepo || client.registry != DefaultRegistry {
		t.Error("Expected default repo and registry")
	}
	if client.userAgent != UserAgent() {
		t.Errorf("Expected user agent %s, got %s", UserAgent(), client.userAgent)
	}
	if client.config != nil {
		t.Error("Expected a nil ref to defer config resolution")
	}
}

func TestNewClientResolvesRef(t *testing.T) {
	repo := NewRepo()
	repo.Configure("shop", func(c *Config) { c.PublicKey = "shop-pk" })

	client, err := NewClient(ConfigName("shop"), WithRepo(repo))
	if err != nil {
		t.Fatalf("NewClient() returned error: %v", err)
	}
	cfg, _ := client.Config(context.Background())
	if cfg.PublicKey != "shop-pk" {
		t.Errorf("Expected shop-pk, got %s", cfg.PublicKey)
	}

	if _, err := NewClient(3.14, WithRepo(repo)); !errors.Is(err, ErrConfigResolution) {
		t.Errorf("Expected ErrConfigResolution, got %v", err)
	}
}

func TestSendRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/payments/find" {
			t.Errorf("Expected path /payments/find, got %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != testPublicKey || pass != testSecretKey {
			t.Errorf("Expected basic auth %s/%s, got %s/%s", testPublicKey, testSecretKey, user, pass)
		}
		if got := r.Header.Get("Content-Type"); got != contentTypeJSON {
			t.Errorf("Expected Content-Type application/json, got %s", got)
		}
		if got := r.Header.Get("X-Request-ID"); got != "idem-1" {
			t.Errorf("Expected X-Request-ID idem-1, got %s", got)
		}
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "cloud-pay-go/") {
			t.Errorf("Expected cloud-pay-go user agent, got %s", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["InvoiceId"] != "1234567" {
			t.Errorf("Expected InvoiceId=1234567, got %v", body)
		}

		writeJSON(t, w, http.StatusOK, `{"Model":{"TransactionId":504,"CardHolderMessage":"Оплата успешно проведена"},"Success":true,"Message":null}`)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	resp, err := client.Send(context.Background(), "/payments/find", Attributes{"invoice_id": "1234567"}, RequestOptions{IdempotencyKey: "idem-1"})
	if err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	res := resp.Result()
	if !res.Success() {
		t.Error("Expected successful result")
	}
	if msg, _ := res.GatewayMessage(); msg != "Оплата успешно проведена" {
		t.Errorf("Expected UTF-8 gateway message, got %q", msg)
	}
	if !strings.Contains(resp.OriginBody(), `"TransactionId":504`) {
		t.Errorf("Expected raw body to be kept, got %s", resp.OriginBody())
	}
}

func TestSendWithoutIdempotencyKeyOrBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["X-Request-Id"]; ok {
			t.Error("Expected no X-Request-ID header")
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("Expected empty body, got %q", body)
		}
		writeJSON(t, w, http.StatusOK, `{"Success":true}`)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	if _, err := client.Send(context.Background(), "/test", nil, RequestOptions{}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
}

func TestSendConnectionHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Merchant"); got != "shop-1" {
			t.Errorf("Expected X-Merchant shop-1, got %s", got)
		}
		writeJSON(t, w, http.StatusOK, `{"Success":true}`)
	}))
	defer server.Close()

	client, repo := newTestClient(t, server)
	repo.Configure(DefaultConfigName, func(c *Config) {
		c.ConnectionOptions.Headers = map[string]string{"X-Merchant": "shop-1"}
	})

	if _, err := client.Send(context.Background(), "/test", nil, RequestOptions{}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
}

func TestSendHTTPErrorAlwaysReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Not Found"))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client, repo := newTestClient(t, server)
	repo.Configure(DefaultConfigName, func(c *Config) { c.Logger = NewZapLogger(zap.New(core)) })
	notFound, _ := KindForStatus(404)

	for _, raise := range []bool{false, true} {
		_, err := client.Payments().Get(context.Background(), 12345, RequestOptions{RaiseOnError: raise})
		if !errors.Is(err, notFound) {
			t.Fatalf("Expected NotFound with RaiseOnError=%v, got %v", raise, err)
		}

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || httpErr.Error() != "[404] Not Found" {
			t.Errorf("Expected '[404] Not Found', got %v", err)
		}
	}

	fatal := logs.FilterLevelExact(zapcore.FatalLevel).All()
	if len(fatal) != 2 {
		t.Fatalf("Expected 2 fatal log entries, got %d", len(fatal))
	}
	if fatal[0].Message != "[404] Not Found" {
		t.Errorf("Expected fatal message '[404] Not Found', got '%s'", fatal[0].Message)
	}
}

func TestSendUnknownStatusIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(599)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	_, err := client.Send(context.Background(), "/test", nil, RequestOptions{})
	if !errors.Is(err, KindServerError) || !errors.Is(err, ErrServer) {
		t.Errorf("Expected generic server error, got %v", err)
	}
}

func TestSendTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, _ := newTestClient(t, server)
	server.Close()

	_, err := client.Send(context.Background(), "/test", nil, RequestOptions{})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
	if errors.Is(err, ErrServer) {
		t.Error("Expected transport error not to be an HTTP error")
	}
}

func TestSendNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	resp, err := client.Send(context.Background(), "/test", nil, RequestOptions{})
	if err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	if resp.Body != "pong" {
		t.Errorf("Expected raw text body, got %v", resp.Body)
	}
	if resp.Result().Success() {
		t.Error("Expected non-object body to give a failed result")
	}
}

func TestSendScopedDefaultConfig(t *testing.T) {
	var lastUser atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, _ := r.BasicAuth()
		lastUser.Store(user)
		writeJSON(t, w, http.StatusOK, `{"Success":true}`)
	}))
	defer server.Close()

	client, repo := newTestClient(t, server)
	repo.Configure("second", func(c *Config) {
		c.Host = server.URL
		c.PublicKey = "second-pk"
		c.SecretKey = testSecretKey
	})

	err := repo.WithScopedDefault(context.Background(), "second", func(ctx context.Context) error {
		_, err := client.Send(ctx, "/test", nil, RequestOptions{})
		return err
	})
	if err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	if lastUser.Load() != "second-pk" {
		t.Errorf("Expected scoped config to be used, got %v", lastUser.Load())
	}

	if _, err := client.Send(context.Background(), "/test", nil, RequestOptions{}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	if lastUser.Load() != testPublicKey {
		t.Errorf("Expected default config outside the scope, got %v", lastUser.Load())
	}

	if _, err := client.Send(context.Background(), "/test", nil, RequestOptions{Config: map[string]any{"public_key": "inline"}}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	if lastUser.Load() != "inline" {
		t.Errorf("Expected per-call override, got %v", lastUser.Load())
	}
}

func TestSendMiddlewareOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Trace"); got != "first,second" {
			t.Errorf("Expected X-Trace first,second, got %s", got)
		}
		writeJSON(t, w, http.StatusOK, `{"Success":true}`)
	}))
	defer server.Close()

	trace := func(name string) Middleware {
		return func(req *http.Request, next RoundTripper) (*http.Response, error) {
			value := name
			if prev := req.Header.Get("X-Trace"); prev != "" {
				value = prev + "," + name
			}
			req.Header.Set("X-Trace", value)
			return next.RoundTrip(req)
		}
	}

	client, _ := newTestClient(t, server, WithMiddleware(trace("first"), trace("second")))
	if _, err := client.Send(context.Background(), "/test", nil, RequestOptions{}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
}

func TestSendMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(t, w, http.StatusOK, `{"Success":true}`)
	}))
	defer server.Close()

	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())
	client, _ := newTestClient(t, server, WithMetricsCollector(collector))

	_, _ = client.Send(context.Background(), "/test", nil, RequestOptions{})
	_, _ = client.Send(context.Background(), "/missing", nil, RequestOptions{})

	if got := testutil.ToFloat64(collector.requestsTotal.WithLabelValues("/test", "200")); got != 1 {
		t.Errorf("Expected 1 successful request, got %v", got)
	}
	if got := testutil.ToFloat64(collector.httpErrorsTotal.WithLabelValues("/missing", "NotFound")); got != 1 {
		t.Errorf("Expected 1 NotFound, got %v", got)
	}
	if got := testutil.ToFloat64(collector.requestsInFlight.WithLabelValues("/test")); got != 0 {
		t.Errorf("Expected no requests in flight, got %v", got)
	}
}

func TestSendDebugLogging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `{"Success":true}`)
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client, _ := newTestClient(t, server,
		WithDebug(),
		WithLogger(NewZapLogger(zap.New(core))),
		WithRequestIDGenerator(func() string { return "req-42" }),
	)

	if _, err := client.Send(context.Background(), "/test", nil, RequestOptions{}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}

	entries := logs.FilterField(zap.String("requestID", "req-42")).All()
	if len(entries) != 2 {
		t.Errorf("Expected request and response debug entries, got %d", len(entries))
	}
}

func TestPing(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"success", http.StatusOK, `{"Success":true,"Message":"It's work!"}`, true},
		{"unsuccessful", http.StatusOK, `{"Success":false}`, false},
		{"empty body", http.StatusOK, ``, false},
		{"server error", http.StatusInternalServerError, `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/test" {
					t.Errorf("Expected path /test, got %s", r.URL.Path)
				}
				writeJSON(t, w, tt.status, tt.body)
			}))
			defer server.Close()

			client, _ := newTestClient(t, server)
			if got := client.Ping(context.Background()); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPingUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, _ := newTestClient(t, server)
	server.Close()

	if client.Ping(context.Background()) {
		t.Error("Expected false for an unreachable gateway")
	}
}

func TestTransportReuse(t *testing.T) {
	client, err := NewClient(nil, WithRepo(NewRepo()))
	if err != nil {
		t.Fatalf("NewClient() returned error: %v", err)
	}

	a, _ := client.transportFor(NewConfig())
	b, _ := client.transportFor(NewConfig())
	if a != b {
		t.Error("Expected configs with equal connection options to share a transport")
	}

	cfg := NewConfig()
	cfg.ConnectionOptions.Timeout = 1
	c, _ := client.transportFor(cfg)
	if c == a {
		t.Error("Expected a different transport for different connection options")
	}

	custom := &http.Client{}
	client.httpClient = custom
	if got, _ := client.transportFor(cfg); got != custom {
		t.Error("Expected WithHTTPClient to win")
	}
}

func TestSendIdempotencyKeyReplacesConnectionHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Request-ID"); got != "idem-2" {
			t.Errorf("Expected X-Request-ID idem-2, got %s", got)
		}
		if got := r.Header.Get("X-Merchant"); got != "" {
			t.Errorf("Expected no X-Merchant header with an idempotency key, got %s", got)
		}
		if got := r.Header.Get("Content-Type"); got != contentTypeJSON {
			t.Errorf("Expected Content-Type application/json, got %s", got)
		}
		writeJSON(t, w, http.StatusOK, `{"Success":true}`)
	}))
	defer server.Close()

	client, repo := newTestClient(t, server)
	repo.Configure(DefaultConfigName, func(c *Config) {
		c.ConnectionOptions.Headers = map[string]string{"X-Merchant": "shop-1"}
	})

	if _, err := client.Send(context.Background(), "/test", nil, RequestOptions{IdempotencyKey: "idem-2"}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
}

func TestNamedClientFollowsReconfigure(t *testing.T) {
	users := make(chan string, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, _ := r.BasicAuth()
		users <- user
		writeJSON(t, w, http.StatusOK, `{"Success":true}`)
	}))
	defer server.Close()

	repo := NewRepo()
	repo.Configure("prod", func(c *Config) {
		c.Host = server.URL
		c.PublicKey = "old"
	})

	client, err := NewClient(ConfigName("prod"), WithRepo(repo))
	if err != nil {
		t.Fatalf("NewClient() returned error: %v", err)
	}

	if _, err := client.Send(context.Background(), "/test", nil, RequestOptions{}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	repo.Configure("prod", func(c *Config) { c.PublicKey = "new" })
	if _, err := client.Send(context.Background(), "/test", nil, RequestOptions{}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}

	if got := <-users; got != "old" {
		t.Errorf("Expected first request as old, got %s", got)
	}
	if got := <-users; got != "new" {
		t.Errorf("Expected reconfigured request as new, got %s", got)
	}

	cfg, _ := client.Config(context.Background())
	if cfg.PublicKey != "new" {
		t.Errorf("Expected Config() to return the current config, got %s", cfg.PublicKey)
	}
}
