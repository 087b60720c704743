package cloudpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/undr/cloud-pay/internal/keycase"
)

// HookKind names a webhook the gateway can deliver.
type HookKind string

const (
	HookCheck     HookKind = "check"
	HookPay       HookKind = "pay"
	HookFail      HookKind = "fail"
	HookRecurrent HookKind = "recurrent"
	HookCancel    HookKind = "cancel"
	HookConfirm   HookKind = "confirm"
	HookRefund    HookKind = "refund"
	HookReceipt   HookKind = "receipt"
)

// Hooks lists every hook kind.
var Hooks = []HookKind{
	HookCheck,
	HookPay,
	HookFail,
	HookRecurrent,
	HookCancel,
	HookConfirm,
	HookRefund,
	HookReceipt,
}

// Valid reports whether k is one of Hooks.
func (k HookKind) Valid() bool {
	for _, hook := range Hooks {
		if hook == k {
			return true
		}
	}
	return false
}

const maxWebhookBody = 1 << 20

// Webhooks verifies and parses notifications sent by the gateway.
type Webhooks struct {
	repo    *Repo
	name    ConfigName
	named   bool
	config  *Config
	metrics *MetricsCollector
	logger  Logger
}

// WebhookOption configures Webhooks.
type WebhookOption func(*Webhooks)

// WithWebhookMetrics records verification outcomes on collector.
func WithWebhookMetrics(collector *MetricsCollector) WebhookOption {
	return func(w *Webhooks) {
		w.metrics = collector
	}
}

// WithWebhookLogger logs rejected and failed deliveries to logger.
func WithWebhookLogger(logger Logger) WebhookOption {
	return func(w *Webhooks) {
		w.logger = logger
	}
}

// NewWebhooks resolves ref on repo (DefaultRepo when nil) and returns a
// verifier keyed by the config's secret key. A nil, ConfigName or string ref
// is looked up on every verification, so later Configure calls apply.
func NewWebhooks(ref any, repo *Repo, options ...WebhookOption) (*Webhooks, error) {
	if repo == nil {
		repo = DefaultRepo
	}

	w := &Webhooks{repo: repo}
	if ref == nil {
		w.name, w.named = DefaultConfigName, true
	} else if name, ok := nameOf(ref); ok {
		w.name, w.named = name, true
	} else {
		cfg, err := repo.Resolve(context.Background(), ref)
		if err != nil {
			return nil, err
		}
		w.config = cfg
	}

	for _, option := range options {
		option(w)
	}
	return w, nil
}

// Config returns the configuration whose secret key signs notifications.
func (w *Webhooks) Config() *Config {
	if w.named {
		return w.repo.Config(w.name)
	}
	return w.config
}

func (w *Webhooks) activeLogger() Logger {
	if w.logger != nil {
		return w.logger
	}
	return w.Config().ActiveLogger()
}

// IsAuthentic reports whether signature is the base64 HMAC-SHA256 of data
// keyed by the secret key.
func (w *Webhooks) IsAuthentic(data []byte, signature string) bool {
	return w.verify(data, signature) == nil
}

// Verify is IsAuthentic returning a *SignatureError on mismatch.
func (w *Webhooks) Verify(data []byte, signature string) error {
	return w.verify(data, signature)
}

func (w *Webhooks) verify(data []byte, signature string) error {
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return &SignatureError{Cause: fmt.Errorf("decode signature: %w", err)}
	}

	mac := hmac.New(sha256.New, []byte(w.Config().SecretKey))
	mac.Write(data)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return &SignatureError{}
	}
	return nil
}

// ParseEvent decodes a JSON notification body into snake_case keyed data.
// It does not check the signature.
func (w *Webhooks) ParseEvent(raw []byte) (map[string]any, error) {
	value, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return map[string]any{}, nil
	}
	event, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: notification is %T, not an object", ErrCodec, value)
	}
	return event, nil
}

// EventFromValues converts a form-encoded notification into snake_case keyed
// data. Repeated fields become lists.
func (w *Webhooks) EventFromValues(values url.Values) map[string]any {
	event := make(map[string]any, len(values))
	for key, vals := range values {
		name := keycase.Underscore(key)
		switch len(vals) {
		case 0:
			event[name] = nil
		case 1:
			event[name] = vals[0]
		default:
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			event[name] = list
		}
	}
	return event
}

// WebhookFunc handles an authenticated notification.
type WebhookFunc func(ctx context.Context, hook HookKind, event map[string]any) error

// Handler serves deliveries of one hook kind. It verifies the Content-HMAC
// header (X-Content-HMAC as a fallback) against the raw body, parses JSON or
// form bodies, calls fn and acknowledges with {"code":0}. Bad signatures get
// 401, unparsable bodies 400 and fn errors 500.
func (w *Webhooks) Handler(hook HookKind, fn WebhookFunc) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, maxWebhookBody))
		if err != nil {
			http.Error(rw, "cannot read body", http.StatusBadRequest)
			return
		}

		signature := r.Header.Get("Content-HMAC")
		if signature == "" {
			signature = r.Header.Get("X-Content-HMAC")
		}

		if err := w.Verify(body, signature); err != nil {
			w.metrics.RecordWebhookVerification(string(hook), false)
			if logger := w.activeLogger(); logger != nil {
				logger.Warn("Rejected webhook", "hook", string(hook), "remote", r.RemoteAddr, "error", err)
			}
			http.Error(rw, "invalid signature", http.StatusUnauthorized)
			return
		}
		w.metrics.RecordWebhookVerification(string(hook), true)

		event, err := w.parseBody(r.Header.Get("Content-Type"), body)
		if err != nil {
			http.Error(rw, "cannot parse body", http.StatusBadRequest)
			return
		}

		if err := fn(r.Context(), hook, event); err != nil {
			if logger := w.activeLogger(); logger != nil {
				logger.Error("Webhook handler failed", "hook", string(hook), "error", err)
			}
			http.Error(rw, "handler failed", http.StatusInternalServerError)
			return
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]int{"code": 0})
	})
}

func (w *Webhooks) parseBody(contentType string, body []byte) (map[string]any, error) {
	if jsonContentType.MatchString(contentType) {
		return w.ParseEvent(body)
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	return w.EventFromValues(values), nil
}
