package cloudpay

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector provides Prometheus metrics for gateway calls and webhook
// verification. A nil collector is valid and records nothing.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	httpErrorsTotal     *prometheus.CounterVec
	gatewayFailures     *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	transportErrors     *prometheus.CounterVec
	webhookVerification *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudpay_requests_total",
				Help: "Total number of gateway requests made",
			},
			[]string{"path", "status_code"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cloudpay_request_duration_seconds",
				Help:    "Duration of gateway requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "status_code"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cloudpay_requests_in_flight",
				Help: "Number of gateway requests currently in flight",
			},
			[]string{"path"},
		),
		httpErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudpay_http_errors_total",
				Help: "Total number of responses with a status >= 300, by error kind",
			},
			[]string{"path", "kind"},
		),
		gatewayFailures: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudpay_gateway_failures_total",
				Help: "Total number of unsuccessful gateway results, by reason",
			},
			[]string{"path", "reason"},
		),
		validationFailures: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudpay_validation_failures_total",
				Help: "Total number of calls rejected before sending for missing attributes",
			},
			[]string{"path"},
		),
		transportErrors: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudpay_transport_errors_total",
				Help: "Total number of requests that got no HTTP response",
			},
			[]string{"path"},
		),
		webhookVerification: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudpay_webhook_verifications_total",
				Help: "Total number of webhook signature checks, by hook and outcome",
			},
			[]string{"hook", "result"},
		),
	}

	info := GetVersionInfo()
	promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name:        "cloudpay_build_info",
		Help:        "Library build information, always 1",
		ConstLabels: prometheus.Labels(info),
	}).Set(1)

	if reg, ok := registry.(*prometheus.Registry); ok {
		mc.registry = reg
	}

	return mc
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(path string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(path, statusCodeStr).Inc()
	mc.requestDuration.WithLabelValues(path, statusCodeStr).Observe(duration.Seconds())
}

// RecordRequestStart increments in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(path string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(path).Inc()
}

// RecordRequestEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(path string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(path).Dec()
}

// RecordHTTPError counts a status >= 300 by its error kind name.
func (mc *MetricsCollector) RecordHTTPError(path string, kind *ErrorKind) {
	if mc == nil || kind == nil {
		return
	}

	mc.httpErrorsTotal.WithLabelValues(path, kind.Name()).Inc()
}

// RecordGatewayFailure counts an unsuccessful result. reason is the reason
// code kind name, or "unknown" when the model carried none.
func (mc *MetricsCollector) RecordGatewayFailure(path, reason string) {
	if mc == nil {
		return
	}

	mc.gatewayFailures.WithLabelValues(path, reason).Inc()
}

// RecordValidationFailure counts a call rejected for missing attributes.
func (mc *MetricsCollector) RecordValidationFailure(path string) {
	if mc == nil {
		return
	}

	mc.validationFailures.WithLabelValues(path).Inc()
}

// RecordTransportError counts a request that failed without a response.
func (mc *MetricsCollector) RecordTransportError(path string) {
	if mc == nil {
		return
	}

	mc.transportErrors.WithLabelValues(path).Inc()
}

// RecordWebhookVerification counts a webhook signature check.
func (mc *MetricsCollector) RecordWebhookVerification(hook string, authentic bool) {
	if mc == nil {
		return
	}

	result := "rejected"
	if authentic {
		result = "accepted"
	}
	mc.webhookVerification.WithLabelValues(hook, result).Inc()
}

// GetRegistry exposes the underlying prometheus registry. It is nil when the
// collector was built on a Registerer that is not a *prometheus.Registry.
func (mc *MetricsCollector) GetRegistry() *prometheus.Registry {
	if mc == nil {
		return nil
	}
	return mc.registry
}

// Handler serves the collector's registry in the Prometheus exposition
// format, falling back to the default gatherer.
func (mc *MetricsCollector) Handler() http.Handler {
	if reg := mc.GetRegistry(); reg != nil {
		return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}
