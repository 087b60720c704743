// Package cloudpay is a client for the CloudPayments payment gateway API:
//
//   - Named configurations (credentials, host, transport settings) held in a
//     Repo, with a per-context default that scoped calls can override
//   - Authenticated JSON POST pipeline translating between the gateway's
//     PascalCase keys and snake_case Attributes
//   - Error taxonomy keyed by HTTP status and by gateway reason code, with
//     runtime registration of unknown reason codes
//   - Namespaces for payments, orders, subscriptions and notifications
//   - Webhook HMAC-SHA256 verification and an http.Handler for deliveries
//   - Prometheus metrics and zap-backed structured logging
//
// Typical usage:
//
//	cloudpay.Configure(cloudpay.DefaultConfigName, func(c *cloudpay.Config) {
//	    c.PublicKey = "pk_..."
//	    c.SecretKey = "..."
//	})
//	client, _ := cloudpay.NewClient(nil)
//	res, err := client.Payments().Cards.Charge(ctx, cloudpay.Attributes{
//	    "amount":                 decimal.RequireFromString("10.50"),
//	    "ip_address":             "127.0.0.1",
//	    "card_cryptogram_packet": packet,
//	}, cloudpay.RequestOptions{IdempotencyKey: cloudpay.NewIdempotencyKey()})
//
// HTTP failures (status >= 300) are always returned as *HTTPError. Gateway
// declines come back as an unsuccessful *Result unless RequestOptions.RaiseOnError
// is set; Unwrap and Succeeded turn any call into its raising form.
package cloudpay
