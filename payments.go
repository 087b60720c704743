package cloudpay

import "context"

// Payments covers one-off payment transactions under /payments.
type Payments struct {
	ns *Namespace

	Cards  *Cards
	Tokens *Tokens
}

// Payments returns the payments namespace.
func (c *Client) Payments() *Payments {
	return &Payments{
		ns:     NewNamespace(c, "/payments"),
		Cards:  &Cards{ns: NewNamespace(c, "/payments/cards")},
		Tokens: &Tokens{ns: NewNamespace(c, "/payments/tokens")},
	}
}

// Confirm completes a two-step (authorized) payment.
func (p *Payments) Confirm(ctx context.Context, transactionID int64, attributes Attributes, opts RequestOptions) (*Result, error) {
	return p.ns.call(ctx, "confirm", with(attributes, "transaction_id", transactionID), []string{"transaction_id", "amount"}, opts)
}

// Void cancels an authorized payment.
func (p *Payments) Void(ctx context.Context, transactionID int64, opts RequestOptions) (*Result, error) {
	return p.ns.call(ctx, "void", Attributes{"transaction_id": transactionID}, nil, opts)
}

// Cancel is an alias for Void.
func (p *Payments) Cancel(ctx context.Context, transactionID int64, opts RequestOptions) (*Result, error) {
	return p.Void(ctx, transactionID, opts)
}

// Refund returns money of a completed payment.
func (p *Payments) Refund(ctx context.Context, transactionID int64, attributes Attributes, opts RequestOptions) (*Result, error) {
	return p.ns.call(ctx, "refund", with(attributes, "transaction_id", transactionID), []string{"transaction_id", "amount"}, opts)
}

// Get fetches a transaction by id.
func (p *Payments) Get(ctx context.Context, transactionID int64, opts RequestOptions) (*Result, error) {
	return p.ns.call(ctx, "get", Attributes{"transaction_id": transactionID}, nil, opts)
}

// Find looks a payment up by invoice id. APIVersion 2 queries /v2/payments.
func (p *Payments) Find(ctx context.Context, invoiceID string, opts RequestOptions) (*Result, error) {
	if opts.APIVersion == 2 {
		opts.PathPrefix = "/v2/payments"
	}
	return p.ns.call(ctx, "find", Attributes{"invoice_id": invoiceID}, nil, opts)
}

// List returns the payments of a day; attributes must hold "date".
func (p *Payments) List(ctx context.Context, attributes Attributes, opts RequestOptions) (*Result, error) {
	return p.ns.call(ctx, "list", attributes, []string{"date"}, opts)
}

// Cards covers payments by card cryptogram under /payments/cards.
type Cards struct {
	ns *Namespace
}

var cardPaymentKeys = []string{"amount", "ip_address", "card_cryptogram_packet"}

// Charge makes a one-step card payment.
func (c *Cards) Charge(ctx context.Context, attributes Attributes, opts RequestOptions) (*Result, error) {
	return c.ns.call(ctx, "charge", attributes, cardPaymentKeys, opts)
}

// Auth authorizes a two-step card payment.
func (c *Cards) Auth(ctx context.Context, attributes Attributes, opts RequestOptions) (*Result, error) {
	return c.ns.call(ctx, "auth", attributes, cardPaymentKeys, opts)
}

// Post3DS completes 3-D Secure authentication of a transaction.
func (c *Cards) Post3DS(ctx context.Context, transactionID int64, attributes Attributes, opts RequestOptions) (*Result, error) {
	return c.ns.call(ctx, "post3ds", with(attributes, "transaction_id", transactionID), []string{"transaction_id", "pa_res"}, opts)
}

// Topup pays out to a card.
func (c *Cards) Topup(ctx context.Context, attributes Attributes, opts RequestOptions) (*Result, error) {
	return c.ns.call(ctx, "topup", attributes, []string{"name", "amount", "card_cryptogram_packet", "account_id", "currency"}, opts)
}

// Tokens covers payments by a saved card token under /payments/tokens.
type Tokens struct {
	ns *Namespace
}

var tokenPaymentKeys = []string{"amount", "account_id", "token"}

// Charge makes a one-step token payment.
func (t *Tokens) Charge(ctx context.Context, attributes Attributes, opts RequestOptions) (*Result, error) {
	return t.ns.call(ctx, "charge", attributes, tokenPaymentKeys, opts)
}

// Auth authorizes a two-step token payment.
func (t *Tokens) Auth(ctx context.Context, attributes Attributes, opts RequestOptions) (*Result, error) {
	return t.ns.call(ctx, "auth", attributes, tokenPaymentKeys, opts)
}

// Topup pays out to a tokenized card.
// TODO: the public API reference lists this endpoint under /payments/token;
// switch the prefix once the gateway confirms which one is canonical.
func (t *Tokens) Topup(ctx context.Context, attributes Attributes, opts RequestOptions) (*Result, error) {
	return t.ns.call(ctx, "topup", attributes, []string{"token", "amount", "account_id", "currency"}, opts)
}

// List returns the saved tokens of the merchant.
func (t *Tokens) List(ctx context.Context, opts RequestOptions) (*Result, error) {
	return t.ns.Request(ctx, "list", nil, opts)
}
