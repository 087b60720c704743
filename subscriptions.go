package cloudpay

import "context"

// Subscriptions manages recurrent payments.
type Subscriptions struct {
	ns *Namespace
}

// Subscriptions returns the subscriptions namespace.
func (c *Client) Subscriptions() *Subscriptions {
	return &Subscriptions{ns: NewNamespace(c, "/subscriptions")}
}

var subscriptionCreateKeys = []string{
	"account_id",
	"description",
	"email",
	"amount",
	"currency",
	"require_confirmation",
	"start_date",
	"interval",
	"period",
}

// Get fetches a subscription.
func (s *Subscriptions) Get(ctx context.Context, id string, opts RequestOptions) (*Result, error) {
	return s.ns.call(ctx, "get", Attributes{"id": id}, nil, opts)
}

// Find lists the subscriptions of an account.
func (s *Subscriptions) Find(ctx context.Context, accountID string, opts RequestOptions) (*Result, error) {
	return s.ns.call(ctx, "find", Attributes{"account_id": accountID}, nil, opts)
}

// Create starts a subscription.
func (s *Subscriptions) Create(ctx context.Context, attributes Attributes, opts RequestOptions) (*Result, error) {
	return s.ns.call(ctx, "create", attributes, subscriptionCreateKeys, opts)
}

// Update changes a subscription.
func (s *Subscriptions) Update(ctx context.Context, id string, attributes Attributes, opts RequestOptions) (*Result, error) {
	return s.ns.call(ctx, "update", with(attributes, "id", id), []string{"id"}, opts)
}

// Cancel stops a subscription.
func (s *Subscriptions) Cancel(ctx context.Context, id string, opts RequestOptions) (*Result, error) {
	return s.ns.call(ctx, "cancel", Attributes{"id": id}, nil, opts)
}
