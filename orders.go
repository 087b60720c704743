package cloudpay

import "context"

// Orders manages payment links (invoices sent by e-mail).
type Orders struct {
	ns *Namespace
}

// Orders returns the orders namespace.
func (c *Client) Orders() *Orders {
	return &Orders{ns: NewNamespace(c, "/orders")}
}

// Create issues a payment link.
func (o *Orders) Create(ctx context.Context, attributes Attributes, opts RequestOptions) (*Result, error) {
	return o.ns.call(ctx, "create", attributes, []string{"amount", "description"}, opts)
}

// Cancel revokes a payment link.
func (o *Orders) Cancel(ctx context.Context, id string, opts RequestOptions) (*Result, error) {
	return o.ns.call(ctx, "cancel", Attributes{"id": id}, nil, opts)
}
