package cloudpay

import "context"

// Notifications reads and changes the site's webhook settings.
type Notifications struct {
	ns *Namespace
}

// Notifications returns the notifications namespace.
func (c *Client) Notifications() *Notifications {
	return &Notifications{ns: NewNamespace(c, "/site/notifications")}
}

// Get returns the settings of one hook kind.
func (n *Notifications) Get(ctx context.Context, hook HookKind, opts RequestOptions) (*Result, error) {
	return n.ns.Request(ctx, string(hook)+"/get", nil, opts)
}

// Update changes the settings of one hook kind.
func (n *Notifications) Update(ctx context.Context, hook HookKind, attributes Attributes, opts RequestOptions) (*Result, error) {
	return n.ns.Request(ctx, string(hook)+"/update", attributes, opts)
}
