package unleash

import (
	"context"

	"github.com/Unleash/unleash-proxy-client-go/internal/model"
)

// GetContext returns a copy of the current context.
func (c *Client) GetContext() Context {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.context.Copy()
}

// UpdateContext replaces the mutable fields of the context and refreshes the toggles.
//
// AppName and Environment can't be changed; if they are set in newContext a warning is logged and
// they are ignored. The session id is kept unless newContext sets one.
func (c *Client) UpdateContext(ctx context.Context, newContext Context) {
	if newContext.AppName != "" || newContext.Environment != "" {
		c.loggers.Warn("appName and environment are static, they can't be updated with UpdateContext")
	}
	c.lock.Lock()
	updated := newContext.Copy()
	updated.AppName = c.context.AppName
	updated.Environment = c.context.Environment
	if updated.SessionID == "" {
		updated.SessionID = c.context.SessionID
	}
	c.context = updated
	c.lock.Unlock()

	c.refreshAfterContextChange(ctx)
}

// SetContextField sets one field of the context and refreshes the toggles. The names in FieldUserID,
// FieldSessionID, FieldRemoteAddress and FieldCurrentTime set those fields; any other name sets a
// custom property.
func (c *Client) SetContextField(ctx context.Context, field, value string) {
	if model.IsStaticField(field) {
		c.loggers.Warnf("%s is static, it can't be updated with SetContextField", field)
		return
	}
	c.lock.Lock()
	c.context = c.context.WithField(field, value)
	c.lock.Unlock()

	c.refreshAfterContextChange(ctx)
}

// RemoveContextField clears one field of the context, or removes a custom property, and refreshes
// the toggles.
func (c *Client) RemoveContextField(ctx context.Context, field string) {
	if model.IsStaticField(field) {
		c.loggers.Warnf("%s is static, it can't be removed", field)
		return
	}
	c.lock.Lock()
	c.context = c.context.WithoutField(field)
	c.lock.Unlock()

	c.refreshAfterContextChange(ctx)
}

// refreshAfterContextChange fetches for the new context. Before Start it does nothing, since the
// initial fetch will use the new context. After Start but before the client is ready it waits for
// readiness first, so it may block until ctx is done if the initial fetch keeps failing.
func (c *Client) refreshAfterContextChange(ctx context.Context) {
	c.lock.RLock()
	started := c.started
	c.lock.RUnlock()
	if !started {
		return
	}

	if !c.engine.IsPolling() && !c.engine.Fetched() {
		select {
		case <-c.readyCh:
		case <-ctx.Done():
			return
		}
	}
	c.engine.Fetch(ctx, c.GetContext())
}
