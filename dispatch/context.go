package dispatch

// Context is the cross-handler store of one top-level traversal. It holds
// a keyed value map and the return-value history of every handler, and is
// released when the traversal returns. There is no process-wide state.
type Context struct {
	values  map[string]any
	returns map[string][]any
}

// NewContext returns an empty store.
func NewContext() *Context {
	return &Context{
		values:  map[string]any{},
		returns: map[string][]any{},
	}
}

// Set stores a value under key.
func (c *Context) Set(key string, v any) { c.values[key] = v }

// Get reads the value under key; the second result reports presence.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString reads the value under key as a string, "" when missing or of
// another type.
func (c *Context) GetString(key string) string {
	if v, ok := c.values[key].(string); ok {
		return v
	}
	return ""
}

// Delete removes the value under key.
func (c *Context) Delete(key string) { delete(c.values, key) }

func (c *Context) recordReturn(handler string, v any) {
	c.returns[handler] = append(c.returns[handler], v)
}

// LastReturn is the most recent value returned by the named handler; ok
// is false when it has not fired.
func (c *Context) LastReturn(handler string) (any, bool) {
	rets := c.returns[handler]
	if len(rets) == 0 {
		return nil, false
	}
	return rets[len(rets)-1], true
}

// Returns is the full return history of the named handler, oldest first.
func (c *Context) Returns(handler string) []any {
	return append([]any(nil), c.returns[handler]...)
}
