package api

import (
	"context"
	"time"
)

// QueryTimeout is the fallback timeout for database queries when the config
// supplies none.
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context bounded by timeout. A non-positive
// timeout falls back to QueryTimeout.
func WithQueryTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		timeout = QueryTimeout
	}
	return context.WithTimeout(parent, timeout)
}
