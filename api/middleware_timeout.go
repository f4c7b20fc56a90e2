package api

import (
	"net/http"
	"time"
)

// TimeoutMiddleware bounds every request by timeout. http.TimeoutHandler
// serializes writer access between the handler goroutine and the timeout
// path, so a handler that outlives its deadline cannot race the error
// response.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, `{"response": "request timed out"}`)
	}
}
