package mid

import (
	"context"
	"net/http"

	"github.com/powlab/powchain/business/sys/metrics"
	"github.com/powlab/powchain/foundation/web"
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Add the metrics value into the context for metric gathering.
			ctx = metrics.Set(ctx)

			// Increment the request and goroutine counters.
			metrics.AddRequests(ctx)
			metrics.AddGoroutines(ctx)

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
