package logging

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestID returns the id assigned by the HTTP request-id middleware, or "" outside
// of an HTTP request.
func RequestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// WithRequestID stores id the same way the HTTP middleware does, so CLI paths can
// tag their operations too.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, middleware.RequestIDKey, id)
}
