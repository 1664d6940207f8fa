// Package events decouples signing side effects from the request path.
package events

import (
	"context"
	"strings"
)

// Event names a document change that subscribers may be notified about.
type Event struct {
	Type       string
	DocumentID string
	RequestID  string
}

// Publisher hands an event off for delivery. Publish must not wait for
// subscribers to be notified.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// HandlerFunc delivers an event; it is called off the request path.
type HandlerFunc func(ctx context.Context, e Event)

type requestIDKey struct{}

// WithRequestID stores the originating request id for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if strings.TrimSpace(requestID) == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
