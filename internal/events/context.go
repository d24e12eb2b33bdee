package events

import "context"

type correlationIDKey struct{}

// WithCorrelationID stores a correlation id (typically the inbound request
// id) so the producer can stamp it onto envelopes published downstream.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey{}, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}
