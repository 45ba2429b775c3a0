package audit

import "context"

type clientKey struct{}

// ContextWithClient carries the parsed browser/OS summary of the triggering
// request down to where the event is emitted.
func ContextWithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// ClientFromContext returns the client summary, or "" when none was set.
func ClientFromContext(ctx context.Context) string {
	client, _ := ctx.Value(clientKey{}).(string)
	return client
}
