package requestctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Actor identifies the authenticated user for the lifetime of one request.
// It is threaded through context so services never reach for ambient state.
type Actor struct {
	UserID    snowflake.ID
	CompanyID snowflake.ID
	Role      string
}

type actorKey struct{}

type requestIDKey struct{}

// WithActor stores the authenticated actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor, if set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// CompanyID returns the tenant scope of the request, if authenticated.
func CompanyID(ctx context.Context) (snowflake.ID, bool) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.CompanyID == 0 {
		return 0, false
	}
	return actor.CompanyID, true
}

// WithRequestID stores the correlation id in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the correlation id, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
