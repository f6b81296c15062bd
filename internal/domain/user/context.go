package user

import "context"

type contextKey string

const actorKey contextKey = "actor"

// WithActor attaches the resolved caller to a context
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// FromContext returns the actor stored by the auth middleware
func FromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorKey).(Actor); ok {
		return actor
	}
	return Actor{}
}
