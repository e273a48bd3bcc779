package actorctx

import (
	"context"
	"strings"
)

// Actor is the authenticated user attached to a request. No package
// holds a current-user global; the actor travels in the context.
type Actor struct {
	UserID      int64
	Email       string
	DisplayName string
	Role        string
}

// ActorContextKey is the request context key for the authenticated actor.
type ActorContextKey struct{}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorContextKey{}, actor)
}

// FromContext returns the actor from context, if set.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ActorContextKey{}).(Actor)
	return actor, ok
}

// DisplayName returns the actor's display name, falling back to the
// email and then to "Unknown".
func DisplayName(ctx context.Context) string {
	actor, ok := FromContext(ctx)
	if !ok {
		return "Unknown"
	}
	if name := strings.TrimSpace(actor.DisplayName); name != "" {
		return name
	}
	if email := strings.TrimSpace(actor.Email); email != "" {
		return email
	}
	return "Unknown"
}
