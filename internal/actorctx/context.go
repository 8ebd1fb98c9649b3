package actorctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Actor is the already-authenticated identity attached to a request.
// Authentication happens upstream; this package only carries the result.
type Actor struct {
	ID   snowflake.ID
	Name string
	Role string
}

type actorContextKey struct{}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor from context, if set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	value := ctx.Value(actorContextKey{})
	if value == nil {
		return Actor{}, false
	}
	actor, ok := value.(Actor)
	if !ok || actor.ID == 0 {
		return Actor{}, false
	}
	return actor, true
}

// ParseActorID parses an actor id supplied by the authenticating proxy.
func ParseActorID(raw string) (snowflake.ID, bool) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || parsed == 0 {
		return 0, false
	}
	return parsed, true
}
