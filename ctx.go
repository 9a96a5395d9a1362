package walks

import (
	"context"
	"strconv"

	"github.com/goliatone/go-router"
)

// Actor is the request-scoped identity attached by the token gate after a
// token validated and the principal was re-resolved from the store. It is
// never shared across requests.
type Actor struct {
	ID       int64
	Username string
	Email    string
	Role     UserRole
}

// HasRole checks for an exact role match; there is no hierarchy.
func (a *Actor) HasRole(role UserRole) bool {
	if a == nil {
		return false
	}
	return a.Role == role
}

// IsAdmin is shorthand for an exact ADMIN match.
func (a *Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// ActorFromUser builds the request actor from a freshly resolved user.
func ActorFromUser(user *User) *Actor {
	if user == nil {
		return nil
	}
	return &Actor{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

var actorCtxKey = &contextKey{"actor"}

type contextKey struct {
	name string
}

// WithActor sets the Actor in the given context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// ActorFromContext finds the actor from the standard context.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	raw, ok := ctx.Value(actorCtxKey).(*Actor)
	return raw, ok && raw != nil
}

// ActorFromRouterContext extracts the Actor placed in router locals by the
// token gate. The second return is false for anonymous requests.
func ActorFromRouterContext(ctx router.Context, key string) (*Actor, bool) {
	if key == "" {
		key = "actor"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	actor, ok := raw.(*Actor)
	return actor, ok && actor != nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
