package walks

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// WalkFinder is the single lookup the ownership check performs.
type WalkFinder interface {
	GetByID(ctx context.Context, id int64) (*Walk, error)
}

// WalkGuard evaluates the owner-or-admin rule for walk operations.
type WalkGuard struct {
	walks  WalkFinder
	logger Logger
}

// NewWalkGuard returns a guard backed by the given walk store.
func NewWalkGuard(walks WalkFinder) *WalkGuard {
	return &WalkGuard{walks: walks, logger: defLogger{}}
}

func (g *WalkGuard) WithLogger(logger Logger) *WalkGuard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// CanAccessWalk loads the walk and reports whether the actor owns it or is
// an admin. A missing walk propagates as NotFound rather than false.
func (g *WalkGuard) CanAccessWalk(ctx context.Context, walkID int64, actor *Actor) (bool, error) {
	walk, err := g.walks.GetByID(ctx, walkID)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, NotFound("walk", walkID)
		}
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to load walk for access check")
	}

	if actor == nil {
		return false, nil
	}

	return walk.UserID == actor.ID || actor.IsAdmin(), nil
}

// RequireRoles returns a middleware enforcing membership in the allowed
// set. Anonymous requests map to Unauthenticated, authenticated actors
// outside the set to Forbidden; the distinction is made here, at the
// authorization boundary, not at the token gate.
func RequireRoles(allowed RoleSet, contextKey string, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			actor, ok := ActorFromRouterContext(ctx, contextKey)
			if !ok {
				return errorHandler(ctx, ErrUnauthenticated)
			}

			if !allowed.Contains(actor.Role) {
				return errorHandler(ctx, Forbidden(map[string]any{
					"actor_id": actor.ID,
					"role":     actor.Role,
				}))
			}

			return next(ctx)
		}
	}
}

// RequireWalkAccess returns a middleware running the ownership check for
// the walk id extracted by idFromCtx. Authorization failures map to
// Forbidden; a missing walk propagates as NotFound.
func RequireWalkAccess(guard *WalkGuard, contextKey string, idFromCtx func(router.Context) (int64, error), errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			actor, ok := ActorFromRouterContext(ctx, contextKey)
			if !ok {
				return errorHandler(ctx, ErrUnauthenticated)
			}

			walkID, err := idFromCtx(ctx)
			if err != nil {
				return errorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "invalid walk id").
					WithCode(errors.CodeBadRequest))
			}

			allowed, err := guard.CanAccessWalk(ctx.Context(), walkID, actor)
			if err != nil {
				return errorHandler(ctx, err)
			}

			if !allowed {
				return errorHandler(ctx, Forbidden(map[string]any{
					"actor_id": actor.ID,
					"walk_id":  walkID,
				}))
			}

			return next(ctx)
		}
	}
}
