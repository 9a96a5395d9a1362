package walks

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// AdminCounter is the aggregate query the invariant guard relies on. The
// tx parameter lets callers count on the same transaction that performs
// the mutation, closing the check-then-act window.
type AdminCounter interface {
	CountActiveByRoleTx(ctx context.Context, tx bun.IDB, role UserRole) (int, error)
}

// AdminGuard protects the system from reaching zero active administrators.
// It must run before any role change, deactivation, or deletion targeting
// an active admin, inside the mutating transaction.
type AdminGuard struct {
	store AdminCounter
}

// NewAdminGuard returns a guard backed by the given counter.
func NewAdminGuard(store AdminCounter) *AdminGuard {
	return &AdminGuard{store: store}
}

// EnsureCanChangeRole fails with a conflict when moving the last active
// admin off the ADMIN role. Role changes on non-admins, inactive admins,
// or changes that keep the ADMIN role always pass.
func (g *AdminGuard) EnsureCanChangeRole(ctx context.Context, tx bun.IDB, user *User, newRole UserRole) error {
	if user == nil || user.Role != RoleAdmin || !user.IsActive || newRole == RoleAdmin {
		return nil
	}
	return g.ensureNotLastActiveAdmin(ctx, tx, user)
}

// EnsureCanDeactivate fails with a conflict when deactivating the last
// active admin.
func (g *AdminGuard) EnsureCanDeactivate(ctx context.Context, tx bun.IDB, user *User, newActive bool) error {
	if user == nil || newActive || user.Role != RoleAdmin || !user.IsActive {
		return nil
	}
	return g.ensureNotLastActiveAdmin(ctx, tx, user)
}

// EnsureCanDelete fails with a conflict when deleting the last active
// admin. Deleting an already-inactive admin is allowed.
func (g *AdminGuard) EnsureCanDelete(ctx context.Context, tx bun.IDB, user *User) error {
	if user == nil || user.Role != RoleAdmin || !user.IsActive {
		return nil
	}
	return g.ensureNotLastActiveAdmin(ctx, tx, user)
}

func (g *AdminGuard) ensureNotLastActiveAdmin(ctx context.Context, tx bun.IDB, user *User) error {
	count, err := g.store.CountActiveByRoleTx(ctx, tx, RoleAdmin)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to count active admins")
	}

	if count <= 1 {
		return ErrLastAdmin
	}

	return nil
}
