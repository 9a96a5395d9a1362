package walks_test

import (
	"context"
	"testing"

	walks "github.com/goliatone/go-walks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func activeAdmin() *walks.User {
	return &walks.User{
		ID:       1,
		Email:    "admin@example.com",
		Role:     walks.RoleAdmin,
		IsActive: true,
	}
}

func TestAdminGuard_EnsureCanChangeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks demoting the last active admin", func(t *testing.T) {
		counter := &MockAdminCounter{}
		counter.On("CountActiveByRoleTx", ctx, mock.Anything, walks.RoleAdmin).Return(1, nil)

		guard := walks.NewAdminGuard(counter)

		err := guard.EnsureCanChangeRole(ctx, nil, activeAdmin(), walks.RoleUser)
		assert.ErrorIs(t, err, walks.ErrLastAdmin)
	})

	t.Run("allows demotion when another active admin exists", func(t *testing.T) {
		counter := &MockAdminCounter{}
		counter.On("CountActiveByRoleTx", ctx, mock.Anything, walks.RoleAdmin).Return(2, nil)

		guard := walks.NewAdminGuard(counter)

		err := guard.EnsureCanChangeRole(ctx, nil, activeAdmin(), walks.RoleUser)
		assert.NoError(t, err)
	})

	t.Run("ignores role changes that keep the admin role", func(t *testing.T) {
		counter := &MockAdminCounter{}
		guard := walks.NewAdminGuard(counter)

		err := guard.EnsureCanChangeRole(ctx, nil, activeAdmin(), walks.RoleAdmin)
		assert.NoError(t, err)
		counter.AssertNotCalled(t, "CountActiveByRoleTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ignores non-admin targets", func(t *testing.T) {
		counter := &MockAdminCounter{}
		guard := walks.NewAdminGuard(counter)

		user := &walks.User{ID: 5, Role: walks.RoleUser, IsActive: true}
		err := guard.EnsureCanChangeRole(ctx, nil, user, walks.RoleAdmin)
		assert.NoError(t, err)
		counter.AssertNotCalled(t, "CountActiveByRoleTx", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAdminGuard_EnsureCanDeactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks deactivating the last active admin", func(t *testing.T) {
		counter := &MockAdminCounter{}
		counter.On("CountActiveByRoleTx", ctx, mock.Anything, walks.RoleAdmin).Return(1, nil)

		guard := walks.NewAdminGuard(counter)

		err := guard.EnsureCanDeactivate(ctx, nil, activeAdmin(), false)
		assert.ErrorIs(t, err, walks.ErrLastAdmin)
	})

	t.Run("allows deactivation with a second active admin", func(t *testing.T) {
		counter := &MockAdminCounter{}
		counter.On("CountActiveByRoleTx", ctx, mock.Anything, walks.RoleAdmin).Return(2, nil)

		guard := walks.NewAdminGuard(counter)

		err := guard.EnsureCanDeactivate(ctx, nil, activeAdmin(), false)
		assert.NoError(t, err)
	})

	t.Run("reactivation never consults the count", func(t *testing.T) {
		counter := &MockAdminCounter{}
		guard := walks.NewAdminGuard(counter)

		inactive := activeAdmin()
		inactive.IsActive = false

		err := guard.EnsureCanDeactivate(ctx, nil, inactive, true)
		assert.NoError(t, err)
		counter.AssertNotCalled(t, "CountActiveByRoleTx", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAdminGuard_EnsureCanDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks deleting the last active admin", func(t *testing.T) {
		counter := &MockAdminCounter{}
		counter.On("CountActiveByRoleTx", ctx, mock.Anything, walks.RoleAdmin).Return(1, nil)

		guard := walks.NewAdminGuard(counter)

		err := guard.EnsureCanDelete(ctx, nil, activeAdmin())
		assert.ErrorIs(t, err, walks.ErrLastAdmin)
	})

	t.Run("allows deleting an inactive admin", func(t *testing.T) {
		counter := &MockAdminCounter{}
		guard := walks.NewAdminGuard(counter)

		inactive := activeAdmin()
		inactive.IsActive = false

		err := guard.EnsureCanDelete(ctx, nil, inactive)
		assert.NoError(t, err)
		counter.AssertNotCalled(t, "CountActiveByRoleTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("allows deleting a regular user regardless of count", func(t *testing.T) {
		counter := &MockAdminCounter{}
		guard := walks.NewAdminGuard(counter)

		user := &walks.User{ID: 5, Role: walks.RoleUser, IsActive: true}
		err := guard.EnsureCanDelete(ctx, nil, user)
		assert.NoError(t, err)
	})
}
