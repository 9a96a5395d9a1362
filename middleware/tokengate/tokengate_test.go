package tokengate_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	walks "github.com/goliatone/go-walks"
	"github.com/goliatone/go-walks/middleware/tokengate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(tokenString string) (*walks.JWTClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*walks.JWTClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) GetByIdentifier(ctx context.Context, identifier string) (*walks.User, error) {
	args := m.Called(ctx, identifier)
	if user, ok := args.Get(0).(*walks.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func claimsFor(email string, role walks.UserRole) *walks.JWTClaims {
	return &walks.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: email},
		UID:              42,
		UserRole:         role,
	}
}

func TestResolveActor(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token resolves to a fresh actor", func(t *testing.T) {
		validator := &MockValidator{}
		validator.On("Validate", "good-token").Return(claimsFor("walker@example.com", walks.RoleUser), nil)

		resolver := &MockResolver{}
		resolver.On("GetByIdentifier", ctx, "walker@example.com").Return(&walks.User{
			ID:       42,
			Username: "walker",
			Email:    "walker@example.com",
			Role:     walks.RoleUser,
			IsActive: true,
		}, nil)

		actor, err := tokengate.ResolveActor(ctx, "good-token", tokengate.Config{
			TokenValidator: validator,
			Resolver:       resolver,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(42), actor.ID)
		assert.Equal(t, walks.RoleUser, actor.Role)

		validator.AssertExpectations(t)
		resolver.AssertExpectations(t)
	})

	t.Run("role comes from the store, not the token", func(t *testing.T) {
		validator := &MockValidator{}
		// token was minted while the account was still an admin
		validator.On("Validate", "stale-role-token").Return(claimsFor("walker@example.com", walks.RoleAdmin), nil)

		resolver := &MockResolver{}
		resolver.On("GetByIdentifier", ctx, "walker@example.com").Return(&walks.User{
			ID:       42,
			Email:    "walker@example.com",
			Role:     walks.RoleUser,
			IsActive: true,
		}, nil)

		actor, err := tokengate.ResolveActor(ctx, "stale-role-token", tokengate.Config{
			TokenValidator: validator,
			Resolver:       resolver,
		})

		assert.NoError(t, err)
		assert.Equal(t, walks.RoleUser, actor.Role)
	})

	t.Run("invalid token yields no actor", func(t *testing.T) {
		validator := &MockValidator{}
		validator.On("Validate", "bad-token").Return(nil, walks.ErrTokenMalformed)

		actor, err := tokengate.ResolveActor(ctx, "bad-token", tokengate.Config{
			TokenValidator: validator,
			Resolver:       &MockResolver{},
		})

		assert.Nil(t, actor)
		assert.Error(t, err)
	})

	t.Run("deleted account yields no actor", func(t *testing.T) {
		validator := &MockValidator{}
		validator.On("Validate", "orphan-token").Return(claimsFor("gone@example.com", walks.RoleUser), nil)

		resolver := &MockResolver{}
		resolver.On("GetByIdentifier", ctx, "gone@example.com").
			Return(nil, walks.NotFound("user", "gone@example.com"))

		actor, err := tokengate.ResolveActor(ctx, "orphan-token", tokengate.Config{
			TokenValidator: validator,
			Resolver:       resolver,
		})

		assert.Nil(t, actor)
		assert.Error(t, err)
	})

	t.Run("deactivated account yields no actor", func(t *testing.T) {
		validator := &MockValidator{}
		validator.On("Validate", "disabled-token").Return(claimsFor("off@example.com", walks.RoleUser), nil)

		resolver := &MockResolver{}
		resolver.On("GetByIdentifier", ctx, "off@example.com").Return(&walks.User{
			ID:       7,
			Email:    "off@example.com",
			Role:     walks.RoleUser,
			IsActive: false,
		}, nil)

		actor, err := tokengate.ResolveActor(ctx, "disabled-token", tokengate.Config{
			TokenValidator: validator,
			Resolver:       resolver,
		})

		assert.Nil(t, actor)
		assert.ErrorIs(t, err, walks.ErrAccountDisabled)
	})
}

func TestGetExtractors(t *testing.T) {
	t.Run("parses multi source lookups", func(t *testing.T) {
		extractors := tokengate.GetExtractors("header:Authorization, query:auth_token, cookie:jwt")
		assert.Len(t, extractors, 3)
	})

	t.Run("unknown sources are skipped", func(t *testing.T) {
		extractors := tokengate.GetExtractors("body:token")
		assert.Empty(t, extractors)
	})
}
