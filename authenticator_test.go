package walks_test

import (
	"context"
	"sync"
	"testing"

	walks "github.com/goliatone/go-walks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// testConfig implements walks.Config for the suite
type testConfig struct{}

func (testConfig) GetSigningKey() string   { return "test-signing-key" }
func (testConfig) GetTokenExpiration() int { return 24 }
func (testConfig) GetIssuer() string       { return "walks-test" }
func (testConfig) GetAudience() []string   { return []string{"walks"} }
func (testConfig) GetContextKey() string   { return "actor" }
func (testConfig) GetAuthScheme() string   { return "Bearer" }

var (
	testPasswordHash     string
	testPasswordHashOnce sync.Once
)

// testHash caches a single bcrypt hash of "correct horse"; hashing is
// deliberately slow, so tests share it.
func testHash(t *testing.T) string {
	t.Helper()
	testPasswordHashOnce.Do(func() {
		hash, err := walks.HashPassword("correct horse")
		if err != nil {
			t.Fatalf("hash fixture: %v", err)
		}
		testPasswordHash = hash
	})
	return testPasswordHash
}

func activeUser(t *testing.T) *walks.User {
	return &walks.User{
		ID:           42,
		Username:     "walker",
		Email:        "walker@example.com",
		PasswordHash: testHash(t),
		Role:         walks.RoleUser,
		IsActive:     true,
	}
}

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds with valid credentials", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("GetByIdentifier", ctx, "walker@example.com").Return(activeUser(t), nil)

		sink := &MockActivitySink{}
		sink.On("Record", ctx, mock.Anything).Return(nil)

		auther := walks.NewAuthenticator(store, testConfig{}).
			WithLogger(testLogger{}).
			WithActivitySink(sink)

		result, err := auther.Login(ctx, "walker@example.com", "correct horse")

		assert.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, int64(42), result.User.ID)
		assert.Equal(t, "walker@example.com", result.User.Email)

		claims, err := auther.TokenService().Validate(result.Token)
		assert.NoError(t, err)
		assert.Equal(t, "walker@example.com", claims.Subject())

		events := sink.Events()
		assert.Len(t, events, 1)
		assert.Equal(t, walks.ActivityEventLoginSuccess, events[0].EventType)

		store.AssertExpectations(t)
	})

	t.Run("unknown identifier yields invalid credentials", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("GetByIdentifier", ctx, "nobody@example.com").
			Return(nil, walks.NotFound("user", "nobody@example.com"))

		auther := walks.NewAuthenticator(store, testConfig{}).WithLogger(testLogger{})

		result, err := auther.Login(ctx, "nobody@example.com", "whatever")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, walks.ErrInvalidCredentials)
	})

	t.Run("wrong password yields the same invalid credentials error", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("GetByIdentifier", ctx, "walker@example.com").Return(activeUser(t), nil)

		auther := walks.NewAuthenticator(store, testConfig{}).WithLogger(testLogger{})

		result, wrongPassErr := auther.Login(ctx, "walker@example.com", "incorrect horse")
		assert.Nil(t, result)
		assert.ErrorIs(t, wrongPassErr, walks.ErrInvalidCredentials)

		missingStore := &MockCredentialStore{}
		missingStore.On("GetByIdentifier", ctx, "nobody@example.com").
			Return(nil, walks.NotFound("user", "nobody@example.com"))
		missingAuther := walks.NewAuthenticator(missingStore, testConfig{}).WithLogger(testLogger{})

		_, missingErr := missingAuther.Login(ctx, "nobody@example.com", "whatever")

		// lookup miss and password mismatch are indistinguishable outward
		assert.Equal(t, missingErr, wrongPassErr)
	})

	t.Run("inactive account is rejected after the password check", func(t *testing.T) {
		user := activeUser(t)
		user.IsActive = false

		store := &MockCredentialStore{}
		store.On("GetByIdentifier", ctx, "walker@example.com").Return(user, nil)

		sink := &MockActivitySink{}
		sink.On("Record", ctx, mock.Anything).Return(nil)

		auther := walks.NewAuthenticator(store, testConfig{}).
			WithLogger(testLogger{}).
			WithActivitySink(sink)

		result, err := auther.Login(ctx, "walker@example.com", "correct horse")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, walks.ErrAccountDisabled)
		assert.NotErrorIs(t, err, walks.ErrInvalidCredentials)

		events := sink.Events()
		assert.Len(t, events, 1)
		assert.Equal(t, walks.ActivityEventLoginFailure, events[0].EventType)
	})

	t.Run("inactive account with a wrong password reports invalid credentials", func(t *testing.T) {
		user := activeUser(t)
		user.IsActive = false

		store := &MockCredentialStore{}
		store.On("GetByIdentifier", ctx, "walker@example.com").Return(user, nil)

		auther := walks.NewAuthenticator(store, testConfig{}).WithLogger(testLogger{})

		_, err := auther.Login(ctx, "walker@example.com", "incorrect horse")

		// password is checked before the active flag, so a guesser can't
		// probe which accounts are disabled
		assert.ErrorIs(t, err, walks.ErrInvalidCredentials)
	})

	t.Run("login result never carries the password hash", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("GetByIdentifier", ctx, "walker@example.com").Return(activeUser(t), nil)

		auther := walks.NewAuthenticator(store, testConfig{}).WithLogger(testLogger{})

		result, err := auther.Login(ctx, "walker@example.com", "correct horse")
		assert.NoError(t, err)
		assert.NotContains(t, result.Token, testHash(t))
	})
}
