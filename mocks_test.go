package walks_test

import (
	"context"

	walks "github.com/goliatone/go-walks"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockIdentity implements walks.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() walks.UserRole {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Active() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockLogger implements walks.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// testLogger discards everything; use when log output is irrelevant
type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockCredentialStore implements walks.CredentialStore for testing
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByIdentifier(ctx context.Context, identifier string) (*walks.User, error) {
	args := m.Called(ctx, identifier)
	if user, ok := args.Get(0).(*walks.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockWalkFinder implements walks.WalkFinder for testing
type MockWalkFinder struct {
	mock.Mock
}

func (m *MockWalkFinder) GetByID(ctx context.Context, id int64) (*walks.Walk, error) {
	args := m.Called(ctx, id)
	if walk, ok := args.Get(0).(*walks.Walk); ok {
		return walk, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAdminCounter implements walks.AdminCounter for testing
type MockAdminCounter struct {
	mock.Mock
}

func (m *MockAdminCounter) CountActiveByRoleTx(ctx context.Context, tx bun.IDB, role walks.UserRole) (int, error) {
	args := m.Called(ctx, tx, role)
	return args.Int(0), args.Error(1)
}

// MockActivitySink implements walks.ActivitySink for testing
type MockActivitySink struct {
	mock.Mock

	events []walks.ActivityEvent
}

func (m *MockActivitySink) Record(ctx context.Context, event walks.ActivityEvent) error {
	m.events = append(m.events, event)
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockActivitySink) Events() []walks.ActivityEvent {
	return m.events
}
