package auth_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	auth "github.com/kmwangemi/church-auth"
)

// stubIdentity is a plain Identity value for tests that only need claims.
type stubIdentity struct {
	id     string
	email  string
	church string
	branch string
	role   string
}

func (s stubIdentity) ID() string       { return s.id }
func (s stubIdentity) Email() string    { return s.email }
func (s stubIdentity) ChurchID() string { return s.church }
func (s stubIdentity) BranchID() string { return s.branch }
func (s stubIdentity) Role() string     { return s.role }

// testLogger records log lines without asserting on them.
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) log(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, format)
}

func (l *testLogger) Debug(format string, args ...any) { l.log(format) }
func (l *testLogger) Info(format string, args ...any)  { l.log(format) }
func (l *testLogger) Warn(format string, args ...any)  { l.log(format) }
func (l *testLogger) Error(format string, args ...any) { l.log(format) }

// MockIdentityProvider implements auth.IdentityProvider for testing
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserStore implements auth.UserTracker for testing
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// recordingSink captures activity events in memory.
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Events() []auth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}
