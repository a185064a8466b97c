package authstate_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	authstate "github.com/goliatone/go-authstate"
)

// MockIdentityClient implements authstate.IdentityClient and
// authstate.DirectoryClient
type MockIdentityClient struct {
	mock.Mock
}

func (m *MockIdentityClient) Login(ctx context.Context, domain authstate.SessionDomain, req authstate.LoginRequest) (*authstate.LoginResult, error) {
	args := m.Called(ctx, domain, req)
	res, _ := args.Get(0).(*authstate.LoginResult)
	return res, args.Error(1)
}

func (m *MockIdentityClient) Register(ctx context.Context, domain authstate.SessionDomain, req authstate.RegisterRequest) (*authstate.RegisterResult, error) {
	args := m.Called(ctx, domain, req)
	res, _ := args.Get(0).(*authstate.RegisterResult)
	return res, args.Error(1)
}

func (m *MockIdentityClient) Profile(ctx context.Context, domain authstate.SessionDomain, token string) (*authstate.Principal, error) {
	args := m.Called(ctx, domain, token)
	res, _ := args.Get(0).(*authstate.Principal)
	return res, args.Error(1)
}

func (m *MockIdentityClient) VerifyLogin(ctx context.Context, ticket string) (*authstate.LoginResult, error) {
	args := m.Called(ctx, ticket)
	res, _ := args.Get(0).(*authstate.LoginResult)
	return res, args.Error(1)
}

func (m *MockIdentityClient) VerifyEmail(ctx context.Context, ticket string) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockIdentityClient) SocialExchange(ctx context.Context, domain authstate.SessionDomain, provider string) (*authstate.LoginResult, error) {
	args := m.Called(ctx, domain, provider)
	res, _ := args.Get(0).(*authstate.LoginResult)
	return res, args.Error(1)
}

func (m *MockIdentityClient) ListUsers(ctx context.Context, token string) ([]authstate.Principal, error) {
	args := m.Called(ctx, token)
	res, _ := args.Get(0).([]authstate.Principal)
	return res, args.Error(1)
}

func (m *MockIdentityClient) UpdateUser(ctx context.Context, token, id string, update authstate.UserUpdate) (*authstate.Principal, error) {
	args := m.Called(ctx, token, id, update)
	res, _ := args.Get(0).(*authstate.Principal)
	return res, args.Error(1)
}

func (m *MockIdentityClient) DeleteUser(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

// stubCredentials is a CredentialStore with injectable failures
type stubCredentials struct {
	mu      sync.Mutex
	slots   map[string]string
	getErr  error
	setErr  error
	delErr  error
	deletes int
}

func newStubCredentials() *stubCredentials {
	return &stubCredentials{slots: map[string]string{}}
}

func (s *stubCredentials) Get(_ context.Context, domain authstate.SessionDomain) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.slots[domain.Slot()], nil
}

func (s *stubCredentials) Set(_ context.Context, domain authstate.SessionDomain, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.slots[domain.Slot()] = token
	return nil
}

func (s *stubCredentials) Delete(_ context.Context, domain authstate.SessionDomain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.slots, domain.Slot())
	return nil
}

func (s *stubCredentials) get(domain authstate.SessionDomain) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[domain.Slot()]
}

func (s *stubCredentials) put(domain authstate.SessionDomain, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[domain.Slot()] = token
}

func (s *stubCredentials) has(domain authstate.SessionDomain) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slots[domain.Slot()]
	return ok
}

// blockingClient lets a test hold a profile fetch in flight
type blockingClient struct {
	MockIdentityClient
	release   chan struct{}
	principal *authstate.Principal
}

func (b *blockingClient) Profile(ctx context.Context, domain authstate.SessionDomain, token string) (*authstate.Principal, error) {
	<-b.release
	return b.principal, nil
}

func adminPrincipal() *authstate.Principal {
	return &authstate.Principal{
		ID:          "64f2ab01c3d9e80012aa4d01",
		DisplayName: "Ada Admin",
		Email:       "ada@example.com",
		Role:        authstate.RoleAdmin,
		Verified:    true,
	}
}

func standardPrincipal() *authstate.Principal {
	return &authstate.Principal{
		ID:          "64f2ab01c3d9e80012aa4d02",
		DisplayName: "Uma User",
		Email:       "uma@example.com",
		Role:        authstate.RoleUser,
		Verified:    true,
	}
}
