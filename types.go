package authstate

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore persists bearer tokens in two independent slots, one per
// session domain. Absence of a slot means "no session in that domain".
type CredentialStore interface {
	Get(ctx context.Context, domain SessionDomain) (string, error)
	Set(ctx context.Context, domain SessionDomain, token string) error
	Delete(ctx context.Context, domain SessionDomain) error
}

// IdentityClient is the identity API surface the session core depends on.
// Implementations talk to the remote service; tests inject fakes.
type IdentityClient interface {
	Login(ctx context.Context, domain SessionDomain, req LoginRequest) (*LoginResult, error)
	Register(ctx context.Context, domain SessionDomain, req RegisterRequest) (*RegisterResult, error)
	Profile(ctx context.Context, domain SessionDomain, token string) (*Principal, error)
	VerifyLogin(ctx context.Context, ticket string) (*LoginResult, error)
	VerifyEmail(ctx context.Context, ticket string) error
	SocialExchange(ctx context.Context, domain SessionDomain, provider string) (*LoginResult, error)
}

// DirectoryClient is the admin user-management surface of the identity API
type DirectoryClient interface {
	ListUsers(ctx context.Context, token string) ([]Principal, error)
	UpdateUser(ctx context.Context, token, id string, update UserUpdate) (*Principal, error)
	DeleteUser(ctx context.Context, token, id string) error
}

// Config holds identity API client options
type Config interface {
	GetBaseURL() string
	GetAdminNamespace() string
	GetStandardNamespace() string
	GetRequestTimeout() time.Duration
}

// Routes is the navigation table consumed by the route guard's redirect
// decisions. Zero values fall back to the defaults below.
type Routes struct {
	Login        string
	AdminHome    string
	UserHome     string
	Unauthorized string
}

// DefaultRoutes returns the standard navigation table
func DefaultRoutes() Routes {
	return Routes{
		Login:        "/admin/login",
		AdminHome:    "/admin/dashboard",
		UserHome:     "/dashboard",
		Unauthorized: "/unauthorized",
	}
}

func (r Routes) withDefaults() Routes {
	def := DefaultRoutes()
	if r.Login == "" {
		r.Login = def.Login
	}
	if r.AdminHome == "" {
		r.AdminHome = def.AdminHome
	}
	if r.UserHome == "" {
		r.UserHome = def.UserHome
	}
	if r.Unauthorized == "" {
		r.Unauthorized = def.Unauthorized
	}
	return r
}

// SimpleConfig is a plain value implementation of Config
type SimpleConfig struct {
	BaseURL           string
	AdminNamespace    string
	StandardNamespace string
	RequestTimeout    time.Duration
}

func (c SimpleConfig) GetBaseURL() string { return c.BaseURL }

func (c SimpleConfig) GetAdminNamespace() string {
	if c.AdminNamespace == "" {
		return "/api/admin"
	}
	return c.AdminNamespace
}

func (c SimpleConfig) GetStandardNamespace() string {
	if c.StandardNamespace == "" {
		return "/api/auth"
	}
	return c.StandardNamespace
}

func (c SimpleConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return c.RequestTimeout
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHSTATE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHSTATE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHSTATE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
