package authstate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
)

// LoginRequest is the credential payload for both login namespaces
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResult is the outcome of a login or login-verification exchange.
// Either a session was issued (Token + Principal) or the exchange was
// deferred behind an emailed confirmation (Pending).
type LoginResult struct {
	Principal *Principal
	Token     string
	Pending   bool
	Message   string
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Mobile   string `json:"mobileNumber,omitempty"`
}

// RegisterResult acknowledges a registration; no session is issued until
// the emailed verification ticket is consumed
type RegisterResult struct {
	Message string
}

// UserUpdate is the mutable subset of a directory record
type UserUpdate struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role,omitempty"`
	Mobile string `json:"mobileNumber,omitempty"`
	Bio    string `json:"bio,omitempty"`
}

// HTTPIdentityClient talks to the remote identity API over HTTP/JSON. It
// implements IdentityClient and DirectoryClient.
type HTTPIdentityClient struct {
	cfg    Config
	http   *http.Client
	logger Logger
}

// NewHTTPIdentityClient returns a client for the configured identity API
func NewHTTPIdentityClient(cfg Config) *HTTPIdentityClient {
	return &HTTPIdentityClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.GetRequestTimeout(),
		},
		logger: defLogger{},
	}
}

// WithLogger sets the client logger
func (c *HTTPIdentityClient) WithLogger(logger Logger) *HTTPIdentityClient {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client
func (c *HTTPIdentityClient) WithHTTPClient(h *http.Client) *HTTPIdentityClient {
	if h != nil {
		c.http = h
	}
	return c
}

// apiUser is the identity API's wire representation of an account
type apiUser struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	IsVerified   bool       `json:"isVerified"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	MobileNumber string     `json:"mobileNumber,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	Avatar       string     `json:"avatar,omitempty"`
}

func (u *apiUser) principal() *Principal {
	if u == nil {
		return nil
	}
	return &Principal{
		ID:          u.ID,
		DisplayName: u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Verified:    u.IsVerified,
		LastLoginAt: u.LastLogin,
		Mobile:      u.MobileNumber,
		Bio:         u.Bio,
		Avatar:      u.Avatar,
	}
}

type apiEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	Pending bool      `json:"pending"`
	User    *apiUser  `json:"user"`
	Profile *apiUser  `json:"profile"`
	Users   []apiUser `json:"users"`
}

func (e *apiEnvelope) principal() *Principal {
	if e.Profile != nil {
		return e.Profile.principal()
	}
	return e.User.principal()
}

func (c *HTTPIdentityClient) namespace(domain SessionDomain) string {
	if domain == DomainAdmin {
		return c.cfg.GetAdminNamespace()
	}
	return c.cfg.GetStandardNamespace()
}

func (c *HTTPIdentityClient) endpoint(domain SessionDomain, path string) string {
	return c.cfg.GetBaseURL() + c.namespace(domain) + path
}

// Login submits email/password credentials to the domain's login endpoint.
// The admin namespace answers with a token, the standard namespace defers
// behind an emailed login-verification link and answers pending.
func (c *HTTPIdentityClient) Login(ctx context.Context, domain SessionDomain, req LoginRequest) (*LoginResult, error) {
	env, status, err := c.roundTrip(ctx, http.MethodPost, c.endpoint(domain, "/login"), "", req)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, loginDenied(env)
	}
	if status >= 300 || !env.Success {
		return nil, apiFailure(env, status, "login failed")
	}

	if env.Token == "" {
		// deferred branch: the identity API dispatched a confirmation email
		return &LoginResult{Pending: true, Message: env.Message}, nil
	}

	return &LoginResult{
		Principal: env.principal(),
		Token:     env.Token,
		Message:   env.Message,
	}, nil
}

// Register submits a registration; success only dispatches a verification
// email, it never issues a session
func (c *HTTPIdentityClient) Register(ctx context.Context, domain SessionDomain, req RegisterRequest) (*RegisterResult, error) {
	env, status, err := c.roundTrip(ctx, http.MethodPost, c.endpoint(domain, "/register"), "", req)
	if err != nil {
		return nil, err
	}

	if status >= 300 || !env.Success {
		return nil, apiFailure(env, status, "registration failed")
	}

	return &RegisterResult{Message: env.Message}, nil
}

// Profile validates a bearer credential by fetching the principal behind
// it. Any non-2xx answer means the credential is not acceptable.
func (c *HTTPIdentityClient) Profile(ctx context.Context, domain SessionDomain, token string) (*Principal, error) {
	env, status, err := c.roundTrip(ctx, http.MethodGet, c.endpoint(domain, "/profile"), token, nil)
	if err != nil {
		return nil, err
	}

	if status >= 300 || !env.Success {
		return nil, errors.Wrap(apiFailure(env, status, "profile fetch rejected"),
			errors.CategoryAuth, "credential rejected by identity api").
			WithTextCode(TextCodeCredentialRejected).
			WithCode(errors.CodeUnauthorized)
	}

	principal := env.principal()
	if principal == nil || !IsValidRole(principal.Role) {
		return nil, ErrMalformedResponse
	}

	return principal, nil
}

// VerifyLogin exchanges a login-verification ticket for a session. Tickets
// are single use; a rejected ticket is terminal and must not be retried.
func (c *HTTPIdentityClient) VerifyLogin(ctx context.Context, ticket string) (*LoginResult, error) {
	if ticket == "" {
		return nil, ErrTicketMissing
	}

	url := c.endpoint(DomainStandard, "/verify-login/"+ticket)
	env, status, err := c.roundTrip(ctx, http.MethodGet, url, "", nil)
	if err != nil {
		return nil, err
	}

	if status >= 300 || !env.Success {
		return nil, ticketDenied(env, status)
	}

	principal := env.principal()
	if env.Token == "" || principal == nil || !IsValidRole(principal.Role) {
		return nil, ErrMalformedResponse
	}

	return &LoginResult{
		Principal: principal,
		Token:     env.Token,
		Message:   env.Message,
	}, nil
}

// VerifyEmail consumes a registration-verification ticket. It produces no
// session, only flips the account's verified flag server side.
func (c *HTTPIdentityClient) VerifyEmail(ctx context.Context, ticket string) error {
	if ticket == "" {
		return ErrTicketMissing
	}

	url := c.endpoint(DomainStandard, "/verify/"+ticket)
	env, status, err := c.roundTrip(ctx, http.MethodGet, url, "", nil)
	if err != nil {
		return err
	}

	if status >= 300 {
		return ticketDenied(env, status)
	}

	return nil
}

// SocialExchange completes a social-provider login for the given domain
func (c *HTTPIdentityClient) SocialExchange(ctx context.Context, domain SessionDomain, provider string) (*LoginResult, error) {
	if provider == "" {
		return nil, errors.New("social provider is required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	path := "/" + provider
	if domain == DomainAdmin {
		path = "/auth/" + provider
	}

	env, status, err := c.roundTrip(ctx, http.MethodGet, c.endpoint(domain, path), "", nil)
	if err != nil {
		return nil, err
	}

	if status >= 300 || !env.Success {
		return nil, apiFailure(env, status, "social login failed")
	}

	if env.Token == "" {
		return nil, ErrMalformedResponse
	}

	return &LoginResult{
		Principal: env.principal(),
		Token:     env.Token,
		Message:   env.Message,
	}, nil
}

// ListUsers fetches the admin user directory
func (c *HTTPIdentityClient) ListUsers(ctx context.Context, token string) ([]Principal, error) {
	env, status, err := c.roundTrip(ctx, http.MethodGet, c.endpoint(DomainAdmin, "/users"), token, nil)
	if err != nil {
		return nil, err
	}

	if status >= 300 || !env.Success {
		return nil, apiFailure(env, status, "user listing failed")
	}

	out := make([]Principal, 0, len(env.Users))
	for i := range env.Users {
		out = append(out, *env.Users[i].principal())
	}
	return out, nil
}

// UpdateUser patches a directory record
func (c *HTTPIdentityClient) UpdateUser(ctx context.Context, token, id string, update UserUpdate) (*Principal, error) {
	if id == "" {
		return nil, errors.New("user id is required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	url := c.endpoint(DomainAdmin, "/user/"+id)
	env, status, err := c.roundTrip(ctx, http.MethodPatch, url, token, update)
	if err != nil {
		return nil, err
	}

	if status >= 300 || !env.Success {
		return nil, apiFailure(env, status, "user update failed")
	}

	principal := env.principal()
	if principal == nil {
		return nil, ErrMalformedResponse
	}
	return principal, nil
}

// DeleteUser removes a directory record
func (c *HTTPIdentityClient) DeleteUser(ctx context.Context, token, id string) error {
	if id == "" {
		return errors.New("user id is required", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	url := c.endpoint(DomainAdmin, "/user/"+id)
	env, status, err := c.roundTrip(ctx, http.MethodDelete, url, token, nil)
	if err != nil {
		return err
	}

	if status >= 300 {
		return apiFailure(env, status, "user delete failed")
	}

	return nil
}

func (c *HTTPIdentityClient) roundTrip(ctx context.Context, method, url, bearer string, body any) (*apiEnvelope, int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.CategoryInternal, "failed to encode request payload")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CategoryInternal, "failed to build identity api request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("Identity API unreachable", "url", url, "error", err)
		return nil, 0, errors.Wrap(err, errors.CategoryOperation, "identity api unreachable").
			WithTextCode(TextCodeNetworkUnreachable)
	}
	defer res.Body.Close()

	env := &apiEnvelope{}
	payload, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, res.StatusCode, errors.Wrap(err, errors.CategoryOperation, "failed to read identity api response").
			WithTextCode(TextCodeNetworkUnreachable)
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, env); err != nil {
			// non-JSON bodies still carry a meaningful status code
			env = &apiEnvelope{Message: http.StatusText(res.StatusCode)}
			env.Success = res.StatusCode < 300
		}
	} else if res.StatusCode < 300 {
		// 2xx with an empty body still counts as success
		env.Success = true
	}

	return env, res.StatusCode, nil
}

func loginDenied(env *apiEnvelope) error {
	if env != nil && env.Message != "" {
		return errors.New(env.Message, errors.CategoryAuth).
			WithTextCode(TextCodeInvalidCreds).
			WithCode(errors.CodeUnauthorized)
	}
	return ErrInvalidCredentials
}

func ticketDenied(env *apiEnvelope, status int) error {
	msg := "verification ticket rejected"
	if env != nil && env.Message != "" {
		msg = env.Message
	}
	return errors.New(fmt.Sprintf("%s (status %d)", msg, status), errors.CategoryAuth).
		WithTextCode(TextCodeTicketRejected).
		WithCode(errors.CodeUnauthorized)
}

func apiFailure(env *apiEnvelope, status int, fallback string) error {
	msg := fallback
	if env != nil && env.Message != "" {
		msg = env.Message
	}

	category := errors.CategoryAuth
	code := errors.CodeUnauthorized
	switch {
	case status == http.StatusConflict:
		category = errors.CategoryConflict
		code = errors.CodeConflict
	case status == http.StatusForbidden:
		category = errors.CategoryAuthz
		code = errors.CodeForbidden
	case status >= 500:
		category = errors.CategoryOperation
		code = errors.CodeInternal
	case status < 300:
		// success:false with a 2xx status
		category = errors.CategoryOperation
		code = errors.CodeInternal
	}

	return errors.New(msg, category).WithCode(code)
}
