package authstate

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// LoginPayload is the form payload for both login namespaces
type LoginPayload struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			validation.Length(6, 100),
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(6, 100),
		),
	)
}

// OutcomeStatus describes how a login sub-flow ended
type OutcomeStatus int

const (
	// OutcomeEstablished means a session was established immediately
	OutcomeEstablished OutcomeStatus = iota
	// OutcomePending means the identity API deferred the session behind an
	// emailed login-verification link
	OutcomePending
)

// LoginOutcome is the sub-flow result handed back to the UI
type LoginOutcome struct {
	Status    OutcomeStatus
	Principal *Principal
	Message   string
}

// Flow runs the login and social sub-flows. One generic flow serves both
// session domains; the domain selects the credential slot and the identity
// API namespace.
type Flow struct {
	client IdentityClient
	store  *Store
	logger Logger
	debug  bool
}

// NewFlow returns a login flow feeding the given store
func NewFlow(client IdentityClient, store *Store) *Flow {
	return &Flow{
		client: client,
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger sets the flow logger
func (f *Flow) WithLogger(logger Logger) *Flow {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// WithDebug enables payload tracing
func (f *Flow) WithDebug(debug bool) *Flow {
	f.debug = debug
	return f
}

// Login submits credentials for the given domain. The admin namespace
// answers with a token and the session is established immediately; the
// standard namespace defers and the store enters the awaiting-confirmation
// state. On any error the store is left untouched.
func (f *Flow) Login(ctx context.Context, domain SessionDomain, payload LoginPayload) (*LoginOutcome, error) {
	if !domain.Valid() {
		return nil, errors.New("unknown session domain", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid login payload").
			WithCode(errors.CodeBadRequest)
	}

	res, err := f.client.Login(ctx, domain, LoginRequest{
		Email:      payload.Email,
		Password:   payload.Password,
		RememberMe: payload.RememberMe,
	})
	if err != nil {
		f.logger.Error("Login exchange failed", "domain", domain, "error", err)
		return nil, err
	}

	if res.Pending {
		f.store.AwaitVerification()
		return &LoginOutcome{Status: OutcomePending, Message: res.Message}, nil
	}

	if res.Principal == nil || res.Token == "" {
		return nil, ErrMalformedResponse
	}

	f.store.Establish(ctx, res.Principal, Credential{Token: res.Token, Domain: domain})

	if f.debug {
		fmt.Println(print.MaybePrettyJSON(res.Principal))
	}

	return &LoginOutcome{
		Status:    OutcomeEstablished,
		Principal: res.Principal,
		Message:   res.Message,
	}, nil
}

// Social completes a social-provider login. A token returned by the social
// exchange is never trusted bare: it goes through the same profile-fetch
// validation hydration applies to stored credentials before any session is
// established.
func (f *Flow) Social(ctx context.Context, domain SessionDomain, provider string) (*LoginOutcome, error) {
	if !domain.Valid() {
		return nil, errors.New("unknown session domain", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	res, err := f.client.SocialExchange(ctx, domain, provider)
	if err != nil {
		f.logger.Error("Social exchange failed", "provider", provider, "error", err)
		return nil, err
	}

	if res.Token == "" {
		return nil, ErrMalformedResponse
	}

	principal, err := f.client.Profile(ctx, domain, res.Token)
	if err != nil {
		f.logger.Error("Social token failed profile validation", "provider", provider, "error", err)
		return nil, err
	}

	f.store.Establish(ctx, principal, Credential{Token: res.Token, Domain: domain})

	return &LoginOutcome{
		Status:    OutcomeEstablished,
		Principal: principal,
		Message:   res.Message,
	}, nil
}
