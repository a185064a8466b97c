package authstate

import (
	"context"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// TicketFromURL extracts the verification ticket from an emailed link. The
// ticket travels in the `token` query parameter.
func TicketFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed verification link").
			WithCode(goerrors.CodeBadRequest)
	}

	ticket := strings.TrimSpace(u.Query().Get("token"))
	if ticket == "" {
		return "", ErrTicketMissing
	}

	return ticket, nil
}

// LoginVerificationMessage asks for a login-verification ticket exchange
type LoginVerificationMessage struct {
	Ticket     string `json:"ticket" doc:"Single-use login verification ticket"`
	OnResponse func(r *LoginVerificationResponse)
}

// LoginVerificationResponse reports the exchange outcome to the UI. A
// rejected ticket is terminal: the link is spent and must not be retried.
type LoginVerificationResponse struct {
	Established bool       `json:"established" doc:"Was a session established?"`
	Principal   *Principal `json:"principal,omitempty" doc:"The authenticated identity."`
	Redirect    string     `json:"redirect" doc:"Route to navigate to next."`
	Errors      []string   `json:"errors" doc:"Error messages."`
}

// LoginVerificationHandler exchanges an emailed login ticket for a session
// in the standard domain
type LoginVerificationHandler struct {
	client IdentityClient
	store  *Store
	routes Routes
	logger Logger
}

// NewLoginVerificationHandler wires the exchange against a store
func NewLoginVerificationHandler(client IdentityClient, store *Store) *LoginVerificationHandler {
	return &LoginVerificationHandler{
		client: client,
		store:  store,
		routes: DefaultRoutes(),
		logger: defLogger{},
	}
}

// WithRoutes overrides the navigation table
func (h *LoginVerificationHandler) WithRoutes(routes Routes) *LoginVerificationHandler {
	h.routes = routes.withDefaults()
	return h
}

// WithLogger sets the handler logger
func (h *LoginVerificationHandler) WithLogger(logger Logger) *LoginVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *LoginVerificationHandler) Execute(ctx context.Context, event LoginVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during login verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginVerificationHandler) execute(ctx context.Context, event LoginVerificationMessage) error {
	resp := &LoginVerificationResponse{
		Redirect: h.routes.Login,
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Ticket == "" {
		resp.Errors = append(resp.Errors, ErrTicketMissing.Message)
		respond(event.OnResponse, resp)
		return nil
	}

	// the ticket is exchanged exactly once; failures leave the store as is
	res, err := h.client.VerifyLogin(ctx, event.Ticket)
	if err != nil {
		h.logger.Info("Login verification exchange rejected", "error", err)
		resp.Errors = append(resp.Errors, userMessage(err, "login verification failed"))
		respond(event.OnResponse, resp)
		return nil
	}

	h.store.Establish(ctx, res.Principal, Credential{
		Token:  res.Token,
		Domain: DomainStandard,
	})

	resp.Established = true
	resp.Principal = res.Principal
	resp.Redirect = h.routes.UserHome

	respond(event.OnResponse, resp)
	return nil
}

// EmailVerificationMessage asks for a registration-verification exchange
type EmailVerificationMessage struct {
	Ticket     string `json:"ticket" doc:"Single-use registration verification ticket"`
	OnResponse func(r *EmailVerificationResponse)
}

// EmailVerificationResponse reports the exchange outcome. Consuming the
// ticket produces no session, only a path back to login.
type EmailVerificationResponse struct {
	Verified bool     `json:"verified" doc:"Was the account verified?"`
	Redirect string   `json:"redirect" doc:"Route to navigate to next."`
	Errors   []string `json:"errors" doc:"Error messages."`
}

// EmailVerificationHandler consumes a registration-verification ticket
type EmailVerificationHandler struct {
	client IdentityClient
	routes Routes
	logger Logger
}

// NewEmailVerificationHandler wires the registration verification exchange
func NewEmailVerificationHandler(client IdentityClient) *EmailVerificationHandler {
	return &EmailVerificationHandler{
		client: client,
		routes: DefaultRoutes(),
		logger: defLogger{},
	}
}

// WithRoutes overrides the navigation table
func (h *EmailVerificationHandler) WithRoutes(routes Routes) *EmailVerificationHandler {
	h.routes = routes.withDefaults()
	return h
}

// WithLogger sets the handler logger
func (h *EmailVerificationHandler) WithLogger(logger Logger) *EmailVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *EmailVerificationHandler) Execute(ctx context.Context, event EmailVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *EmailVerificationHandler) execute(ctx context.Context, event EmailVerificationMessage) error {
	resp := &EmailVerificationResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Ticket == "" {
		resp.Errors = append(resp.Errors, ErrTicketMissing.Message)
		respondEmail(event.OnResponse, resp)
		return nil
	}

	if err := h.client.VerifyEmail(ctx, event.Ticket); err != nil {
		h.logger.Info("Email verification exchange rejected", "error", err)
		resp.Errors = append(resp.Errors, userMessage(err, "invalid or expired verification token"))
		respondEmail(event.OnResponse, resp)
		return nil
	}

	resp.Verified = true
	resp.Redirect = h.routes.Login

	respondEmail(event.OnResponse, resp)
	return nil
}

func respond(fn func(*LoginVerificationResponse), r *LoginVerificationResponse) {
	if fn != nil {
		fn(r)
	}
}

func respondEmail(fn func(*EmailVerificationResponse), r *EmailVerificationResponse) {
	if fn != nil {
		fn(r)
	}
}

// userMessage flattens an error into a user-facing message string. Rich
// errors keep their message, anything else gets the fallback.
func userMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return fallback
}
