package authstate

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeNetworkUnreachable = "auth_network_unreachable"
	TextCodeCredentialRejected = "auth_credential_rejected"
	TextCodeCredentialMissing  = "auth_credential_missing"
	TextCodeTicketRejected     = "auth_ticket_rejected"
	TextCodeTicketMissing      = "auth_ticket_missing"
	TextCodeInvalidCreds       = "auth_invalid_credentials"
	TextCodeNotAuthorized      = "auth_not_authorized"
	TextCodeBadResponse        = "auth_malformed_response"
)

// ErrNetworkUnavailable is returned when the identity API cannot be reached.
// It is retryable; session state degrades to unauthenticated, never crashes.
var ErrNetworkUnavailable = errors.New("identity api unreachable", errors.CategoryOperation).
	WithTextCode(TextCodeNetworkUnreachable)

// ErrCredentialRejected is returned when a stored credential fails validation
// against the identity API (expired, tampered, revoked).
var ErrCredentialRejected = errors.New("credential rejected by identity api", errors.CategoryAuth).
	WithTextCode(TextCodeCredentialRejected).
	WithCode(errors.CodeUnauthorized)

// ErrCredentialMissing is returned when a slot holds no credential
var ErrCredentialMissing = errors.New("no stored credential", errors.CategoryNotFound).
	WithTextCode(TextCodeCredentialMissing).
	WithCode(errors.CodeNotFound)

// ErrTicketRejected is returned when a verification ticket was already
// consumed or has expired. Terminal for that link, never retried.
var ErrTicketRejected = errors.New("verification ticket rejected", errors.CategoryAuth).
	WithTextCode(TextCodeTicketRejected).
	WithCode(errors.CodeUnauthorized)

// ErrTicketMissing is returned when a verification link carries no ticket
var ErrTicketMissing = errors.New("verification ticket missing", errors.CategoryBadInput).
	WithTextCode(TextCodeTicketMissing).
	WithCode(errors.CodeBadRequest)

// ErrInvalidCredentials is returned on a failed email/password login
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNotAuthorized is returned when an authenticated principal lacks the role
// an operation requires. Distinct from authentication failure.
var ErrNotAuthorized = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeNotAuthorized).
	WithCode(errors.CodeForbidden)

// ErrMalformedResponse is returned when the identity API payload cannot be
// decoded. Treated like an invalid credential during hydration.
var ErrMalformedResponse = errors.New("malformed identity api response", errors.CategoryInternal).
	WithTextCode(TextCodeBadResponse)

// IsCredentialRejected checks for the invalid/expired credential family
func IsCredentialRejected(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCredentialRejected) {
		return true
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeCredentialRejected
	}
	return false
}

// IsCredentialMissing checks for the empty-slot condition, which is part of
// the expected flow rather than an application error
func IsCredentialMissing(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCredentialMissing) {
		return true
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeCredentialMissing
	}
	return false
}

// IsTransient checks for retryable network failures
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetworkUnavailable) {
		return true
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryOperation
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}
