package authstate

import (
	"time"

	"github.com/goliatone/go-errors"
	"github.com/golang-jwt/jwt/v5"
)

// TokenInspector performs a local pre-check on a stored credential before
// hydration spends a network round trip on it.
type TokenInspector interface {
	Inspect(token string) error
}

// JWTInspector peeks at a bearer token's registered claims without
// verifying the signature. Signature validation belongs to the identity
// API; the client only uses the expiry claim to short-circuit hydration
// of credentials that cannot possibly be accepted.
type JWTInspector struct {
	// Leeway widens the expiry window to absorb clock skew
	Leeway time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// NewJWTInspector returns an inspector with a small default leeway
func NewJWTInspector() *JWTInspector {
	return &JWTInspector{
		Leeway: 30 * time.Second,
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

// Inspect returns an error only when the token is a well-formed JWT whose
// expiry has clearly passed. Opaque non-JWT tokens pass: the identity API
// stays the authority on their validity.
func (i *JWTInspector) Inspect(token string) error {
	if token == "" {
		return ErrCredentialMissing
	}

	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	if i.now().Add(-i.Leeway).After(exp.Time) {
		return errors.Wrap(jwt.ErrTokenExpired, errors.CategoryAuth, "token is expired").
			WithTextCode(TextCodeCredentialRejected).
			WithCode(errors.CodeUnauthorized)
	}

	return nil
}

// SessionExpiry reports a JWT credential's expiry time when it carries one
func SessionExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
