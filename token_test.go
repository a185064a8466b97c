package authstate_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authstate "github.com/goliatone/go-authstate"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectPassesLiveToken(t *testing.T) {
	inspector := authstate.NewJWTInspector()

	token := signedToken(t, jwt.MapClaims{
		"sub": "64f2ab01c3d9e80012aa4d01",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	assert.NoError(t, inspector.Inspect(token))
}

func TestInspectRejectsExpiredToken(t *testing.T) {
	inspector := authstate.NewJWTInspector()

	token := signedToken(t, jwt.MapClaims{
		"sub": "64f2ab01c3d9e80012aa4d01",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	err := inspector.Inspect(token)
	require.Error(t, err)
	assert.True(t, authstate.IsCredentialRejected(err))
	assert.True(t, authstate.IsTokenExpiredError(err))
}

func TestInspectLeewayAbsorbsClockSkew(t *testing.T) {
	inspector := authstate.NewJWTInspector()
	inspector.Leeway = time.Minute

	token := signedToken(t, jwt.MapClaims{
		"exp": time.Now().Add(-10 * time.Second).Unix(),
	})
	assert.NoError(t, inspector.Inspect(token))
}

func TestInspectPassesOpaqueTokens(t *testing.T) {
	inspector := authstate.NewJWTInspector()

	assert.NoError(t, inspector.Inspect("not-a-jwt-at-all"))
}

func TestInspectPassesTokenWithoutExpiry(t *testing.T) {
	inspector := authstate.NewJWTInspector()

	token := signedToken(t, jwt.MapClaims{"sub": "64f2ab01c3d9e80012aa4d01"})
	assert.NoError(t, inspector.Inspect(token))
}

func TestInspectEmptyTokenIsMissing(t *testing.T) {
	inspector := authstate.NewJWTInspector()

	err := inspector.Inspect("")
	assert.True(t, authstate.IsCredentialMissing(err))
}

func TestSessionExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"exp": exp.Unix()})

	got, ok := authstate.SessionExpiry(token)
	require.True(t, ok)
	assert.WithinDuration(t, exp, got, time.Second)

	_, ok = authstate.SessionExpiry("opaque")
	assert.False(t, ok)

	noExp := signedToken(t, jwt.MapClaims{"sub": "u1"})
	_, ok = authstate.SessionExpiry(noExp)
	assert.False(t, ok)
}
