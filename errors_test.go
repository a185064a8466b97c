package authstate_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	authstate "github.com/goliatone/go-authstate"
)

func TestIsCredentialRejected(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "sentinel",
			err:      authstate.ErrCredentialRejected,
			expected: true,
		},
		{
			name: "rich error with text code",
			err: goerrors.New("jwt expired", goerrors.CategoryAuth).
				WithTextCode(authstate.TextCodeCredentialRejected),
			expected: true,
		},
		{
			name:     "unrelated sentinel",
			err:      authstate.ErrTicketRejected,
			expected: false,
		},
		{
			name:     "plain error",
			err:      stderrors.New("boom"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, authstate.IsCredentialRejected(tt.err))
		})
	}
}

func TestIsCredentialMissing(t *testing.T) {
	assert.False(t, authstate.IsCredentialMissing(nil))
	assert.True(t, authstate.IsCredentialMissing(authstate.ErrCredentialMissing))
	assert.False(t, authstate.IsCredentialMissing(authstate.ErrCredentialRejected))
	assert.False(t, authstate.IsCredentialMissing(stderrors.New("boom")))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, authstate.IsTransient(nil))
	assert.True(t, authstate.IsTransient(authstate.ErrNetworkUnavailable))
	assert.True(t, authstate.IsTransient(
		goerrors.Wrap(stderrors.New("dial tcp: connection refused"), goerrors.CategoryOperation, "identity api unreachable"),
	))
	assert.False(t, authstate.IsTransient(authstate.ErrInvalidCredentials))
	assert.False(t, authstate.IsTransient(stderrors.New("boom")))
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.False(t, authstate.IsTokenExpiredError(nil))
	assert.True(t, authstate.IsTokenExpiredError(fmt.Errorf("some wrapper: token is expired")))
	assert.False(t, authstate.IsTokenExpiredError(stderrors.New("invalid signature")))
}

func TestSentinelCategories(t *testing.T) {
	assert.Equal(t, goerrors.CategoryAuthz, authstate.ErrNotAuthorized.Category)
	assert.Equal(t, goerrors.CategoryAuth, authstate.ErrCredentialRejected.Category)
	assert.Equal(t, goerrors.CategoryNotFound, authstate.ErrCredentialMissing.Category)
	assert.Equal(t, goerrors.CategoryOperation, authstate.ErrNetworkUnavailable.Category)
	assert.Equal(t, goerrors.CategoryBadInput, authstate.ErrTicketMissing.Category)
}
