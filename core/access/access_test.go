package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/jobly/core/errs"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken(&Authorization{Username: "u1", IsAdmin: true}, "secret")
	require.NoError(t, err)

	auth, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", auth.Username)
	assert.True(t, auth.IsAdmin)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := NewToken(&Authorization{Username: "u1"}, "secret")
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	require.Error(t, err)
	assert.Equal(t, errs.KindUnauthorized, errs.KindOf(err))
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not-a-token", "secret")
	require.Error(t, err)
	assert.Equal(t, errs.KindUnauthorized, errs.KindOf(err))
}

func TestAuthorizationContext(t *testing.T) {
	assert.Nil(t, AuthorizationFromContext(context.Background()))

	auth := &Authorization{Username: "u1"}
	ctx := auth.ContextWithAuthorization(context.Background())
	assert.Equal(t, auth, AuthorizationFromContext(ctx))
}

func TestEnsureLoggedIn(t *testing.T) {
	err := EnsureLoggedIn(context.Background())
	assert.Equal(t, errs.KindUnauthorized, errs.KindOf(err))

	ctx := (&Authorization{Username: "u1"}).ContextWithAuthorization(context.Background())
	assert.NoError(t, EnsureLoggedIn(ctx))
}

func TestEnsureAdmin(t *testing.T) {
	assert.Error(t, EnsureAdmin(context.Background()))

	ctx := (&Authorization{Username: "u1"}).ContextWithAuthorization(context.Background())
	assert.Error(t, EnsureAdmin(ctx))

	ctx = (&Authorization{Username: "a1", IsAdmin: true}).ContextWithAuthorization(context.Background())
	assert.NoError(t, EnsureAdmin(ctx))
}

func TestEnsureSelfOrAdmin(t *testing.T) {
	assert.Error(t, EnsureSelfOrAdmin(context.Background(), "u1"))

	self := (&Authorization{Username: "u1"}).ContextWithAuthorization(context.Background())
	assert.NoError(t, EnsureSelfOrAdmin(self, "u1"))
	assert.Error(t, EnsureSelfOrAdmin(self, "u2"))

	admin := (&Authorization{Username: "a1", IsAdmin: true}).ContextWithAuthorization(context.Background())
	assert.NoError(t, EnsureSelfOrAdmin(admin, "u1"))
}
