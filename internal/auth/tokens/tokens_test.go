package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platewise/internal/platform/localstore"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestUsable(t *testing.T) {
	now := time.Now()

	t.Run("empty token is not usable", func(t *testing.T) {
		assert.False(t, Usable("", now))
	})

	t.Run("opaque token is usable", func(t *testing.T) {
		assert.True(t, Usable("tok-9f2c81", now))
	})

	t.Run("live jwt is usable", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{
			"sub": "user-42",
			"exp": now.Add(time.Hour).Unix(),
		})
		assert.True(t, Usable(token, now))
	})

	t.Run("expired jwt is not usable", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{
			"sub": "user-42",
			"exp": now.Add(-time.Hour).Unix(),
		})
		assert.False(t, Usable(token, now))
	})

	t.Run("jwt without exp is usable", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "user-42"})
		assert.True(t, Usable(token, now))
	})
}

func TestSubjectClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "user-42"})
	assert.Equal(t, "user-42", SubjectClaim(token))
	assert.Equal(t, "", SubjectClaim("opaque-token"))
}

func TestStoreSource(t *testing.T) {
	ctx := context.Background()
	store, err := localstore.New(t.TempDir())
	require.NoError(t, err)
	source := NewStoreSource(store)

	token, err := source.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", token, "no stored token means logged out")

	require.NoError(t, store.Set(StorageKey, "tok-123"))

	token, err = source.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestContextSource(t *testing.T) {
	source := ContextSource{Fallback: Static("stored-tok")}

	t.Run("request token wins", func(t *testing.T) {
		ctx := ContextWithToken(context.Background(), "header-tok")
		token, err := source.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "header-tok", token)
	})

	t.Run("falls back to the stored token", func(t *testing.T) {
		token, err := source.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "stored-tok", token)
	})

	t.Run("no fallback means logged out", func(t *testing.T) {
		bare := ContextSource{}
		token, err := bare.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "", token)
	})
}

func TestTokenFromContext(t *testing.T) {
	assert.Empty(t, TokenFromContext(context.Background()))
	ctx := ContextWithToken(context.Background(), "tok-7")
	assert.Equal(t, "tok-7", TokenFromContext(ctx))
}
