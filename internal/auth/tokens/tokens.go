// Package tokens reads and inspects the stored upstream auth credential. The
// token belongs to the upstream API; this process never validates its
// signature, it only needs to know whether a plausible credential is present
// before spending a network call.
package tokens

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"platewise/internal/platform/localstore"
)

// StorageKey is the durable key-value slot holding the auth token.
const StorageKey = "auth_token"

// Source yields the current auth token, or "" when the user is not logged in.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// StoreSource reads the token from the durable local store on every call so
// a login or logout performed by another handler is picked up immediately.
type StoreSource struct {
	store *localstore.Store
}

func NewStoreSource(store *localstore.Store) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) Token(ctx context.Context) (string, error) {
	_ = ctx
	var token string
	ok, err := s.store.Get(StorageKey, &token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

type tokenContextKey struct{}

// ContextWithToken carries a caller-supplied credential through one request.
// It takes precedence over the stored token for the duration of that request.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the per-request token, or "" when none was set.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// ContextSource prefers a per-request token carried in the context and falls
// back to the wrapped source. Handlers can resolve with the caller's own
// Authorization header while background work keeps using the stored token.
type ContextSource struct {
	Fallback Source
}

func (s ContextSource) Token(ctx context.Context) (string, error) {
	if token := TokenFromContext(ctx); token != "" {
		return token, nil
	}
	if s.Fallback == nil {
		return "", nil
	}
	return s.Fallback.Token(ctx)
}

// Static is a fixed-token source for tests and header-scoped requests.
type Static string

func (s Static) Token(ctx context.Context) (string, error) {
	_ = ctx
	return string(s), nil
}

// Usable reports whether the token counts as a live credential. Opaque
// non-JWT tokens count as usable when non-empty; JWTs with an exp claim in
// the past do not.
func Usable(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// Not a JWT; the upstream issues opaque tokens too.
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(now)
}

// SubjectClaim extracts the sub claim from a JWT token, or "" for opaque
// tokens. Used only for audit labelling, never for authorization.
func SubjectClaim(token string) string {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
