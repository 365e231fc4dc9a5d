package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// ErrorWriter renders authentication failures.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// ClaimsFromContext extracts court claims from request context.
func ClaimsFromContext(ctx context.Context) *CourtClaims {
	claims, _ := ctx.Value(contextKey{}).(*CourtClaims)
	return claims
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *CourtClaims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// Authenticate returns middleware that requires a valid bearer token when m is enabled.
// When m is disabled requests pass through untouched.
func Authenticate(m *TokenManager, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := bearerToken(r)
			if !ok {
				onError(w, r, ErrMissingToken)
				return
			}
			claims, err := m.Verify(token)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Authorize checks that the authenticated session may act on courtID.
func (m *TokenManager) Authorize(ctx context.Context, courtID string) error {
	if !m.Enabled() {
		return nil
	}
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ErrMissingToken
	}
	if claims.CourtID != courtID {
		return ErrForbidden
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
