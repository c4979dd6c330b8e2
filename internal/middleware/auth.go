package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jwoo-kim/tripplan/internal/domain"
)

// MemberResolver resolves a bearer token to the member it belongs to.
// Satisfied by repo.MemberRepo; handler tests inject a stub.
type MemberResolver interface {
	GetByToken(ctx context.Context, apiToken string) (domain.Member, error)
}

// memberCtxKey is the private context key under which the authenticated
// member is stored. A private struct type cannot collide with keys from
// other packages.
type memberCtxKey struct{}

// NewAuth returns a middleware that authenticates every request.
// The Authorization header must carry "Bearer <token>"; the token is
// resolved to a member, which is stored in the request context for
// handlers to read via MemberFrom. Missing or unresolvable tokens get 401.
func NewAuth(members MemberResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "a bearer token is required")
				return
			}

			member, err := members.GetByToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeUnauthorized(w, "unknown token")
					return
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), memberCtxKey{}, member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MemberFrom returns the authenticated member stored by NewAuth.
// ok is false when the request did not pass through the auth middleware.
func MemberFrom(ctx context.Context) (domain.Member, bool) {
	member, ok := ctx.Value(memberCtxKey{}).(domain.Member)
	return member, ok
}

// WithMember returns a context carrying the given member, as NewAuth would
// set it. Exported for handler tests that bypass the middleware.
func WithMember(ctx context.Context, member domain.Member) context.Context {
	return context.WithValue(ctx, memberCtxKey{}, member)
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// writeUnauthorized writes the API's standard error envelope with a 401.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}
