package jwt

import (
	"context"
	"net/http"
	"strings"

	"carelink/internal/pkg/errs"
	"carelink/internal/pkg/resp"
)

type contextKey string

// contextClaimsKey stores the verified *Claims in the request context.
const contextClaimsKey contextKey = "auth_claims"

// RequireAuth verifies the Bearer token on every request and rejects
// anything without a valid credential. The REST API has no anonymous
// surface: message history and presigned URLs are participant-only.
func RequireAuth(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				resp.RespondError(w, r, errs.NewError(errs.ErrAuthFailed))
				return
			}

			claims, err := ParseToken(parts[1], secretKey)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrAuthFailed))
				return
			}

			ctx := context.WithValue(r.Context(), contextClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified claims attached by RequireAuth,
// or nil when the request never passed through it.
func ClaimsFromContext(r *http.Request) *Claims {
	claims, ok := r.Context().Value(contextClaimsKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}
