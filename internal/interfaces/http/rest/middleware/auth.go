// Package middleware holds the HTTP middleware chain: authentication,
// request logging, metrics, and load shedding.
package middleware

import (
	"net/http"

	apperrors "pcforge-backend/internal/errors"
	"pcforge-backend/pkg/api"
	"pcforge-backend/pkg/auth"
)

// Authenticate validates the bearer token and stores the claims on the
// request context.
func Authenticate(tokens *auth.Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			claims, err := tokens.ValidateToken(header)
			if err != nil {
				switch err {
				case auth.ErrExpiredToken:
					api.Error(w, http.StatusUnauthorized, "token has expired")
				case auth.ErrInvalidSignature:
					api.Error(w, http.StatusUnauthorized, "invalid token signature")
				default:
					api.Error(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin rejects requests whose claims lack the admin flag. Must run
// after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.ClaimsFromContext(r.Context())
		if err != nil {
			api.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.IsAdmin {
			api.ErrorWithCode(w, http.StatusForbidden,
				apperrors.CodeAdminRequired.String(), "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
