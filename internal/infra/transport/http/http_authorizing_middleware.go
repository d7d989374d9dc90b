package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkrupp/catalog-manager/internal/domain"
	context_ "github.com/mkrupp/catalog-manager/internal/infra/context"
	"github.com/mkrupp/catalog-manager/internal/infra/logging"
)

// SessionCookieName is the cookie carrying the session token for browser
// clients. API clients may send the same token as a bearer credential.
const SessionCookieName = "access_token"

// TokenValidator verifies a session token string and returns the session it
// represents.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (domain.SessionToken, error)
}

// AuthorizingMiddleware creates middleware that validates session tokens.
// The token is read from the session cookie or the Authorization header
// (Bearer scheme). Requests without a valid token are rejected; on success
// the authenticated user id is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	validator TokenValidator,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := RequestToken(r)
		if tokenString == "" {
			log.WarnContext(r.Context(), "no session token provided")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

			return
		}

		token, err := validator.ValidateToken(r.Context(), tokenString)
		if err != nil {
			log.WarnContext(r.Context(), "validate session token failed", "error", err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithUserID(r.Context(), token.UserID)))
	})
}

// RequestToken extracts the session token from a request, preferring the
// session cookie over the Authorization header. Header credentials are only
// accepted with the Bearer scheme. Returns "" when absent.
func RequestToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(tokenString)
}
