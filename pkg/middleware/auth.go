package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

const (
	MsgNoToken      = "No token provided"
	MsgInvalidToken = "Invalid token"
)

// TokenVerifier checks a session token. *auth.TokenService satisfies it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// IdentityResolver loads the live account behind a verified token. It
// returns auth.ErrUnknownIdentity when the account is gone.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uint) (auth.Identity, error)
}

// Authenticate requires a valid session cookie. The account is re-read on
// every request so a deleted account or a changed role takes effect before
// the token expires.
func Authenticate(tokens TokenVerifier, accounts IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				response.Unauthorized(w, MsgNoToken)
				return
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				response.Unauthorized(w, MsgInvalidToken)
				return
			}

			id, err := accounts.ResolveIdentity(r.Context(), claims.UserID)
			switch {
			case errors.Is(err, auth.ErrUnknownIdentity):
				response.Unauthorized(w, MsgInvalidToken)
				return
			case err != nil:
				logger.WithCtx(r.Context()).Error("authenticate: resolve identity",
					"user_id", claims.UserID, "error", err)
				response.Error(w, http.StatusInternalServerError, response.InternalMessage)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RoleFromCtx returns the authenticated user's current role.
func RoleFromCtx(r *http.Request) (string, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	return id.Role, ok
}
