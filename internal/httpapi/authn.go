package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"jobkonnect.org/internal/auth"
)

const (
	accessTokenHeader = "X-Access-Token"
	authHeader        = "Authorization"
	bearer            = "Bearer "
	realm             = `Bearer realm="jobkonnect"`
)

// authenticated resolves the caller from the access token and stores it in
// the request context. Requests without a valid token get 401.
func (a *API) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.tokens.Verify(extractToken(r))
		if err != nil {
			unauthorized(w, r, err)
			return
		}
		ctx := auth.ContextWithUser(r.Context(), claims.CurrentUser())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects callers that do not hold one of roles. It must run
// behind authenticated.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				unauthorized(w, r, auth.ErrTokenMissing)
				return
			}
			if err := auth.RequireRole(user, roles...); err != nil {
				w.Header().Set("WWW-Authenticate", realm+`, error="insufficient_scope"`)
				writeError(w, r, http.StatusForbidden, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken prefers X-Access-Token and falls back to a bearer
// Authorization header. A non-bearer Authorization value is returned as is
// so that verification rejects it as malformed.
func extractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(accessTokenHeader)); token != "" {
		return token
	}
	header := strings.TrimSpace(r.Header.Get(authHeader))
	if len(header) >= len(bearer) && strings.EqualFold(header[:len(bearer)], bearer) {
		return strings.TrimSpace(header[len(bearer):])
	}
	return header
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	reason, msg := "token_invalid", "invalid token"
	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		reason, msg = "token_missing", "token is missing"
	case errors.Is(err, auth.ErrTokenExpired):
		reason, msg = "token_expired", "token has expired"
	}
	challenge := realm
	if reason != "token_missing" {
		challenge += `, error="invalid_token"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	writeErrorPayload(w, r, http.StatusUnauthorized, map[string]any{
		"error":  msg,
		"reason": reason,
	})
}
