package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/logbookhq/logbook/internal/model"
	"github.com/logbookhq/logbook/internal/service"
	"github.com/logbookhq/logbook/internal/session"
)

type contextKeyAuth string

// SessionKey is the context key for the authenticated session.
const SessionKey contextKeyAuth = "auth_session"

// SessionCookie is the name of the browser session cookie.
const SessionCookie = "logbook_session"

// Authenticate returns an HTTP middleware that resolves the request's
// session token. Two carriers are accepted:
//
//  1. The logbook_session cookie (the browser UI)
//  2. A JWT Bearer token via the Authorization header (CLI and scripts)
//
// On success the live session is attached to the request context. On
// failure a 401 JSON error response is returned.
func Authenticate(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized,
					"Authentication required. Log in to obtain a session.")
				return
			}

			sess, err := authSvc.Authenticate(r.Context(), token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Session expired or invalid")
				return
			}

			markPrincipal(r.Context(), sess)

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns an HTTP middleware that enforces admin-level access.
// It must be used after Authenticate in the middleware chain.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if sess == nil || !sess.IsAdmin() {
				writeAuthError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionToken pulls the signed session token from the cookie or, failing
// that, the Authorization header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// GetSession extracts the authenticated session from the context. Returns
// nil if no session is present (i.e., unauthenticated request).
func GetSession(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(SessionKey).(*session.Session); ok {
		return s
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	kind := model.KindAuth
	if status == http.StatusForbidden {
		kind = model.KindAuthorization
	}
	writeErrorEnvelope(w, status, kind, message)
}
