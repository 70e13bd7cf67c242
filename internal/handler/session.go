package handler

import (
	"net/http"

	"github.com/logbookhq/logbook/internal/server/middleware"
	"github.com/logbookhq/logbook/internal/service"
)

// SessionHandler owns login, logout, and session introspection.
type SessionHandler struct {
	authSvc      *service.AuthService
	secureCookie bool
}

// NewSessionHandler creates a SessionHandler. secureCookie should be true
// whenever the server terminates TLS.
func NewSessionHandler(authSvc *service.AuthService, secureCookie bool) *SessionHandler {
	return &SessionHandler{authSvc: authSvc, secureCookie: secureCookie}
}

// loginRequest is the expected payload for the Login endpoint. The password
// travels in plaintext over this one hop and is hashed before it goes
// anywhere near the gateway.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionResponse describes the caller's session.
type sessionResponse struct {
	Token     string `json:"session_token,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// Login authenticates against the gateway and starts a durable session. The
// signed token is returned in the body for Bearer callers and set as an
// HttpOnly cookie for the browser.
// POST /api/v1/session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	sess, token, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	ttl := h.authSvc.SessionTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(ttl.Seconds()),
		Username:  sess.Username,
		Role:      string(sess.Role),
	})
}

// Logout destroys the session and clears the cookie. Safe to call with an
// already-dead session; the response is 200 either way.
// DELETE /api/v1/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess != nil {
		if err := h.authSvc.Logout(r.Context(), sess.ID); err != nil {
			writeError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}

// Whoami reports the authenticated session's identity. The browser UI calls
// this on load to restore its state after a refresh.
// GET /api/v1/session
func (h *SessionHandler) Whoami(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse{
		Username: sess.Username,
		Role:     string(sess.Role),
	})
}
