package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/logbookhq/logbook/internal/model"
	"github.com/logbookhq/logbook/internal/server/middleware"
	"github.com/logbookhq/logbook/internal/service"
)

// UserHandler owns password changes and the admin-only user management
// endpoints.
type UserHandler struct {
	authSvc *service.AuthService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(authSvc *service.AuthService) *UserHandler {
	return &UserHandler{authSvc: authSvc}
}

// changePasswordRequest is the expected payload for ChangePassword.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword swaps the caller's own password. Validation failures are
// reported before the gateway is contacted.
// POST /api/v1/session/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	sess := middleware.GetSession(r.Context())
	err := h.authSvc.ChangePassword(r.Context(), sess,
		req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password changed",
	})
}

// addUserRequest is the expected payload for AddUser.
type addUserRequest struct {
	Username string `json:"username"`
}

// addUserResponse carries the generated default password. It is shown once
// and never persisted here.
type addUserResponse struct {
	Username        string `json:"username"`
	DefaultPassword string `json:"default_password"`
}

// AddUser creates a new standard account. Admin only.
// POST /api/v1/users
func (h *UserHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	sess := middleware.GetSession(r.Context())
	defaultPassword, err := h.authSvc.AddUser(r.Context(), sess, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, addUserResponse{
		Username:        req.Username,
		DefaultPassword: defaultPassword,
	})
}

// listUsersResponse is the envelope for the user listing.
type listUsersResponse struct {
	Users []model.UserSummary `json:"users"`
	Meta  *model.ResponseMeta `json:"meta,omitempty"`
}

// ListUsers returns all accounts in the gateway's order. Admin only.
// GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	users, err := h.authSvc.ListUsers(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []model.UserSummary{}
	}

	writeJSON(w, http.StatusOK, listUsersResponse{
		Users: users,
		Meta:  &model.ResponseMeta{Count: len(users)},
	})
}

// DeleteUser removes an account. Admin only; the reserved admin account is
// refused.
// DELETE /api/v1/users/{username}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	sess := middleware.GetSession(r.Context())
	if err := h.authSvc.DeleteUser(r.Context(), sess, username); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User '" + username + "' deleted",
	})
}
