package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// UsersHandler handles account administration (admin only).
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// updateUserRequest changes the role and, when both are given, the profile.
type updateUserRequest struct {
	Role        string  `json:"role"`
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// targetUser loads the active user named by the {id} path value. It writes the
// error response itself and returns nil when there is none.
func (h *UsersHandler) targetUser(w http.ResponseWriter, r *http.Request) *model.User {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return nil
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return nil
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return nil
	}
	return user
}

// List handles GET /api/users?role=moderator.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && !model.ValidRole(role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}

	users, err := store.ListUsers(r.Context(), h.DB, role)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || req.Role == "" {
		jsonError(w, http.StatusBadRequest, "username, password, and role required")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DisplayName != "" || req.Email != "" {
		if err := model.ValidateProfile(req.DisplayName, req.Email); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username,
		strings.TrimSpace(req.DisplayName), strings.TrimSpace(req.Email), string(hash), req.Role)
	if err != nil {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}

	session := GetSession(r.Context())
	slog.Info("user created", "user", session.Username, "new_user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}. The response carries the same activity
// counts a user sees on their own profile.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := h.targetUser(w, r)
	if user == nil {
		return
	}
	if p := loadProfile(w, r, h.DB, user.ID); p != nil {
		jsonResponse(w, http.StatusOK, p)
	}
}

// Update handles PUT /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := h.targetUser(w, r)
	if user == nil {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Role == "" {
		req.Role = user.Role
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}

	session := GetSession(r.Context())
	if user.ID == session.UserID && req.Role != user.Role {
		jsonError(w, http.StatusBadRequest, "cannot change your own role")
		return
	}

	if (req.DisplayName == nil) != (req.Email == nil) {
		jsonError(w, http.StatusBadRequest, "display_name and email must be set together")
		return
	}
	if req.DisplayName != nil {
		if err := model.ValidateProfile(*req.DisplayName, *req.Email); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		ok, err := store.UpdateUserProfile(r.Context(), h.DB, user.ID,
			strings.TrimSpace(*req.DisplayName), strings.TrimSpace(*req.Email))
		if err != nil {
			slog.Error("failed to update user profile", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to update user")
			return
		}
		if !ok {
			jsonError(w, http.StatusNotFound, "user not found")
			return
		}
	}

	if req.Role != user.Role {
		if err := store.UpdateUser(r.Context(), h.DB, user.ID, req.Role); err != nil {
			slog.Error("failed to update user", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to update user")
			return
		}
		slog.Info("user role updated", "user", session.Username, "target_user", user.Username,
			"old_role", user.Role, "new_role", req.Role)
	}

	updated, err := store.GetUser(r.Context(), h.DB, user.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	user := h.targetUser(w, r)
	if user == nil {
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, string(hash)); err != nil {
		slog.Error("failed to reset password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	slog.Info("user password reset", "user", GetSession(r.Context()).Username, "target_user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{id}. The row is kept so claims and audit
// entries still resolve to a name.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := h.targetUser(w, r)
	if user == nil {
		return
	}

	session := GetSession(r.Context())
	if session.UserID == user.ID {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, user.ID); err != nil {
		slog.Error("failed to delete user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	slog.Info("user deleted", "user", session.Username, "deleted_user", user.Username, "claims", user.ClaimsCount)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
