package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lukazajc/najdeno/internal/model"
	"github.com/lukazajc/najdeno/internal/store"
	"github.com/lukazajc/najdeno/internal/workflow"
)

// UsersHandler handles account moderation endpoints (admin only).
type UsersHandler struct {
	DB     *sql.DB
	Engine *workflow.Engine
}

// List handles GET /api/admin/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
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

// Promote handles POST /api/admin/users/{id}/promote.
func (h *UsersHandler) Promote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.Engine.Promote(r.Context(), id)
	if err != nil {
		workflowError(w, err, "failed to promote user")
		return
	}

	admin := GetPrincipal(r.Context())
	slog.Info("user promoted", "admin", admin.Email, "target", user.Email)
	jsonResponse(w, http.StatusOK, user)
}

// Disable handles POST /api/admin/users/{id}/disable.
func (h *UsersHandler) Disable(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.Engine.Disable(r.Context(), id)
	if err != nil {
		workflowError(w, err, "failed to disable user")
		return
	}

	admin := GetPrincipal(r.Context())
	slog.Info("user disabled", "admin", admin.Email, "target", user.Email)
	jsonResponse(w, http.StatusOK, user)
}
