package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/activity"
	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/auth"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
	"github.com/erazemk/assetdesk/internal/validate"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	DB       *sql.DB
	Activity *activity.Recorder
	Log      *zap.Logger
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,role"`
}

type updateUserRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, h.Log, err)
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
		writeError(w, r, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, hash, req.Role)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	h.Activity.Record(r.Context(), actor(r), model.ActionCreate, "users", user.ID,
		fmt.Sprintf("Created user %s (%s)", user.Username, user.Role))
	requestLogger(r, h.Log).Info("user created", zap.String("new_user", user.Username), zap.String("role", user.Role))
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if user == nil {
		writeError(w, r, h.Log, apperr.NotFound("user", id))
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// lastAdminGuard rejects removing the admin role from the only admin.
func lastAdminGuard(ctx context.Context, tx *sql.Tx, target *model.User) error {
	if target.Role != model.RoleAdmin {
		return nil
	}
	n, err := store.CountAdmins(ctx, tx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return &apperr.ConflictError{
			Message:   "cannot remove the last admin",
			Conflicts: []apperr.Ref{{Table: "users", ID: fmt.Sprint(target.ID), Name: target.Username}},
		}
	}
	return nil
}

// withUser loads the user id in a transaction and runs fn on it.
func (h *UsersHandler) withUser(ctx context.Context, id int64, fn func(tx *sql.Tx, u *model.User) error) (*model.User, error) {
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	user, err := store.GetUser(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user", id)
	}
	if err := fn(tx, user); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return user, nil
}

// Update handles PUT /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	user, err := h.withUser(r.Context(), id, func(tx *sql.Tx, u *model.User) error {
		if req.Role != model.RoleAdmin {
			if err := lastAdminGuard(r.Context(), tx, u); err != nil {
				return err
			}
		}
		if err := store.UpdateUserRole(r.Context(), tx, id, req.Role); err != nil {
			return err
		}
		u.Role = req.Role
		return nil
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	h.Activity.Record(r.Context(), actor(r), model.ActionUpdate, "users", id,
		fmt.Sprintf("Changed role of %s to %s", user.Username, req.Role))
	requestLogger(r, h.Log).Info("user role updated", zap.String("target_user", user.Username), zap.String("new_role", req.Role))
	jsonResponse(w, http.StatusOK, user)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	user, err := h.withUser(r.Context(), id, func(tx *sql.Tx, _ *model.User) error {
		return store.UpdateUserPassword(r.Context(), tx, id, hash)
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	h.Activity.Record(r.Context(), actor(r), model.ActionUpdate, "users", id, "Reset password of "+user.Username)
	requestLogger(r, h.Log).Info("user password reset", zap.String("target_user", user.Username))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	if actor(r).UserID == id {
		writeError(w, r, h.Log, &apperr.ConflictError{Message: "cannot delete yourself"})
		return
	}

	user, err := h.withUser(r.Context(), id, func(tx *sql.Tx, u *model.User) error {
		if err := lastAdminGuard(r.Context(), tx, u); err != nil {
			return err
		}
		return store.DeleteUser(r.Context(), tx, id)
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	h.Activity.Record(r.Context(), actor(r), model.ActionDelete, "users", id, "Deleted user "+user.Username)
	requestLogger(r, h.Log).Info("user deleted", zap.String("deleted_user", user.Username))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
