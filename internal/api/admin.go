package api

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/activity"
	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/backup"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

// AdminHandler handles the activity log, backups and the health check.
type AdminHandler struct {
	DB       *sql.DB
	Activity *activity.Recorder
	Backups  *backup.Coordinator
	Log      *zap.Logger
}

// ActivityLogs handles GET /api/activity-logs.
func (h *AdminHandler) ActivityLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	action := q.Get("action")
	if action != "" && action != model.ActionCreate && action != model.ActionUpdate && action != model.ActionDelete {
		writeError(w, r, h.Log, apperr.Invalid("action", "action must be one of: create, update, delete"))
		return
	}

	logs, err := h.Activity.List(r.Context(), store.ActivityFilter{
		TableName: q.Get("table"),
		Action:    action,
		RecordID:  q.Get("recordId"),
		Limit:     int(limit),
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, logs)
}

// ListBackups handles GET /api/backups.
func (h *AdminHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	list, err := h.Backups.List(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// CreateBackup handles POST /api/backups.
func (h *AdminHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	b, err := h.Backups.Create(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, b)
}

// DeleteBackup handles DELETE /api/backups/{filename}.
func (h *AdminHandler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	if err := h.Backups.Delete(r.Context(), actor(r), r.PathValue("filename")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "backup deleted"})
}

type backupSelection struct {
	Filename  string   `json:"filename"`
	Filenames []string `json:"filenames"`
}

func (s backupSelection) names() []string {
	names := append([]string(nil), s.Filenames...)
	if s.Filename != "" {
		names = append(names, s.Filename)
	}
	return names
}

// DeleteBackups handles POST /api/backups/delete.
func (h *AdminHandler) DeleteBackups(w http.ResponseWriter, r *http.Request) {
	var req backupSelection
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	names := req.names()
	if err := h.Backups.Delete(r.Context(), actor(r), names...); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"deleted": len(names)})
}

// Restore handles POST /api/restore. Exactly one archive may be named.
func (h *AdminHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req backupSelection
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Backups.Restore(r.Context(), actor(r), req.names()); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "backup restored"})
}

// Health handles GET /api/health.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		requestLogger(r, h.Log).Error("health check failed", zap.Error(err))
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
