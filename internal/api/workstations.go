package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/inventory"
	"github.com/erazemk/assetdesk/internal/model"
)

// WorkstationsHandler handles workstation endpoints and the per-employee
// workstation lookups.
type WorkstationsHandler struct {
	Inventory *inventory.Service
	Log       *zap.Logger
}

// List handles GET /api/workstations.
func (h *WorkstationsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Inventory.ListWorkstations(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Create handles POST /api/workstations. An empty workStationID allocates
// the next free code.
func (h *WorkstationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in inventory.WorkstationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ws, err := h.Inventory.CreateWorkstation(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, ws)
}

// Get handles GET /api/workstations/{id}.
func (h *WorkstationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := h.Inventory.GetWorkstation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, ws)
}

// Update handles PUT /api/workstations/{id}. Moving a workstation with
// assets to another employee needs confirmTransfer; without it the
// response is 409 listing the bound assets.
func (h *WorkstationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in inventory.WorkstationUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ws, err := h.Inventory.UpdateWorkstation(r.Context(), actor(r), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, ws)
}

// Delete handles DELETE /api/workstations/{id}.
func (h *WorkstationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Inventory.DeleteWorkstation(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "workstation deleted"})
}

// ForEmployee handles GET /api/employees/{id}/workstations. An employee
// without workstations gets a default one created by this call.
func (h *WorkstationsHandler) ForEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	list, err := h.Inventory.WorkstationsForEmployee(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

type ensureDefaultResponse struct {
	Workstation *model.Workstation `json:"workstation"`
	Created     bool               `json:"created"`
}

// EnsureDefault handles POST /api/employees/{id}/workstations/default.
func (h *WorkstationsHandler) EnsureDefault(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ws, created, err := h.Inventory.EnsureDefaultWorkstation(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	jsonResponse(w, status, ensureDefaultResponse{Workstation: ws, Created: created})
}
