package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/inventory"
	"github.com/erazemk/assetdesk/internal/model"
)

// PeopleHandler handles employees, companies and departments.
type PeopleHandler struct {
	Inventory *inventory.Service
	Log       *zap.Logger
}

// ListEmployees handles GET /api/employees with optional status and
// department filters.
func (h *PeopleHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	if status != "" && status != model.EmployeeActive && status != model.EmployeeInactive {
		writeError(w, r, h.Log, apperr.Invalid("status", "status must be one of: active, inactive"))
		return
	}
	list, err := h.Inventory.ListEmployees(r.Context(), status, q.Get("department"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// CreateEmployee handles POST /api/employees.
func (h *PeopleHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var in inventory.EmployeeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	e, err := h.Inventory.CreateEmployee(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, e)
}

// GetEmployee handles GET /api/employees/{id}.
func (h *PeopleHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	e, err := h.Inventory.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, e)
}

// UpdateEmployee handles PUT /api/employees/{id}.
func (h *PeopleHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var in inventory.EmployeeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	e, err := h.Inventory.UpdateEmployee(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, e)
}

// DeleteEmployee handles DELETE /api/employees/{id}.
func (h *PeopleHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Inventory.DeleteEmployee(r.Context(), actor(r), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}

// ListCompanies handles GET /api/companies.
func (h *PeopleHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	list, err := h.Inventory.ListCompanies(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// CreateCompany handles POST /api/companies.
func (h *PeopleHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var in inventory.CompanyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	c, err := h.Inventory.CreateCompany(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

// GetCompany handles GET /api/companies/{id}.
func (h *PeopleHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	c, err := h.Inventory.GetCompany(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// UpdateCompany handles PUT /api/companies/{id}.
func (h *PeopleHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var in inventory.CompanyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	c, err := h.Inventory.UpdateCompany(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// DeleteCompany handles DELETE /api/companies/{id}.
func (h *PeopleHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Inventory.DeleteCompany(r.Context(), actor(r), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "company deleted"})
}

// ListDepartments handles GET /api/departments, optionally filtered by
// ?company=.
func (h *PeopleHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	companyID, err := queryInt(r, "company")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	list, err := h.Inventory.ListDepartments(r.Context(), companyID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// CreateDepartment handles POST /api/departments.
func (h *PeopleHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var in inventory.DepartmentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	d, err := h.Inventory.CreateDepartment(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, d)
}

// GetDepartment handles GET /api/departments/{id}.
func (h *PeopleHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	d, err := h.Inventory.GetDepartment(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

// UpdateDepartment handles PUT /api/departments/{id}.
func (h *PeopleHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var in inventory.DepartmentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	d, err := h.Inventory.UpdateDepartment(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

// DeleteDepartment handles DELETE /api/departments/{id}.
func (h *PeopleHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Inventory.DeleteDepartment(r.Context(), actor(r), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "department deleted"})
}
