package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/inventory"
)

// CatalogHandler handles models, categories and manufacturers.
type CatalogHandler struct {
	Inventory *inventory.Service
	Log       *zap.Logger
}

// ListModels handles GET /api/models.
func (h *CatalogHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt(r, "category")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	list, err := h.Inventory.ListModels(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// CreateModel handles POST /api/models.
func (h *CatalogHandler) CreateModel(w http.ResponseWriter, r *http.Request) {
	var in inventory.ModelInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	m, err := h.Inventory.CreateModel(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, m)
}

// GetModel handles GET /api/models/{id}.
func (h *CatalogHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	m, err := h.Inventory.GetModel(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// UpdateModel handles PUT /api/models/{id}. A category change is carried
// over to every asset of the model.
func (h *CatalogHandler) UpdateModel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var in inventory.ModelInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	m, err := h.Inventory.UpdateModel(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// DeleteModel handles DELETE /api/models/{id}.
func (h *CatalogHandler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Inventory.DeleteModel(r.Context(), actor(r), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "model deleted"})
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Inventory.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// CreateCategory handles POST /api/categories.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in inventory.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	c, err := h.Inventory.CreateCategory(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

// GetCategory handles GET /api/categories/{id}.
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	c, err := h.Inventory.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// UpdateCategory handles PUT /api/categories/{id}.
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var in inventory.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	c, err := h.Inventory.UpdateCategory(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Inventory.DeleteCategory(r.Context(), actor(r), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// ListManufacturers handles GET /api/manufacturers.
func (h *CatalogHandler) ListManufacturers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Inventory.ListManufacturers(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// CreateManufacturer handles POST /api/manufacturers.
func (h *CatalogHandler) CreateManufacturer(w http.ResponseWriter, r *http.Request) {
	var in inventory.ManufacturerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	m, err := h.Inventory.CreateManufacturer(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, m)
}

// GetManufacturer handles GET /api/manufacturers/{id}.
func (h *CatalogHandler) GetManufacturer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	m, err := h.Inventory.GetManufacturer(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// UpdateManufacturer handles PUT /api/manufacturers/{id}.
func (h *CatalogHandler) UpdateManufacturer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var in inventory.ManufacturerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	m, err := h.Inventory.UpdateManufacturer(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// DeleteManufacturer handles DELETE /api/manufacturers/{id}.
func (h *CatalogHandler) DeleteManufacturer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := h.Inventory.DeleteManufacturer(r.Context(), actor(r), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "manufacturer deleted"})
}
