package api

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/apperr"
	"github.com/erazemk/assetdesk/internal/imaging"
	"github.com/erazemk/assetdesk/internal/inventory"
	"github.com/erazemk/assetdesk/internal/store"
)

// multipartOverhead is allowed on top of the image size limit.
const multipartOverhead = 1 << 20

// AssetsHandler handles asset endpoints, including assignment.
type AssetsHandler struct {
	Inventory *inventory.Service
	Images    *imaging.Store
	Log       *zap.Logger
}

// List handles GET /api/assets.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.AssetFilter{
		Status:        q.Get("status"),
		WorkstationID: q.Get("workstation"),
	}
	if v := q.Get("unassigned"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, h.Log, apperr.Invalid("unassigned", "unassigned must be true or false"))
			return
		}
		f.Unassigned = b
	}
	var err error
	if f.ModelID, err = queryInt(r, "model"); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if f.CategoryID, err = queryInt(r, "category"); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	assets, err := h.Inventory.ListAssets(r.Context(), f)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Create handles POST /api/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in inventory.AssetInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	asset, err := h.Inventory.CreateAsset(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, asset)
}

// Get handles GET /api/assets/{id}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	asset, err := h.Inventory.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Update handles PUT /api/assets/{id}.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	var in inventory.AssetInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	asset, err := h.Inventory.UpdateAsset(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	if err := h.Inventory.DeleteAsset(r.Context(), actor(r), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "asset deleted"})
}

// DeleteBatch handles POST /api/assets/delete.
func (h *AssetsHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	var req inventory.BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	n, err := h.Inventory.DeleteAssets(r.Context(), actor(r), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"deleted": n})
}

// Assign handles POST /api/assets/assign.
func (h *AssetsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req inventory.AssignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	assets, err := h.Inventory.Assign(r.Context(), actor(r), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Unassign handles POST /api/assets/unassign.
func (h *AssetsHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req inventory.BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	n, err := h.Inventory.Unassign(r.Context(), actor(r), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"unassigned": n})
}

// saveUpload stores the multipart "image" field and returns its name.
func (h *AssetsHandler) saveUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	if h.Images == nil {
		return "", apperr.Upstream("storing image", errors.New("image storage is not configured"))
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.Images.MaxBytes+multipartOverhead)

	file, _, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", apperr.Invalid("image", "image is too large")
		}
		return "", apperr.Invalid("image", "image file is required")
	}
	defer file.Close()

	return h.Images.Save(file)
}

// Upload handles POST /api/assets/upload-image and returns the stored
// name, which is then sent as imagePath on create or update.
func (h *AssetsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	name, err := h.saveUpload(w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	requestLogger(r, h.Log).Info("image uploaded", zap.String("image", name))
	jsonResponse(w, http.StatusCreated, map[string]string{"path": name})
}

// SetImage handles PUT /api/assets/{id}/image: upload and attach in one call.
func (h *AssetsHandler) SetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	name, err := h.saveUpload(w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	asset, err := h.Inventory.SetAssetImage(r.Context(), actor(r), id, name)
	if err != nil {
		if rmErr := h.Images.Remove(name); rmErr != nil {
			requestLogger(r, h.Log).Warn("removing orphaned image failed", zap.String("image", name), zap.Error(rmErr))
		}
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// RemoveImage handles DELETE /api/assets/{id}/image.
func (h *AssetsHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	asset, err := h.Inventory.SetAssetImage(r.Context(), actor(r), id, "")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// GetImage handles GET /api/assets/{id}/image.
func (h *AssetsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	asset, err := h.Inventory.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if asset.ImagePath == "" || h.Images == nil {
		writeError(w, r, h.Log, apperr.NotFound("image for asset", id))
		return
	}

	f, err := h.Images.Open(asset.ImagePath)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, r, h.Log, apperr.Upstream("reading image", err))
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, asset.ImagePath, info.ModTime(), f)
}
