package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/sammie3077/goodstracker/internal/imagestore"
	"github.com/sammie3077/goodstracker/internal/model"
	"github.com/sammie3077/goodstracker/internal/store"
)

// GalleryHandler handles gallery set endpoints.
type GalleryHandler struct {
	DB *sql.DB
}

// List handles GET /api/gallery.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	sets, err := store.ListGallery(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list gallery")
		return
	}
	if sets == nil {
		sets = []model.GalleryItem{}
	}
	jsonResponse(w, http.StatusOK, sets)
}

// Create handles POST /api/gallery.
func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.GalleryItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var stagedID string
	if req.Image != "" {
		imageID, err := imagestore.SaveImage(r.Context(), h.DB, req.Image)
		if quotaError(w, err) {
			return
		}
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid image payload")
			return
		}
		stagedID = imageID
		req.ImageID = imageID
		req.Image = ""
	}

	set, err := store.AddGalleryItem(r.Context(), h.DB, req)
	if err != nil {
		if stagedID != "" {
			discardImage(r.Context(), h.DB, stagedID)
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, set)
}

// Update handles PUT /api/gallery/{id}.
func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.GalleryItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = r.PathValue("id")

	existing, err := store.GetGalleryItem(r.Context(), h.DB, req.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load gallery set")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "gallery set not found")
		return
	}

	// As with items, the old blob survives until the updated record is
	// saved.
	var stagedID string
	removeOld := false
	switch {
	case req.Image != "":
		imageID, err := imagestore.SaveImage(r.Context(), h.DB, req.Image)
		if quotaError(w, err) {
			return
		}
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid image payload")
			return
		}
		stagedID = imageID
		req.ImageID = imageID
		req.Image = ""
		removeOld = existing.ImageID != ""
	case req.ImageID == "" && existing.ImageID != "":
		removeOld = true
	}

	if err := store.UpdateGalleryItem(r.Context(), h.DB, req); err != nil {
		if stagedID != "" {
			discardImage(r.Context(), h.DB, stagedID)
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if removeOld {
		if err := imagestore.DeleteImage(r.Context(), h.DB, existing.ImageID); err != nil {
			slog.Warn("failed to delete replaced gallery image", "imageId", existing.ImageID, "error", err)
		}
	}
	jsonResponse(w, http.StatusOK, req)
}

// Delete handles DELETE /api/gallery/{id}.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteGalleryItem(r.Context(), h.DB, r.PathValue("id")); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete gallery set")
		return
	}
	jsonResponse(w, http.StatusNoContent, nil)
}

// Reorder handles PUT /api/gallery/reorder with the full reordered list.
func (h *GalleryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var sets []model.GalleryItem
	if err := decodeJSON(r, &sets); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := store.BulkUpdateGallery(r.Context(), h.DB, sets); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to reorder gallery")
		return
	}
	jsonResponse(w, http.StatusOK, nil)
}
