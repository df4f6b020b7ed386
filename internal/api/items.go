package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sammie3077/goodstracker/internal/imagestore"
	"github.com/sammie3077/goodstracker/internal/model"
	"github.com/sammie3077/goodstracker/internal/store"
)

// ItemsHandler handles goods item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

// quotaError maps the image store's quota error to a user-facing response.
func quotaError(w http.ResponseWriter, err error) bool {
	if errors.Is(err, imagestore.ErrQuotaExceeded) {
		jsonError(w, http.StatusInsufficientStorage, "storage is full: delete some old images and try again")
		return true
	}
	return false
}

// discardImage removes a blob that was staged for a record the store
// rejected. Each blob must be referenced by exactly one saved record, so a
// staged blob with no record cannot stay.
func discardImage(ctx context.Context, db *sql.DB, id string) {
	if err := imagestore.DeleteImage(ctx, db, id); err != nil {
		slog.Warn("failed to discard staged image", "imageId", id, "error", err)
	}
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.GoodsItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. A base64 payload in the "image" field is
// stored as a blob and replaced with its reference before the record is
// saved.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.GoodsItem
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

	item, err := store.AddItem(r.Context(), h.DB, req)
	if err != nil {
		if stagedID != "" {
			discardImage(r.Context(), h.DB, stagedID)
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/items/{id}. An inline image replaces the stored
// blob; clearing both image fields deletes it.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.GoodsItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = r.PathValue("id")

	existing, err := store.GetItem(r.Context(), h.DB, req.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	// The old blob is only deleted once the updated record is saved, so a
	// rejected update never strands the record's image reference.
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
		// Image removed by the edit form.
		removeOld = true
	}

	if err := store.UpdateItem(r.Context(), h.DB, req); err != nil {
		if stagedID != "" {
			discardImage(r.Context(), h.DB, stagedID)
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if removeOld {
		if err := imagestore.DeleteImage(r.Context(), h.DB, existing.ImageID); err != nil {
			slog.Warn("failed to delete replaced item image", "imageId", existing.ImageID, "error", err)
		}
	}
	jsonResponse(w, http.StatusOK, req)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteItem(r.Context(), h.DB, r.PathValue("id")); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	jsonResponse(w, http.StatusNoContent, nil)
}

// Reorder handles PUT /api/items/reorder with the full reordered list.
func (h *ItemsHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var items []model.GoodsItem
	if err := decodeJSON(r, &items); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := store.BulkUpdateItems(r.Context(), h.DB, items); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to reorder items")
		return
	}
	jsonResponse(w, http.StatusOK, nil)
}

// MonthlyStats handles GET /api/stats/monthly.
func (h *ItemsHandler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	months, err := store.MonthlySpending(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to aggregate spending")
		return
	}
	if months == nil {
		months = []store.MonthlySpend{}
	}
	jsonResponse(w, http.StatusOK, months)
}

// WorkStats handles GET /api/stats/works.
func (h *ItemsHandler) WorkStats(w http.ResponseWriter, r *http.Request) {
	counts, err := store.ItemCountsByWork(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to count items")
		return
	}
	if counts == nil {
		counts = []store.WorkItemCount{}
	}
	jsonResponse(w, http.StatusOK, counts)
}
