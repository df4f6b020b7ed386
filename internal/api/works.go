package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/sammie3077/goodstracker/internal/model"
	"github.com/sammie3077/goodstracker/internal/store"
)

// WorksHandler handles work and category endpoints.
type WorksHandler struct {
	DB *sql.DB
}

type workRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/works.
func (h *WorksHandler) List(w http.ResponseWriter, r *http.Request) {
	works, err := store.ListWorks(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list works")
		return
	}
	if works == nil {
		works = []model.Work{}
	}
	jsonResponse(w, http.StatusOK, works)
}

// Create handles POST /api/works.
func (h *WorksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req workRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	work, err := store.AddWork(r.Context(), h.DB, req.Name)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create work")
		return
	}
	jsonResponse(w, http.StatusCreated, work)
}

// Rename handles PUT /api/works/{id}.
func (h *WorksHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req workRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	err := store.RenameWork(r.Context(), h.DB, r.PathValue("id"), req.Name)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "work not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to rename work")
		return
	}
	jsonResponse(w, http.StatusOK, nil)
}

// Delete handles DELETE /api/works/{id}. Cascades to the work's items,
// gallery items, and their images.
func (h *WorksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteWork(r.Context(), h.DB, r.PathValue("id")); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete work")
		return
	}
	jsonResponse(w, http.StatusNoContent, nil)
}

// Reorder handles PUT /api/works/reorder with the full reordered list.
func (h *WorksHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var works []model.Work
	if err := decodeJSON(r, &works); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := store.BulkUpdateWorks(r.Context(), h.DB, works); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to reorder works")
		return
	}
	jsonResponse(w, http.StatusOK, nil)
}

// AddCategory handles POST /api/works/{id}/categories.
func (h *WorksHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req workRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	category, err := store.AddCategory(r.Context(), h.DB, r.PathValue("id"), req.Name)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "work not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to add category")
		return
	}
	jsonResponse(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/works/{id}/categories/{categoryId}.
func (h *WorksHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req workRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := store.UpdateCategory(r.Context(), h.DB, r.PathValue("id"), r.PathValue("categoryId"), req.Name)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update category")
		return
	}
	jsonResponse(w, http.StatusOK, nil)
}

// DeleteCategory handles DELETE /api/works/{id}/categories/{categoryId}.
// Cascades to the category's items and their images.
func (h *WorksHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := store.DeleteCategory(r.Context(), h.DB, r.PathValue("id"), r.PathValue("categoryId"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "work not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	jsonResponse(w, http.StatusNoContent, nil)
}
