package api

import (
	"database/sql"
	"net/http"

	"github.com/sammie3077/goodstracker/internal/model"
	"github.com/sammie3077/goodstracker/internal/store"
)

// ProxiesHandler handles proxy service endpoints.
type ProxiesHandler struct {
	DB *sql.DB
}

// List handles GET /api/proxies.
func (h *ProxiesHandler) List(w http.ResponseWriter, r *http.Request) {
	proxies, err := store.ListProxies(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list proxies")
		return
	}
	if proxies == nil {
		proxies = []model.ProxyService{}
	}
	jsonResponse(w, http.StatusOK, proxies)
}

// Create handles POST /api/proxies.
func (h *ProxiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ProxyService
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	proxy, err := store.AddProxy(r.Context(), h.DB, req)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, proxy)
}

// Update handles PUT /api/proxies/{id}.
func (h *ProxiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ProxyService
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = r.PathValue("id")
	if err := store.UpdateProxy(r.Context(), h.DB, req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Delete handles DELETE /api/proxies/{id}. Items purchased through the
// deleted proxy are relabeled as self-purchased.
func (h *ProxiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteProxy(r.Context(), h.DB, r.PathValue("id")); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete proxy")
		return
	}
	jsonResponse(w, http.StatusNoContent, nil)
}
