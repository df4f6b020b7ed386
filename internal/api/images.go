package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/sammie3077/goodstracker/internal/imagestore"
)

// ImagesHandler serves stored image blobs.
type ImagesHandler struct {
	DB *sql.DB
}

// Get handles GET /api/images/{id}, serving the raw blob with its stored
// content type.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	img, err := imagestore.GetImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load image")
		return
	}
	if img == nil {
		jsonError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// GetBase64 handles GET /api/images/{id}/base64, returning the blob as a
// data URI for edit forms that re-submit images inline.
func (h *ImagesHandler) GetBase64(w http.ResponseWriter, r *http.Request) {
	encoded, err := imagestore.GetImageBase64(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load image")
		return
	}
	if encoded == "" {
		jsonError(w, http.StatusNotFound, "image not found")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"data": encoded})
}
