package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sammie3077/goodstracker/internal/backup"
)

// BackupHandler handles full backup export and restore.
type BackupHandler struct {
	DB *sql.DB
}

// Export handles GET /api/backup, returning the full dataset as a JSON
// download.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := backup.Export(r.Context(), h.DB)
	if err != nil {
		slog.Error("Backup export failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", backup.Filename(time.Now())))
	jsonResponse(w, http.StatusOK, doc)
}

// Restore handles POST /api/restore. The restore replaces all existing
// data, so a malformed document is rejected before anything is cleared.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var doc backup.Document
	if err := decodeJSON(r, &doc); err != nil {
		jsonError(w, http.StatusBadRequest, "backup file format error")
		return
	}

	if err := backup.Restore(r.Context(), h.DB, &doc); err != nil {
		slog.Error("Backup restore failed", "error", err)
		jsonError(w, http.StatusBadRequest, "backup file format error")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "restored"})
}
