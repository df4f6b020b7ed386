package api

import (
	"database/sql"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/sammie3077/goodstracker/internal/auth"
	"github.com/sammie3077/goodstracker/internal/store"
)

// AuthHandler handles the optional access-password login.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. When no access password is configured
// a token is not needed, and login reports that instead of succeeding.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hash, err := store.GetSetting(r.Context(), h.DB, accessPasswordKey)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to check access settings")
		return
	}
	if hash == "" {
		jsonError(w, http.StatusConflict, "no access password configured")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		jsonError(w, http.StatusUnauthorized, "wrong password")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"token": token})
}
