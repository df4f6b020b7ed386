package api

import (
	"database/sql"
	"net/http"
)

// NewRouter builds the API router. All endpoints except login go through
// the access middleware, which is a no-op until an access password is
// configured.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	accessMW := AccessMiddleware(db, jwtSecret)

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	worksHandler := &WorksHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	galleryHandler := &GalleryHandler{DB: db}
	proxiesHandler := &ProxiesHandler{DB: db}
	imagesHandler := &ImagesHandler{DB: db}
	backupHandler := &BackupHandler{DB: db}

	// Auth.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Works and categories.
	mux.Handle("GET /api/works", accessMW(http.HandlerFunc(worksHandler.List)))
	mux.Handle("POST /api/works", accessMW(http.HandlerFunc(worksHandler.Create)))
	mux.Handle("PUT /api/works/reorder", accessMW(http.HandlerFunc(worksHandler.Reorder)))
	mux.Handle("PUT /api/works/{id}", accessMW(http.HandlerFunc(worksHandler.Rename)))
	mux.Handle("DELETE /api/works/{id}", accessMW(http.HandlerFunc(worksHandler.Delete)))
	mux.Handle("POST /api/works/{id}/categories", accessMW(http.HandlerFunc(worksHandler.AddCategory)))
	mux.Handle("PUT /api/works/{id}/categories/{categoryId}", accessMW(http.HandlerFunc(worksHandler.UpdateCategory)))
	mux.Handle("DELETE /api/works/{id}/categories/{categoryId}", accessMW(http.HandlerFunc(worksHandler.DeleteCategory)))

	// Goods items.
	mux.Handle("GET /api/items", accessMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", accessMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/reorder", accessMW(http.HandlerFunc(itemsHandler.Reorder)))
	mux.Handle("PUT /api/items/{id}", accessMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", accessMW(http.HandlerFunc(itemsHandler.Delete)))

	// Gallery sets.
	mux.Handle("GET /api/gallery", accessMW(http.HandlerFunc(galleryHandler.List)))
	mux.Handle("POST /api/gallery", accessMW(http.HandlerFunc(galleryHandler.Create)))
	mux.Handle("PUT /api/gallery/reorder", accessMW(http.HandlerFunc(galleryHandler.Reorder)))
	mux.Handle("PUT /api/gallery/{id}", accessMW(http.HandlerFunc(galleryHandler.Update)))
	mux.Handle("DELETE /api/gallery/{id}", accessMW(http.HandlerFunc(galleryHandler.Delete)))

	// Proxy services.
	mux.Handle("GET /api/proxies", accessMW(http.HandlerFunc(proxiesHandler.List)))
	mux.Handle("POST /api/proxies", accessMW(http.HandlerFunc(proxiesHandler.Create)))
	mux.Handle("PUT /api/proxies/{id}", accessMW(http.HandlerFunc(proxiesHandler.Update)))
	mux.Handle("DELETE /api/proxies/{id}", accessMW(http.HandlerFunc(proxiesHandler.Delete)))

	// Images.
	mux.Handle("GET /api/images/{id}", accessMW(http.HandlerFunc(imagesHandler.Get)))
	mux.Handle("GET /api/images/{id}/base64", accessMW(http.HandlerFunc(imagesHandler.GetBase64)))

	// Stats.
	mux.Handle("GET /api/stats/monthly", accessMW(http.HandlerFunc(itemsHandler.MonthlyStats)))
	mux.Handle("GET /api/stats/works", accessMW(http.HandlerFunc(itemsHandler.WorkStats)))

	// Backup and restore.
	mux.Handle("GET /api/backup", accessMW(http.HandlerFunc(backupHandler.Export)))
	mux.Handle("POST /api/restore", accessMW(http.HandlerFunc(backupHandler.Restore)))

	return mux
}
