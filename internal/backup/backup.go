// Package backup serializes the whole database into one portable JSON
// document and reconstructs it on restore. The document is the only durable
// interchange format: every entity collection plus every image, images
// carried as base64 so the file is self-contained.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/sammie3077/goodstracker/internal/docstore"
	"github.com/sammie3077/goodstracker/internal/imagestore"
	"github.com/sammie3077/goodstracker/internal/model"
	"github.com/sammie3077/goodstracker/internal/store"
)

// ThemeSettingKey stores the UI theme preference, carried along in backups.
const ThemeSettingKey = "theme"

// DefaultTheme matches the UI's initial theme.
const DefaultTheme = "yellow"

// ImageEntry is one image payload in a backup document.
type ImageEntry struct {
	ID        string `json:"id"`
	Base64    string `json:"base64"`
	CreatedAt int64  `json:"createdAt"`
}

// Document is the full-snapshot backup format.
type Document struct {
	Items      []model.GoodsItem    `json:"items"`
	Gallery    []model.GalleryItem  `json:"gallery"`
	Works      []model.Work         `json:"works"`
	Proxies    []model.ProxyService `json:"proxies"`
	Images     []ImageEntry         `json:"images"`
	Theme      string               `json:"theme"`
	BackupDate string               `json:"backupDate"`
}

// Filename returns the download name for a backup taken at the given time,
// e.g. "goods-tracker-backup-2026-08-31.json".
func Filename(now time.Time) string {
	return "goods-tracker-backup-" + now.Format("2006-01-02") + ".json"
}

// Export reads every collection and every image into a Document. An image
// that cannot be converted is logged and omitted rather than aborting the
// whole export.
func Export(ctx context.Context, db *sql.DB) (*Document, error) {
	doc := &Document{
		Theme:      DefaultTheme,
		BackupDate: time.Now().UTC().Format(time.RFC3339),
	}

	var err error
	if doc.Items, err = docstore.GetAll[model.GoodsItem](ctx, db, docstore.Items); err != nil {
		return nil, err
	}
	if doc.Gallery, err = docstore.GetAll[model.GalleryItem](ctx, db, docstore.Gallery); err != nil {
		return nil, err
	}
	if doc.Works, err = docstore.GetAll[model.Work](ctx, db, docstore.Works); err != nil {
		return nil, err
	}
	if doc.Proxies, err = docstore.GetAll[model.ProxyService](ctx, db, docstore.Proxies); err != nil {
		return nil, err
	}

	if theme, err := store.GetSetting(ctx, db, ThemeSettingKey); err != nil {
		return nil, err
	} else if theme != "" {
		doc.Theme = theme
	}

	images, err := imagestore.ListImages(ctx, db)
	if err != nil {
		return nil, err
	}
	doc.Images = make([]ImageEntry, 0, len(images))
	for _, img := range images {
		if len(img.Data) == 0 {
			slog.Warn("omitting empty image from export", "id", img.ID)
			continue
		}
		doc.Images = append(doc.Images, ImageEntry{
			ID:        img.ID,
			Base64:    imagestore.EncodeDataURI(img.Data, img.MIME),
			CreatedAt: img.CreatedAt,
		})
	}

	return doc, nil
}

// Restore destructively replaces all local state with the document's
// contents: collections and images are cleared, entity arrays bulk-loaded,
// and each image replayed under its original id so references in the
// restored records stay valid. A per-image failure is logged and skipped;
// an error during the clear or bulk-load phase fails the whole restore.
func Restore(ctx context.Context, db *sql.DB, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("nil backup document")
	}

	for _, c := range []docstore.Collection{docstore.Items, docstore.Gallery, docstore.Works, docstore.Proxies} {
		if err := docstore.Clear(ctx, db, c); err != nil {
			return err
		}
	}
	if err := imagestore.ClearImages(ctx, db); err != nil {
		return err
	}

	if err := docstore.BulkPut(ctx, db, docstore.Items, doc.Items); err != nil {
		return err
	}
	if err := docstore.BulkPut(ctx, db, docstore.Gallery, doc.Gallery); err != nil {
		return err
	}
	if err := docstore.BulkPut(ctx, db, docstore.Works, doc.Works); err != nil {
		return err
	}
	if err := docstore.BulkPut(ctx, db, docstore.Proxies, doc.Proxies); err != nil {
		return err
	}

	if doc.Theme != "" {
		if err := store.SetSetting(ctx, db, ThemeSettingKey, doc.Theme); err != nil {
			return err
		}
	}

	for _, entry := range doc.Images {
		if err := imagestore.SaveImageWithID(ctx, db, entry.ID, entry.Base64, entry.CreatedAt); err != nil {
			slog.Warn("failed to restore image", "id", entry.ID, "error", err)
		}
	}

	return nil
}
