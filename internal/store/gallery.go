package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sammie3077/goodstracker/internal/docstore"
	"github.com/sammie3077/goodstracker/internal/imagestore"
	"github.com/sammie3077/goodstracker/internal/model"
)

// ListGallery returns all gallery items.
func ListGallery(ctx context.Context, db docstore.DBTX) ([]model.GalleryItem, error) {
	return docstore.GetAll[model.GalleryItem](ctx, db, docstore.Gallery)
}

// GetGalleryItem returns a gallery item by id, or nil if it does not exist.
func GetGalleryItem(ctx context.Context, db docstore.DBTX, id string) (*model.GalleryItem, error) {
	return docstore.Get[model.GalleryItem](ctx, db, docstore.Gallery, id)
}

// AddGalleryItem validates and stores a new gallery item. Missing spec ids,
// item id and creation time are filled in.
func AddGalleryItem(ctx context.Context, db docstore.DBTX, item model.GalleryItem) (*model.GalleryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}
	for i := range item.Specs {
		if item.Specs[i].ID == "" {
			item.Specs[i].ID = uuid.NewString()
		}
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := checkGalleryReferences(ctx, db, &item); err != nil {
		return nil, err
	}

	if err := docstore.Add(ctx, db, docstore.Gallery, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateGalleryItem validates and replaces an existing gallery item.
func UpdateGalleryItem(ctx context.Context, db docstore.DBTX, item model.GalleryItem) error {
	existing, err := GetGalleryItem(ctx, db, item.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("gallery item %q: %w", item.ID, ErrNotFound)
	}

	if err := item.Validate(); err != nil {
		return err
	}
	if err := checkGalleryReferences(ctx, db, &item); err != nil {
		return err
	}
	for i := range item.Specs {
		if item.Specs[i].ID == "" {
			item.Specs[i].ID = uuid.NewString()
		}
	}

	return docstore.Put(ctx, db, docstore.Gallery, item)
}

// BulkUpdateGallery persists a full reordered list of gallery items in one
// transaction.
func BulkUpdateGallery(ctx context.Context, db *sql.DB, items []model.GalleryItem) error {
	return docstore.BulkPut(ctx, db, docstore.Gallery, items)
}

// DeleteGalleryItem removes a gallery item, deleting its image blob first.
func DeleteGalleryItem(ctx context.Context, db docstore.DBTX, id string) error {
	item, err := GetGalleryItem(ctx, db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}

	if item.ImageID != "" {
		if err := imagestore.DeleteImage(ctx, db, item.ImageID); err != nil {
			slog.Warn("failed to delete gallery image", "galleryId", id, "imageId", item.ImageID, "error", err)
		}
	}
	return docstore.Delete(ctx, db, docstore.Gallery, id)
}

func checkGalleryReferences(ctx context.Context, db docstore.DBTX, item *model.GalleryItem) error {
	work, err := GetWork(ctx, db, item.WorkID)
	if err != nil {
		return err
	}
	if work == nil {
		return fmt.Errorf("work %q: %w", item.WorkID, ErrNotFound)
	}
	return nil
}
