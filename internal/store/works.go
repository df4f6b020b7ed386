package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sammie3077/goodstracker/internal/docstore"
	"github.com/sammie3077/goodstracker/internal/model"
)

// ErrNotFound reports that a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ListWorks returns all works.
func ListWorks(ctx context.Context, db docstore.DBTX) ([]model.Work, error) {
	return docstore.GetAll[model.Work](ctx, db, docstore.Works)
}

// GetWork returns a work by id, or nil if it does not exist.
func GetWork(ctx context.Context, db docstore.DBTX, id string) (*model.Work, error) {
	return docstore.Get[model.Work](ctx, db, docstore.Works, id)
}

// AddWork creates a work seeded with the default category set.
func AddWork(ctx context.Context, db docstore.DBTX, name string) (*model.Work, error) {
	if name == "" {
		return nil, fmt.Errorf("work name is required")
	}

	work := model.Work{
		ID:         uuid.NewString(),
		Name:       name,
		Categories: make([]model.Category, 0, len(model.DefaultCategoryNames)),
	}
	for _, categoryName := range model.DefaultCategoryNames {
		work.Categories = append(work.Categories, model.Category{
			ID:   uuid.NewString(),
			Name: categoryName,
		})
	}

	if err := docstore.Add(ctx, db, docstore.Works, work); err != nil {
		return nil, err
	}
	return &work, nil
}

// RenameWork changes a work's display name.
func RenameWork(ctx context.Context, db docstore.DBTX, id, name string) error {
	work, err := GetWork(ctx, db, id)
	if err != nil {
		return err
	}
	if work == nil {
		return fmt.Errorf("work %q: %w", id, ErrNotFound)
	}
	work.Name = name
	return docstore.Put(ctx, db, docstore.Works, *work)
}

// BulkUpdateWorks persists a full reordered list of works in one transaction.
func BulkUpdateWorks(ctx context.Context, db *sql.DB, works []model.Work) error {
	return docstore.BulkPut(ctx, db, docstore.Works, works)
}

// DeleteWork removes a work and everything that references it, in one
// transaction: first the image blobs of referencing items and gallery items,
// then those records, then the work itself. Deleting the work first would
// strand orphaned items with no way to discover their images for cleanup.
func DeleteWork(ctx context.Context, db *sql.DB, workID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	imageIDs, err := referencedImageIDs(ctx, tx,
		`SELECT json_extract(data, '$.imageId') FROM items WHERE json_extract(data, '$.workId') = ?
		 UNION ALL
		 SELECT json_extract(data, '$.imageId') FROM gallery WHERE json_extract(data, '$.workId') = ?`,
		workID, workID,
	)
	if err != nil {
		return err
	}
	if err := deleteImages(ctx, tx, imageIDs); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM items WHERE json_extract(data, '$.workId') = ?`, workID,
	); err != nil {
		return fmt.Errorf("deleting work items: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM gallery WHERE json_extract(data, '$.workId') = ?`, workID,
	); err != nil {
		return fmt.Errorf("deleting work gallery items: %w", err)
	}
	if err := docstore.Delete(ctx, tx, docstore.Works, workID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing work delete: %w", err)
	}
	return nil
}

// AddCategory appends a new category to a work's embedded category list.
func AddCategory(ctx context.Context, db docstore.DBTX, workID, name string) (*model.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	work, err := GetWork(ctx, db, workID)
	if err != nil {
		return nil, err
	}
	if work == nil {
		return nil, fmt.Errorf("work %q: %w", workID, ErrNotFound)
	}

	category := model.Category{ID: uuid.NewString(), Name: name}
	work.Categories = append(work.Categories, category)
	if err := docstore.Put(ctx, db, docstore.Works, *work); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory renames a category inside a work's embedded list.
func UpdateCategory(ctx context.Context, db docstore.DBTX, workID, categoryID, name string) error {
	work, err := GetWork(ctx, db, workID)
	if err != nil {
		return err
	}
	if work == nil {
		return fmt.Errorf("work %q: %w", workID, ErrNotFound)
	}

	category := work.Category(categoryID)
	if category == nil {
		return fmt.Errorf("category %q: %w", categoryID, ErrNotFound)
	}
	category.Name = name
	return docstore.Put(ctx, db, docstore.Works, *work)
}

// DeleteCategory removes a category from a work and cascades to the items
// referencing it (and their images), in one transaction.
func DeleteCategory(ctx context.Context, db *sql.DB, workID, categoryID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	imageIDs, err := referencedImageIDs(ctx, tx,
		`SELECT json_extract(data, '$.imageId') FROM items WHERE json_extract(data, '$.categoryId') = ?`,
		categoryID,
	)
	if err != nil {
		return err
	}
	if err := deleteImages(ctx, tx, imageIDs); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM items WHERE json_extract(data, '$.categoryId') = ?`, categoryID,
	); err != nil {
		return fmt.Errorf("deleting category items: %w", err)
	}

	work, err := docstore.Get[model.Work](ctx, tx, docstore.Works, workID)
	if err != nil {
		return err
	}
	if work == nil {
		return fmt.Errorf("work %q: %w", workID, ErrNotFound)
	}

	kept := work.Categories[:0]
	for _, category := range work.Categories {
		if category.ID != categoryID {
			kept = append(kept, category)
		}
	}
	work.Categories = kept
	if err := docstore.Put(ctx, tx, docstore.Works, *work); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing category delete: %w", err)
	}
	return nil
}

// referencedImageIDs collects non-empty imageId values from a query returning
// a single json_extract column.
func referencedImageIDs(ctx context.Context, db docstore.DBTX, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("collecting image references: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id sql.NullString
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning image reference: %w", err)
		}
		if id.Valid && id.String != "" {
			ids = append(ids, id.String)
		}
	}
	return ids, rows.Err()
}

// deleteImages removes the given image blobs.
func deleteImages(ctx context.Context, db docstore.DBTX, ids []string) error {
	for _, id := range ids {
		if _, err := db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting image %q: %w", id, err)
		}
	}
	return nil
}
