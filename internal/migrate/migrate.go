// Package migrate runs one-shot data migrations at startup. Migrations are
// ordered and idempotent; each is identified by a registered ID and guarded
// by a completion marker persisted in the settings table, so repeated
// startups are no-ops once a migration has been applied.
package migrate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sammie3077/goodstracker/internal/docstore"
	"github.com/sammie3077/goodstracker/internal/imagestore"
	"github.com/sammie3077/goodstracker/internal/model"
	"github.com/sammie3077/goodstracker/internal/store"
)

// ID names a registered data migration.
type ID string

const (
	// LegacyKV moves entity arrays out of the flat legacy_store table
	// (ported from the first release's key-value storage) into the
	// collection tables.
	LegacyKV ID = "legacy-kv"

	// ConditionValues rewrites retired condition enum values to the
	// current tokens.
	ConditionValues ID = "condition-values"

	// InlineImages moves inline base64 image payloads out of item and
	// gallery documents into the image store.
	InlineImages ID = "inline-images"
)

// Legacy flat-store keys, written by the first release and consumed only
// here.
const (
	legacyItemsKey   = "goods_tracker_items"
	legacyGalleryKey = "goods_tracker_gallery"
	legacyWorksKey   = "goods_tracker_works"
	legacyProxiesKey = "goods_tracker_proxies"
)

type migration struct {
	id  ID
	run func(context.Context, *sql.DB) error
}

// pipeline is ordered: the legacy load must run before value rewrites, and
// value rewrites before the image sweep.
var pipeline = []migration{
	{LegacyKV, migrateLegacyKV},
	{ConditionValues, migrateConditionValues},
	{InlineImages, migrateInlineImages},
}

// Run applies all pending data migrations in order. Call after EnsureSchema
// and before serving.
func Run(ctx context.Context, db *sql.DB) error {
	for _, m := range pipeline {
		done, err := completed(ctx, db, m.id)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		if err := m.run(ctx, db); err != nil {
			return fmt.Errorf("migration %s: %w", m.id, err)
		}
		if err := markCompleted(ctx, db, m.id); err != nil {
			return err
		}
		slog.Info("applied data migration", "id", string(m.id))
	}
	return nil
}

func markerKey(id ID) string { return "migration:" + string(id) }

func completed(ctx context.Context, db *sql.DB, id ID) (bool, error) {
	value, err := store.GetSetting(ctx, db, markerKey(id))
	if err != nil {
		return false, err
	}
	return value == "done", nil
}

func markCompleted(ctx context.Context, db *sql.DB, id ID) error {
	return store.SetSetting(ctx, db, markerKey(id), "done")
}

// migrateLegacyKV bulk-loads each legacy entity array into its collection and
// deletes the legacy key. A collection that already holds records is left
// alone: the legacy data was either migrated before or superseded.
func migrateLegacyKV(ctx context.Context, db *sql.DB) error {
	if err := loadLegacyArray[model.GoodsItem](ctx, db, legacyItemsKey, docstore.Items); err != nil {
		return err
	}
	if err := loadLegacyArray[model.GalleryItem](ctx, db, legacyGalleryKey, docstore.Gallery); err != nil {
		return err
	}
	if err := loadLegacyArray[model.Work](ctx, db, legacyWorksKey, docstore.Works); err != nil {
		return err
	}
	return loadLegacyArray[model.ProxyService](ctx, db, legacyProxiesKey, docstore.Proxies)
}

func loadLegacyArray[T docstore.Record](ctx context.Context, db *sql.DB, key string, c docstore.Collection) error {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM legacy_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading legacy key %q: %w", key, err)
	}

	count, err := docstore.Count(ctx, db, c)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Warn("skipping legacy data for non-empty collection", "key", key, "collection", string(c))
		return nil
	}

	var records []T
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return fmt.Errorf("decoding legacy key %q: %w", key, err)
	}
	if err := docstore.BulkPut(ctx, db, c, records); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM legacy_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting legacy key %q: %w", key, err)
	}

	slog.Info("migrated legacy data", "key", key, "records", len(records))
	return nil
}

// migrateConditionValues rewrites items whose condition field still holds a
// retired value from the first release.
func migrateConditionValues(ctx context.Context, db *sql.DB) error {
	items, err := docstore.GetAll[model.GoodsItem](ctx, db, docstore.Items)
	if err != nil {
		return err
	}

	for _, item := range items {
		current, ok := model.LegacyConditionValues[item.Condition]
		if !ok {
			continue
		}
		item.Condition = current
		if err := docstore.Put(ctx, db, docstore.Items, item); err != nil {
			return err
		}
	}
	return nil
}

// migrateInlineImages moves inline base64 payloads into the image store and
// replaces them with blob references. A record whose image cannot be
// migrated is logged and skipped; the sweep continues with the rest.
func migrateInlineImages(ctx context.Context, db *sql.DB) error {
	items, err := docstore.GetAll[model.GoodsItem](ctx, db, docstore.Items)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Image == "" || item.ImageID != "" {
			continue
		}
		imageID, err := imagestore.SaveImage(ctx, db, item.Image)
		if err != nil {
			slog.Warn("failed to migrate item image", "itemId", item.ID, "error", err)
			continue
		}
		item.ImageID = imageID
		item.Image = ""
		if err := docstore.Put(ctx, db, docstore.Items, item); err != nil {
			slog.Warn("failed to update migrated item", "itemId", item.ID, "error", err)
		}
	}

	gallery, err := docstore.GetAll[model.GalleryItem](ctx, db, docstore.Gallery)
	if err != nil {
		return err
	}
	for _, item := range gallery {
		if item.Image == "" || item.ImageID != "" {
			continue
		}
		imageID, err := imagestore.SaveImage(ctx, db, item.Image)
		if err != nil {
			slog.Warn("failed to migrate gallery image", "galleryId", item.ID, "error", err)
			continue
		}
		item.ImageID = imageID
		item.Image = ""
		if err := docstore.Put(ctx, db, docstore.Gallery, item); err != nil {
			slog.Warn("failed to update migrated gallery item", "galleryId", item.ID, "error", err)
		}
	}

	return nil
}
