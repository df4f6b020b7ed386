// Package imagestore persists image payloads separately from the entity
// documents that reference them. Records reference images by opaque id; the
// binary travels as a base64 data URI at the edges (forms, backups) and as a
// blob inside the database.
package imagestore

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sammie3077/goodstracker/internal/docstore"
	"github.com/sammie3077/goodstracker/internal/imaging"
	"github.com/sammie3077/goodstracker/internal/model"
)

// ErrQuotaExceeded reports that the database device is out of space. Callers
// should tell the user to delete old images instead of showing a generic
// failure.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// fallbackMIME is assumed when a base64 payload has no data-URI prefix.
const fallbackMIME = "image/png"

// SaveImage decodes a base64 payload (with or without a data-URI prefix),
// normalizes it, and stores it under a fresh id. Returns the new image id.
func SaveImage(ctx context.Context, db docstore.DBTX, encoded string) (string, error) {
	id := uuid.NewString()
	if err := SaveImageWithID(ctx, db, id, encoded, time.Now().UnixMilli()); err != nil {
		return "", err
	}
	return id, nil
}

// SaveImageWithID stores a base64 payload under a caller-supplied id and
// creation time. Used by restore, which must preserve the ids referenced by
// the restored records.
func SaveImageWithID(ctx context.Context, db docstore.DBTX, id, encoded string, createdAt int64) error {
	data, mime, err := DecodeDataURI(encoded)
	if err != nil {
		return fmt.Errorf("decoding image payload: %w", err)
	}

	normalized, sniffed, err := imaging.Normalize(data)
	if err != nil {
		return fmt.Errorf("normalizing image: %w", err)
	}
	data = normalized
	if strings.HasPrefix(sniffed, "image/") {
		mime = sniffed
	}

	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO images (id, data, mime, created_at) VALUES (?, ?, ?, ?)`,
		id, data, mime, createdAt,
	)
	if err != nil {
		if isDiskFull(err) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("storing image: %w", err)
	}
	return nil
}

// GetImage returns the stored image, or nil if no record exists.
func GetImage(ctx context.Context, db docstore.DBTX, id string) (*model.ImageRecord, error) {
	img := &model.ImageRecord{ID: id}
	err := db.QueryRowContext(ctx,
		`SELECT data, mime, created_at FROM images WHERE id = ?`, id,
	).Scan(&img.Data, &img.MIME, &img.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting image: %w", err)
	}
	return img, nil
}

// GetImageBase64 returns the stored image re-encoded as a data URI, or ""
// if no record exists. Used when handing an image to an edit form or a
// backup document.
func GetImageBase64(ctx context.Context, db docstore.DBTX, id string) (string, error) {
	img, err := GetImage(ctx, db, id)
	if err != nil {
		return "", err
	}
	if img == nil {
		return "", nil
	}
	return EncodeDataURI(img.Data, img.MIME), nil
}

// DeleteImage removes an image. Deleting a missing image is not an error.
func DeleteImage(ctx context.Context, db docstore.DBTX, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// UpdateImage replaces an item's image: the old blob (if any) is deleted
// before the new one is saved, so a replacement never leaks an orphan.
// A failed delete is logged and does not block the save.
func UpdateImage(ctx context.Context, db docstore.DBTX, oldID, encoded string) (string, error) {
	if oldID != "" {
		if err := DeleteImage(ctx, db, oldID); err != nil {
			slog.Warn("failed to delete replaced image", "id", oldID, "error", err)
		}
	}
	return SaveImage(ctx, db, encoded)
}

// ListImages returns every stored image, payloads included. Used by export.
func ListImages(ctx context.Context, db docstore.DBTX) ([]model.ImageRecord, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, data, mime, created_at FROM images`)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var images []model.ImageRecord
	for rows.Next() {
		var img model.ImageRecord
		if err := rows.Scan(&img.ID, &img.Data, &img.MIME, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// CountImages returns the number of stored images.
func CountImages(ctx context.Context, db docstore.DBTX) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting images: %w", err)
	}
	return count, nil
}

// ClearImages removes every stored image. Used by restore before replaying
// the backup's image entries.
func ClearImages(ctx context.Context, db docstore.DBTX) error {
	_, err := db.ExecContext(ctx, `DELETE FROM images`)
	if err != nil {
		return fmt.Errorf("clearing images: %w", err)
	}
	return nil
}

// DecodeDataURI decodes a base64 payload. A "data:<mime>;base64," prefix is
// stripped and its MIME type kept; a bare base64 string gets fallbackMIME.
func DecodeDataURI(encoded string) ([]byte, string, error) {
	mime := fallbackMIME
	payload := encoded

	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		meta, body, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", fmt.Errorf("malformed data URI")
		}
		payload = body
		if m, _, _ := strings.Cut(meta, ";"); m != "" {
			mime = m
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding base64: %w", err)
	}
	return data, mime, nil
}

// EncodeDataURI encodes binary image data as a base64 data URI.
func EncodeDataURI(data []byte, mime string) string {
	if mime == "" {
		mime = fallbackMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// isDiskFull reports whether the error is SQLite's out-of-space condition
// (SQLITE_FULL, "database or disk is full").
func isDiskFull(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "disk is full") || strings.Contains(msg, "sqlite_full")
}
