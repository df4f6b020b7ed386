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

// ListItems returns all goods items.
func ListItems(ctx context.Context, db docstore.DBTX) ([]model.GoodsItem, error) {
	return docstore.GetAll[model.GoodsItem](ctx, db, docstore.Items)
}

// GetItem returns a goods item by id, or nil if it does not exist.
func GetItem(ctx context.Context, db docstore.DBTX, id string) (*model.GoodsItem, error) {
	return docstore.Get[model.GoodsItem](ctx, db, docstore.Items, id)
}

// AddItem validates and stores a new goods item. The item's category must
// belong to the work it references. Missing id and creation time are filled
// in.
func AddItem(ctx context.Context, db docstore.DBTX, item model.GoodsItem) (*model.GoodsItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := checkItemReferences(ctx, db, &item); err != nil {
		return nil, err
	}

	if err := docstore.Add(ctx, db, docstore.Items, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem validates and replaces an existing goods item.
func UpdateItem(ctx context.Context, db docstore.DBTX, item model.GoodsItem) error {
	existing, err := GetItem(ctx, db, item.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("item %q: %w", item.ID, ErrNotFound)
	}

	if err := item.Validate(); err != nil {
		return err
	}
	if err := checkItemReferences(ctx, db, &item); err != nil {
		return err
	}

	return docstore.Put(ctx, db, docstore.Items, item)
}

// BulkUpdateItems persists a full reordered list of items in one transaction.
func BulkUpdateItems(ctx context.Context, db *sql.DB, items []model.GoodsItem) error {
	return docstore.BulkPut(ctx, db, docstore.Items, items)
}

// DeleteItem removes a goods item, deleting its image blob first. A failed
// image delete is logged and does not block removing the record.
func DeleteItem(ctx context.Context, db docstore.DBTX, id string) error {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}

	if item.ImageID != "" {
		if err := imagestore.DeleteImage(ctx, db, item.ImageID); err != nil {
			slog.Warn("failed to delete item image", "itemId", id, "imageId", item.ImageID, "error", err)
		}
	}
	return docstore.Delete(ctx, db, docstore.Items, id)
}

// checkItemReferences verifies the item's work exists and that the category
// is embedded in that work.
func checkItemReferences(ctx context.Context, db docstore.DBTX, item *model.GoodsItem) error {
	work, err := GetWork(ctx, db, item.WorkID)
	if err != nil {
		return err
	}
	if work == nil {
		return fmt.Errorf("work %q: %w", item.WorkID, ErrNotFound)
	}
	if work.Category(item.CategoryID) == nil {
		return fmt.Errorf("category %q does not belong to work %q", item.CategoryID, item.WorkID)
	}
	return nil
}

// WorkItemCount is one work's item tally.
type WorkItemCount struct {
	WorkID string `json:"workId"`
	Count  int    `json:"count"`
}

// ItemCountsByWork returns the number of items per work. Works with no items
// are absent from the result.
func ItemCountsByWork(ctx context.Context, db docstore.DBTX) ([]WorkItemCount, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT json_extract(data, '$.workId') AS work_id, COUNT(*) AS count
		 FROM items
		 GROUP BY work_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting items per work: %w", err)
	}
	defer rows.Close()

	var counts []WorkItemCount
	for rows.Next() {
		var c WorkItemCount
		if err := rows.Scan(&c.WorkID, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning work item count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// MonthlySpend is one month's purchase totals.
type MonthlySpend struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// MonthlySpending aggregates price*quantity by purchase month over items that
// have a purchase date, newest month first.
func MonthlySpending(ctx context.Context, db docstore.DBTX) ([]MonthlySpend, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', json_extract(data, '$.purchaseDate') / 1000, 'unixepoch') AS month,
		        SUM(json_extract(data, '$.price') * json_extract(data, '$.quantity')) AS total,
		        COUNT(*) AS count
		 FROM items
		 WHERE json_extract(data, '$.purchaseDate') IS NOT NULL
		 GROUP BY month
		 ORDER BY month DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating monthly spending: %w", err)
	}
	defer rows.Close()

	var months []MonthlySpend
	for rows.Next() {
		var m MonthlySpend
		if err := rows.Scan(&m.Month, &m.Total, &m.Count); err != nil {
			return nil, fmt.Errorf("scanning monthly spending: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}
