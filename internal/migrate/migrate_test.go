package migrate

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/sammie3077/goodstracker/internal/db"
	"github.com/sammie3077/goodstracker/internal/docstore"
	"github.com/sammie3077/goodstracker/internal/imagestore"
	"github.com/sammie3077/goodstracker/internal/model"
)

func seedLegacyKey(t *testing.T, database *sql.DB, key string, value any) {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshaling legacy value: %v", err)
	}
	if _, err := database.Exec(
		`INSERT INTO legacy_store (key, value) VALUES (?, ?)`, key, string(data),
	); err != nil {
		t.Fatalf("seeding legacy key: %v", err)
	}
}

func legacyKeyExists(t *testing.T, database *sql.DB, key string) bool {
	t.Helper()
	var value string
	err := database.QueryRow(`SELECT value FROM legacy_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("checking legacy key: %v", err)
	}
	return true
}

func TestLegacyKVMigration(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seedLegacyKey(t, database, legacyWorksKey, []model.Work{
		{ID: "w1", Name: "Series A", Categories: []model.Category{{ID: "c1", Name: "badges"}}},
	})
	seedLegacyKey(t, database, legacyItemsKey, []model.GoodsItem{
		{ID: "i1", WorkID: "w1", CategoryID: "c1", Name: "Badge", Price: 10, Quantity: 1,
			SourceType: model.SourceSelf, Status: model.StatusArrived, PaymentStatus: model.PaymentFull},
	})
	seedLegacyKey(t, database, legacyProxiesKey, []model.ProxyService{{ID: "p1", Name: "Agent"}})

	if err := Run(ctx, database); err != nil {
		t.Fatalf("Run: %v", err)
	}

	works, _ := docstore.GetAll[model.Work](ctx, database, docstore.Works)
	if len(works) != 1 || works[0].Name != "Series A" {
		t.Errorf("expected migrated work, got %+v", works)
	}
	items, _ := docstore.GetAll[model.GoodsItem](ctx, database, docstore.Items)
	if len(items) != 1 || items[0].Name != "Badge" {
		t.Errorf("expected migrated item, got %+v", items)
	}
	proxies, _ := docstore.GetAll[model.ProxyService](ctx, database, docstore.Proxies)
	if len(proxies) != 1 {
		t.Errorf("expected migrated proxy, got %+v", proxies)
	}

	// Legacy keys are deleted after a successful load.
	for _, key := range []string{legacyItemsKey, legacyWorksKey, legacyProxiesKey} {
		if legacyKeyExists(t, database, key) {
			t.Errorf("expected legacy key %q to be deleted", key)
		}
	}
}

func TestLegacyKVSkipsPopulatedCollection(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// The collection already holds data; legacy content must not clobber it.
	docstore.Put(ctx, database, docstore.Works, model.Work{ID: "w-existing", Name: "Existing"})
	seedLegacyKey(t, database, legacyWorksKey, []model.Work{{ID: "w-legacy", Name: "Legacy"}})

	if err := Run(ctx, database); err != nil {
		t.Fatalf("Run: %v", err)
	}

	works, _ := docstore.GetAll[model.Work](ctx, database, docstore.Works)
	if len(works) != 1 || works[0].ID != "w-existing" {
		t.Errorf("expected existing data to win, got %+v", works)
	}
}

func TestConditionValueMigration(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	docstore.Put(ctx, database, docstore.Items, model.GoodsItem{
		ID: "i1", WorkID: "w1", CategoryID: "c1", Name: "Badge",
		Condition: "全新未拆", Price: 10, Quantity: 1,
		SourceType: model.SourceSelf, Status: model.StatusArrived, PaymentStatus: model.PaymentFull,
	})
	docstore.Put(ctx, database, docstore.Items, model.GoodsItem{
		ID: "i2", WorkID: "w1", CategoryID: "c1", Name: "Stand",
		Condition: model.ConditionDisplayed, Price: 10, Quantity: 1,
		SourceType: model.SourceSelf, Status: model.StatusArrived, PaymentStatus: model.PaymentFull,
	})

	if err := Run(ctx, database); err != nil {
		t.Fatalf("Run: %v", err)
	}

	first, _ := docstore.Get[model.GoodsItem](ctx, database, docstore.Items, "i1")
	if first.Condition != model.ConditionUnopened {
		t.Errorf("expected legacy condition rewritten to %q, got %q", model.ConditionUnopened, first.Condition)
	}
	second, _ := docstore.Get[model.GoodsItem](ctx, database, docstore.Items, "i2")
	if second.Condition != model.ConditionDisplayed {
		t.Errorf("expected current condition untouched, got %q", second.Condition)
	}
}

func TestInlineImageMigration(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	inline := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png bytes"))
	docstore.Put(ctx, database, docstore.Items, model.GoodsItem{
		ID: "i1", WorkID: "w1", CategoryID: "c1", Name: "Badge",
		Image: inline, Price: 10, Quantity: 1,
		SourceType: model.SourceSelf, Status: model.StatusArrived, PaymentStatus: model.PaymentFull,
	})
	docstore.Put(ctx, database, docstore.Gallery, model.GalleryItem{
		ID: "g1", WorkID: "w1", Name: "Card Set", Image: inline,
	})

	if err := Run(ctx, database); err != nil {
		t.Fatalf("Run: %v", err)
	}

	item, _ := docstore.Get[model.GoodsItem](ctx, database, docstore.Items, "i1")
	if item.ImageID == "" {
		t.Fatal("expected item to gain an imageId")
	}
	if item.Image != "" {
		t.Error("expected inline image field to be cleared")
	}
	if img, _ := imagestore.GetImage(ctx, database, item.ImageID); img == nil {
		t.Error("expected migrated blob to be retrievable")
	}

	gallery, _ := docstore.Get[model.GalleryItem](ctx, database, docstore.Gallery, "g1")
	if gallery.ImageID == "" || gallery.Image != "" {
		t.Errorf("expected gallery image migrated, got %+v", gallery)
	}
}

func TestInlineImageMigrationSkipsBadRecords(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	docstore.Put(ctx, database, docstore.Items, model.GoodsItem{
		ID: "bad", WorkID: "w1", CategoryID: "c1", Name: "Broken",
		Image: "!!not-base64!!", Price: 10, Quantity: 1,
		SourceType: model.SourceSelf, Status: model.StatusArrived, PaymentStatus: model.PaymentFull,
	})
	good := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("ok"))
	docstore.Put(ctx, database, docstore.Items, model.GoodsItem{
		ID: "good", WorkID: "w1", CategoryID: "c1", Name: "Fine",
		Image: good, Price: 10, Quantity: 1,
		SourceType: model.SourceSelf, Status: model.StatusArrived, PaymentStatus: model.PaymentFull,
	})

	if err := Run(ctx, database); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The failing record keeps its inline image; the rest of the sweep ran.
	bad, _ := docstore.Get[model.GoodsItem](ctx, database, docstore.Items, "bad")
	if bad.Image == "" || bad.ImageID != "" {
		t.Errorf("expected failing record to be left as-is, got %+v", bad)
	}
	goodItem, _ := docstore.Get[model.GoodsItem](ctx, database, docstore.Items, "good")
	if goodItem.ImageID == "" {
		t.Error("expected remaining records to still be migrated")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	inline := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png bytes"))
	docstore.Put(ctx, database, docstore.Items, model.GoodsItem{
		ID: "i1", WorkID: "w1", CategoryID: "c1", Name: "Badge",
		Image: inline, Condition: "僅拆檢", Price: 10, Quantity: 1,
		SourceType: model.SourceSelf, Status: model.StatusArrived, PaymentStatus: model.PaymentFull,
	})

	if err := Run(ctx, database); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := Run(ctx, database); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	// Running twice produces the same end state: one item, one blob.
	count, _ := docstore.Count(ctx, database, docstore.Items)
	if count != 1 {
		t.Errorf("expected 1 item, got %d", count)
	}
	images, _ := imagestore.CountImages(ctx, database)
	if images != 1 {
		t.Errorf("expected exactly 1 image blob after double run, got %d", images)
	}

	item, _ := docstore.Get[model.GoodsItem](ctx, database, docstore.Items, "i1")
	if item.Condition != model.ConditionInspected {
		t.Errorf("expected condition %q, got %q", model.ConditionInspected, item.Condition)
	}
}
