package store

import (
	"context"
	"testing"
	"time"

	"github.com/sammie3077/goodstracker/internal/db"
	"github.com/sammie3077/goodstracker/internal/imagestore"
	"github.com/sammie3077/goodstracker/internal/model"
)

func TestAddItemFillsDefaults(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	work, _ := AddWork(ctx, database, "Series A")
	item := addTestItem(t, database, work, nil)

	if item.ID == "" {
		t.Error("expected generated id")
	}
	if item.CreatedAt == 0 {
		t.Error("expected createdAt to be set")
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got == nil || got.Name != "Badge" {
		t.Errorf("expected stored item, got %+v", got)
	}
}

func TestAddItemRejectsForeignCategory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	workA, _ := AddWork(ctx, database, "Series A")
	workB, _ := AddWork(ctx, database, "Series B")

	_, err := AddItem(ctx, database, model.GoodsItem{
		WorkID:        workA.ID,
		CategoryID:    workB.Categories[0].ID, // belongs to the other work
		Name:          "Badge",
		Price:         10,
		Quantity:      1,
		SourceType:    model.SourceSelf,
		Status:        model.StatusArrived,
		PaymentStatus: model.PaymentFull,
	})
	if err == nil {
		t.Error("expected cross-work category to be rejected")
	}
}

func TestAddItemRejectsMissingWork(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := AddItem(context.Background(), database, model.GoodsItem{
		WorkID:        "nope",
		CategoryID:    "also-nope",
		Name:          "Badge",
		Price:         10,
		Quantity:      1,
		SourceType:    model.SourceSelf,
		Status:        model.StatusArrived,
		PaymentStatus: model.PaymentFull,
	})
	if err == nil {
		t.Error("expected missing work to be rejected")
	}
}

func TestAddItemRejectsInvalidDeposit(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	work, _ := AddWork(ctx, database, "Series A")
	deposit := 250.0
	_, err := AddItem(ctx, database, model.GoodsItem{
		WorkID:        work.ID,
		CategoryID:    work.Categories[0].ID,
		Name:          "Figure",
		Price:         100,
		Quantity:      2,
		SourceType:    model.SourceSelf,
		Status:        model.StatusPreorder,
		PaymentStatus: model.PaymentDeposit,
		DepositAmount: &deposit, // above the 200 total
	})
	if err == nil {
		t.Error("expected deposit above total to be rejected")
	}
}

func TestUpdateItemMissing(t *testing.T) {
	database := db.NewTestDB(t)

	err := UpdateItem(context.Background(), database, model.GoodsItem{ID: "ghost", Name: "x"})
	if err == nil {
		t.Error("expected update of missing item to fail")
	}
}

func TestDeleteItemRemovesImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	work, _ := AddWork(ctx, database, "Series A")
	imageID, _ := imagestore.SaveImage(ctx, database, testImage())
	item := addTestItem(t, database, work, func(i *model.GoodsItem) { i.ImageID = imageID })

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	if got, _ := GetItem(ctx, database, item.ID); got != nil {
		t.Error("expected item to be deleted")
	}
	if img, _ := imagestore.GetImage(ctx, database, imageID); img != nil {
		t.Error("expected image blob to be deleted with the item")
	}

	// Deleting an already-deleted item is a no-op.
	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Errorf("second DeleteItem: %v", err)
	}
}

func TestItemCountsByWork(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	workA, _ := AddWork(ctx, database, "Series A")
	workB, _ := AddWork(ctx, database, "Series B")
	AddWork(ctx, database, "Empty Series")

	addTestItem(t, database, workA, nil)
	addTestItem(t, database, workA, nil)
	addTestItem(t, database, workB, nil)

	counts, err := ItemCountsByWork(ctx, database)
	if err != nil {
		t.Fatalf("ItemCountsByWork: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 works with items, got %d", len(counts))
	}

	got := make(map[string]int, len(counts))
	for _, c := range counts {
		got[c.WorkID] = c.Count
	}
	if got[workA.ID] != 2 || got[workB.ID] != 1 {
		t.Errorf("unexpected counts: %v", got)
	}
}

func TestMonthlySpending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	work, _ := AddWork(ctx, database, "Series A")

	january := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC).UnixMilli()
	february := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC).UnixMilli()

	addTestItem(t, database, work, func(i *model.GoodsItem) {
		i.Price, i.Quantity, i.PurchaseDate = 100, 2, &january
	})
	addTestItem(t, database, work, func(i *model.GoodsItem) {
		i.Price, i.Quantity, i.PurchaseDate = 50, 1, &january
	})
	addTestItem(t, database, work, func(i *model.GoodsItem) {
		i.Price, i.Quantity, i.PurchaseDate = 80, 1, &february
	})
	// No purchase date: excluded from the report.
	addTestItem(t, database, work, nil)

	months, err := MonthlySpending(ctx, database)
	if err != nil {
		t.Fatalf("MonthlySpending: %v", err)
	}
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}

	// Newest first.
	if months[0].Month != "2025-02" || months[0].Total != 80 || months[0].Count != 1 {
		t.Errorf("unexpected february row: %+v", months[0])
	}
	if months[1].Month != "2025-01" || months[1].Total != 250 || months[1].Count != 2 {
		t.Errorf("unexpected january row: %+v", months[1])
	}
}
