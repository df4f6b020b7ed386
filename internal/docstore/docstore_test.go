package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sammie3077/goodstracker/internal/db"
	"github.com/sammie3077/goodstracker/internal/model"
)

func TestAddAndGet(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	work := model.Work{ID: "w1", Name: "Series A"}
	if err := Add(ctx, database, Works, work); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := Get[model.Work](ctx, database, Works, "w1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Name != "Series A" {
		t.Errorf("expected work 'Series A', got %+v", got)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := Get[model.Work](context.Background(), database, Works, "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing record, got %+v", got)
	}
}

func TestAddDuplicateFails(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	work := model.Work{ID: "w1", Name: "Series A"}
	if err := Add(ctx, database, Works, work); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := Add(ctx, database, Works, work); err == nil {
		t.Error("expected duplicate add to fail")
	}
}

func TestPutReplaces(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := Put(ctx, database, Works, model.Work{ID: "w1", Name: "Old"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := Put(ctx, database, Works, model.Work{ID: "w1", Name: "New"}); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	got, _ := Get[model.Work](ctx, database, Works, "w1")
	if got.Name != "New" {
		t.Errorf("expected replaced name 'New', got %q", got.Name)
	}

	count, _ := Count(ctx, database, Works)
	if count != 1 {
		t.Errorf("expected 1 record after replace, got %d", count)
	}
}

func TestDeleteAndClear(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	Put(ctx, database, Proxies, model.ProxyService{ID: "p1", Name: "Agent"})
	Put(ctx, database, Proxies, model.ProxyService{ID: "p2", Name: "Other"})

	if err := Delete(ctx, database, Proxies, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting a missing record is a no-op.
	if err := Delete(ctx, database, Proxies, "p1"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}

	count, _ := Count(ctx, database, Proxies)
	if count != 1 {
		t.Errorf("expected 1 record after delete, got %d", count)
	}

	if err := Clear(ctx, database, Proxies); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	count, _ = Count(ctx, database, Proxies)
	if count != 0 {
		t.Errorf("expected empty collection after clear, got %d", count)
	}
}

func TestBulkPut(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	works := []model.Work{
		{ID: "w1", Name: "A"},
		{ID: "w2", Name: "B"},
		{ID: "w3", Name: "C"},
	}
	if err := BulkPut(ctx, database, Works, works); err != nil {
		t.Fatalf("BulkPut: %v", err)
	}

	all, err := GetAll[model.Work](ctx, database, Works)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 works, got %d", len(all))
	}

	// A second bulk put with overlapping keys replaces instead of duplicating.
	if err := BulkPut(ctx, database, Works, works[:2]); err != nil {
		t.Fatalf("second BulkPut: %v", err)
	}
	count, _ := Count(ctx, database, Works)
	if count != 3 {
		t.Errorf("expected 3 works after overlapping bulk put, got %d", count)
	}
}

// brokenRecord cannot be encoded when flagged, which makes a bulk put fail
// partway through the batch.
type brokenRecord struct {
	ID       string
	Unusable bool
}

func (r brokenRecord) Key() string { return r.ID }

func (r brokenRecord) MarshalJSON() ([]byte, error) {
	if r.Unusable {
		return nil, errors.New("record cannot be encoded")
	}
	return json.Marshal(map[string]string{"id": r.ID})
}

func TestBulkPutRollsBackOnFailure(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := Put(ctx, database, Works, model.Work{ID: "w0", Name: "Existing"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	batch := []brokenRecord{
		{ID: "r1"},
		{ID: "r2", Unusable: true},
		{ID: "r3"},
	}
	if err := BulkPut(ctx, database, Works, batch); err == nil {
		t.Fatal("expected bulk put with unencodable record to fail")
	}

	// The failed batch must not leave any of its rows behind, including the
	// ones written before the failure.
	count, err := Count(ctx, database, Works)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected only the pre-existing record, got %d rows", count)
	}

	got, err := Get[model.Work](ctx, database, Works, "w0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Name != "Existing" {
		t.Errorf("pre-existing record not intact after failed bulk put: %+v", got)
	}
}

func TestUnknownCollectionRejected(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := GetAll[model.Work](context.Background(), database, Collection("users; DROP TABLE works"))
	if err == nil {
		t.Error("expected unknown collection to be rejected")
	}
}
