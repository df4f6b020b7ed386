package store

import (
	"context"
	"testing"

	"github.com/sammie3077/goodstracker/internal/db"
	"github.com/sammie3077/goodstracker/internal/model"
)

func TestAddUpdateProxy(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	proxy, err := AddProxy(ctx, database, model.ProxyService{
		Name:    "Agent A",
		Website: "https://example.com",
	})
	if err != nil {
		t.Fatalf("AddProxy: %v", err)
	}
	if proxy.ID == "" {
		t.Error("expected generated id")
	}

	proxy.Note = "fast shipping"
	if err := UpdateProxy(ctx, database, *proxy); err != nil {
		t.Fatalf("UpdateProxy: %v", err)
	}

	proxies, _ := ListProxies(ctx, database)
	if len(proxies) != 1 || proxies[0].Note != "fast shipping" {
		t.Errorf("expected updated proxy, got %+v", proxies)
	}
}

func TestUpdateMissingProxy(t *testing.T) {
	database := db.NewTestDB(t)

	err := UpdateProxy(context.Background(), database, model.ProxyService{ID: "ghost", Name: "x"})
	if err == nil {
		t.Error("expected update of missing proxy to fail")
	}
}

func TestDeleteProxyClearsReferences(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	work, _ := AddWork(ctx, database, "Series A")
	proxy, _ := AddProxy(ctx, database, model.ProxyService{Name: "Agent A"})

	item := addTestItem(t, database, work, func(i *model.GoodsItem) {
		i.SourceType = model.SourceProxy
		i.ProxyID = proxy.ID
	})
	untouched := addTestItem(t, database, work, nil)

	if err := DeleteProxy(ctx, database, proxy.ID); err != nil {
		t.Fatalf("DeleteProxy: %v", err)
	}

	proxies, _ := ListProxies(ctx, database)
	if len(proxies) != 0 {
		t.Errorf("expected no proxies, got %d", len(proxies))
	}

	// The referencing item survives but flips to self-purchased.
	got, _ := GetItem(ctx, database, item.ID)
	if got == nil {
		t.Fatal("expected item to survive proxy deletion")
	}
	if got.ProxyID != "" {
		t.Errorf("expected proxyId to be cleared, got %q", got.ProxyID)
	}
	if got.SourceType != model.SourceSelf {
		t.Errorf("expected sourceType to flip to self, got %q", got.SourceType)
	}

	other, _ := GetItem(ctx, database, untouched.ID)
	if other.SourceType != model.SourceSelf || other.Name != "Badge" {
		t.Errorf("expected unrelated item untouched, got %+v", other)
	}
}
