package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sammie3077/goodstracker/internal/docstore"
	"github.com/sammie3077/goodstracker/internal/model"
)

// ListProxies returns all proxy services.
func ListProxies(ctx context.Context, db docstore.DBTX) ([]model.ProxyService, error) {
	return docstore.GetAll[model.ProxyService](ctx, db, docstore.Proxies)
}

// AddProxy stores a new proxy service.
func AddProxy(ctx context.Context, db docstore.DBTX, proxy model.ProxyService) (*model.ProxyService, error) {
	if proxy.Name == "" {
		return nil, fmt.Errorf("proxy name is required")
	}
	if proxy.ID == "" {
		proxy.ID = uuid.NewString()
	}
	if err := docstore.Add(ctx, db, docstore.Proxies, proxy); err != nil {
		return nil, err
	}
	return &proxy, nil
}

// UpdateProxy replaces an existing proxy service.
func UpdateProxy(ctx context.Context, db docstore.DBTX, proxy model.ProxyService) error {
	existing, err := docstore.Get[model.ProxyService](ctx, db, docstore.Proxies, proxy.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("proxy %q: %w", proxy.ID, ErrNotFound)
	}
	return docstore.Put(ctx, db, docstore.Proxies, proxy)
}

// DeleteProxy removes a proxy service and clears the reference on items that
// pointed at it: their proxyId is removed and the source flips to
// self-purchased, so no dangling reference remains. Items themselves are
// kept. Runs in one transaction.
func DeleteProxy(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET data = json_set(json_remove(data, '$.proxyId'), '$.sourceType', 'self')
		 WHERE json_extract(data, '$.proxyId') = ?`, id,
	); err != nil {
		return fmt.Errorf("clearing proxy references: %w", err)
	}

	if err := docstore.Delete(ctx, tx, docstore.Proxies, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing proxy delete: %w", err)
	}
	return nil
}
