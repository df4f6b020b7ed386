// Package docstore is a thin JSON-document store over SQLite. Each collection
// is one table of (id, data) rows; entity types marshal to and from the data
// column. The domain store builds its typed operations on top of this.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Collection names one of the document tables created by the schema.
type Collection string

const (
	Items   Collection = "items"
	Gallery Collection = "gallery"
	Works   Collection = "works"
	Proxies Collection = "proxies"
)

// table returns the SQL table name for the collection, or an error for
// unknown names. Collection names are interpolated into SQL, so only the
// fixed set above is accepted.
func (c Collection) table() (string, error) {
	switch c {
	case Items, Gallery, Works, Proxies:
		return string(c), nil
	}
	return "", fmt.Errorf("unknown collection %q", c)
}

// Record is any entity that knows its document key.
type Record interface {
	Key() string
}

// DBTX is the subset of database/sql methods shared by *sql.DB and *sql.Tx,
// so single-document operations can run either standalone or inside a larger
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetAll returns every record in the collection.
func GetAll[T Record](ctx context.Context, db DBTX, c Collection) ([]T, error) {
	table, err := c.table()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT data FROM %s`, table))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c, err)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", c, err)
		}
		var record T
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("decoding %s record: %w", c, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Get returns the record with the given id, or nil if it does not exist.
func Get[T Record](ctx context.Context, db DBTX, c Collection, id string) (*T, error) {
	table, err := c.table()
	if err != nil {
		return nil, err
	}

	var data []byte
	err = db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, table), id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s record: %w", c, err)
	}

	record := new(T)
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("decoding %s record: %w", c, err)
	}
	return record, nil
}

// Add inserts a new record and fails if its key already exists.
func Add[T Record](ctx context.Context, db DBTX, c Collection, record T) error {
	table, err := c.table()
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", c, err)
	}

	_, err = db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, data) VALUES (?, ?)`, table),
		record.Key(), data,
	)
	if err != nil {
		return fmt.Errorf("adding %s record: %w", c, err)
	}
	return nil
}

// Put inserts or replaces a record.
func Put[T Record](ctx context.Context, db DBTX, c Collection, record T) error {
	table, err := c.table()
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", c, err)
	}

	_, err = db.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, data) VALUES (?, ?)`, table),
		record.Key(), data,
	)
	if err != nil {
		return fmt.Errorf("putting %s record: %w", c, err)
	}
	return nil
}

// Delete removes the record with the given id. Deleting a missing record is
// not an error.
func Delete(ctx context.Context, db DBTX, c Collection, id string) error {
	table, err := c.table()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("deleting %s record: %w", c, err)
	}
	return nil
}

// Clear removes all records in the collection.
func Clear(ctx context.Context, db DBTX, c Collection) error {
	table, err := c.table()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table))
	if err != nil {
		return fmt.Errorf("clearing %s: %w", c, err)
	}
	return nil
}

// Count returns the number of records in the collection.
func Count(ctx context.Context, db DBTX, c Collection) (int, error) {
	table, err := c.table()
	if err != nil {
		return 0, err
	}

	var count int
	err = db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", c, err)
	}
	return count, nil
}

// BulkPut inserts or replaces all records in one transaction. Either every
// record commits or none do.
func BulkPut[T Record](ctx context.Context, db *sql.DB, c Collection, records []T) error {
	table, err := c.table()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, data) VALUES (?, ?)`, table),
	)
	if err != nil {
		return fmt.Errorf("preparing bulk put: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encoding %s record: %w", c, err)
		}
		if _, err := stmt.ExecContext(ctx, record.Key(), data); err != nil {
			return fmt.Errorf("bulk putting %s record %q: %w", c, record.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bulk put: %w", err)
	}
	return nil
}
