package store

import (
	"context"
	"fmt"
	"time"

	"studyquest/internal/database"
)

// SQLStore keeps every collection in the records table of a SQL database
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a store on top of an initialized, migrated database
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) LoadAll(ctx context.Context, collection string) ([]Record, error) {
	query := `
		SELECT id, data
		FROM records
		WHERE collection = ?
		ORDER BY position ASC
	`
	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", collection, err)
		}
		records = append(records, Record{ID: id, Data: []byte(data)})
	}

	return records, rows.Err()
}

// SaveAll replaces the collection inside one transaction, so readers see
// either the old or the new collection and never a mix.
func (s *SQLStore) SaveAll(ctx context.Context, collection string, records []Record) error {
	now := time.Now().UTC()
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", collection); err != nil {
			return fmt.Errorf("failed to clear %s: %w", collection, err)
		}

		query := "INSERT INTO records (collection, id, position, data, updated_at) VALUES (?, ?, ?, ?, ?)"
		for i, r := range records {
			if _, err := tx.ExecContext(ctx, query, collection, r.ID, i, string(r.Data), now); err != nil {
				return fmt.Errorf("failed to insert %s record %s: %w", collection, r.ID, err)
			}
		}
		return nil
	})
}
