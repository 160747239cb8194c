package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/larder/internal/model"
)

// The whole inventory is stored as one JSON array under this key.
const inventoryKey = "food_inventory"

// SnapshotStore persists the full item collection as a single JSON value
// in the snapshots key/value table. It is read once at startup and
// rewritten after every mutation.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Load reads the stored collection. A missing key means an empty
// inventory, not an error.
func (s *SnapshotStore) Load() ([]model.FoodItem, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM snapshots WHERE key = ?`, inventoryKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var items []model.FoodItem
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return items, nil
}

// Save writes the full collection under the inventory key.
func (s *SnapshotStore) Save(items []model.FoodItem) error {
	if items == nil {
		items = []model.FoodItem{}
	}
	value, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		inventoryKey, string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
