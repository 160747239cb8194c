package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/larder/internal/freshness"
	"github.com/dukerupert/larder/internal/model"
)

// Persister durably stores the full item collection. Every mutating
// inventory operation writes the whole collection before returning, and a
// Load must reconstruct an equivalent one.
type Persister interface {
	Load() ([]model.FoodItem, error)
	Save(items []model.FoodItem) error
}

// Inventory owns the in-memory collection of food items. Items are kept in
// insertion order; List applies the expiry sort on the way out so equal
// dates keep their insertion order.
type Inventory struct {
	mu        sync.Mutex
	items     []model.FoodItem
	persister Persister
}

// Patch carries the mutable fields of an item for Update. ID and DateAdded
// are never patched.
type Patch struct {
	Name       string
	Quantity   string
	ExpiryDate model.Date
	Category   model.Category
}

// NewInventory creates an inventory backed by the given persister and
// loads the stored collection.
func NewInventory(p Persister) (*Inventory, error) {
	items, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	return &Inventory{items: items, persister: p}, nil
}

// Add validates and appends a new item, assigning an id and creation
// timestamp when absent, then persists the collection.
func (s *Inventory) Add(item model.FoodItem) (model.FoodItem, error) {
	if err := validate(item.Name, item.Quantity, item.ExpiryDate, item.Category); err != nil {
		return model.FoodItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	} else if s.indexOf(item.ID) >= 0 {
		return model.FoodItem{}, &ValidationError{Field: "id", Reason: "already exists"}
	}
	if item.DateAdded.IsZero() {
		item.DateAdded = time.Now().UTC()
	}
	item.Name = strings.TrimSpace(item.Name)
	item.Quantity = strings.TrimSpace(item.Quantity)

	s.items = append(s.items, item)
	if err := s.persist(); err != nil {
		return model.FoodItem{}, err
	}
	return item, nil
}

// Update replaces the mutable fields of the item with the given id,
// preserving its id and creation timestamp, then persists.
func (s *Inventory) Update(id string, patch Patch) (model.FoodItem, error) {
	if err := validate(patch.Name, patch.Quantity, patch.ExpiryDate, patch.Category); err != nil {
		return model.FoodItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.FoodItem{}, ErrNotFound
	}

	s.items[i].Name = strings.TrimSpace(patch.Name)
	s.items[i].Quantity = strings.TrimSpace(patch.Quantity)
	s.items[i].ExpiryDate = patch.ExpiryDate
	s.items[i].Category = patch.Category

	if err := s.persist(); err != nil {
		return model.FoodItem{}, err
	}
	return s.items[i], nil
}

// Remove deletes the item with the given id and persists.
func (s *Inventory) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.persist()
}

// Replace swaps the whole collection, used when restoring from a backup.
// Every incoming item is validated; items without an id or creation
// timestamp get fresh ones. On any validation failure nothing changes.
func (s *Inventory) Replace(items []model.FoodItem) error {
	next := make([]model.FoodItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	now := time.Now().UTC()
	for _, item := range items {
		if err := validate(item.Name, item.Quantity, item.ExpiryDate, item.Category); err != nil {
			return err
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if _, dup := seen[item.ID]; dup {
			return &ValidationError{Field: "id", Reason: "already exists"}
		}
		seen[item.ID] = struct{}{}
		if item.DateAdded.IsZero() {
			item.DateAdded = now
		}
		item.Name = strings.TrimSpace(item.Name)
		item.Quantity = strings.TrimSpace(item.Quantity)
		next = append(next, item)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = next
	return s.persist()
}

// Get returns the item with the given id.
func (s *Inventory) Get(id string) (model.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.FoodItem{}, ErrNotFound
	}
	return s.items[i], nil
}

// List returns items, optionally filtered to one category (empty means
// all), sorted ascending by expiry date. Items sharing a date keep their
// insertion order.
func (s *Inventory) List(category model.Category) []model.FoodItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.FoodItem, 0, len(s.items))
	for _, item := range s.items {
		if category == "" || item.Category == category {
			out = append(out, item)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiryDate.Before(out[j].ExpiryDate.Time)
	})
	return out
}

// Count returns the number of items, optionally filtered by category.
func (s *Inventory) Count(category model.Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.items {
		if category == "" || item.Category == category {
			n++
		}
	}
	return n
}

// CountExpiringSoon returns how many matching items fall in the
// expiring-soon bucket (0-3 days) relative to now.
func (s *Inventory) CountExpiringSoon(category model.Category, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.items {
		if category != "" && item.Category != category {
			continue
		}
		if freshness.Classify(item.ExpiryDate, now).Bucket == freshness.BucketExpiringSoon {
			n++
		}
	}
	return n
}

// persist writes the full collection through the persister. Callers hold
// the lock. A failure surfaces to the caller: the in-memory change took
// effect but is not guaranteed saved.
func (s *Inventory) persist() error {
	if err := s.persister.Save(s.items); err != nil {
		return fmt.Errorf("persist inventory: %w", err)
	}
	return nil
}

func (s *Inventory) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func validate(name, quantity string, expiry model.Date, category model.Category) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(quantity) == "" {
		return &ValidationError{Field: "quantity"}
	}
	if expiry.IsZero() {
		return &ValidationError{Field: "expiry_date"}
	}
	if category == "" {
		return &ValidationError{Field: "category"}
	}
	if !category.Valid() {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}
	return nil
}
