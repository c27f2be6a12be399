package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/akira3175/fashionshop/internal/storage"
)

// DefaultStorageKey is the slot that holds the serialized cart.
const DefaultStorageKey = "fashionshop_cart"

// ErrCorrupt is returned by Store.Load when the slot holds unparsable content.
var ErrCorrupt = errors.New("cart: stored cart is corrupt")

// Store persists the whole cart collection as one JSON array under a single key.
type Store struct {
	backend storage.Storage
	key     string
}

// NewStore binds a Store to one key of backend. An empty key selects DefaultStorageKey.
func NewStore(backend storage.Storage, key string) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultStorageKey
	}
	return &Store{backend: backend, key: key}
}

// Key returns the storage key used by the store.
func (s *Store) Key() string { return s.key }

// Load reads the collection. An absent slot yields an empty, non-nil slice.
// Every line is normalized and lines sharing a key are merged into the first.
func (s *Store) Load(ctx context.Context) ([]Item, error) {
	raw, ok, err := s.backend.GetItem(ctx, s.key)
	if err != nil {
		return []Item{}, fmt.Errorf("cart: load: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []Item{}, nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []Item{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return mergeLines(items), nil
}

func mergeLines(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[Key]int, len(items))
	for _, it := range items {
		it = it.Normalize()
		if idx, ok := seen[it.Key()]; ok {
			out[idx].Quantity = AddQuantity(out[idx].Quantity, it.Quantity)
			continue
		}
		seen[it.Key()] = len(out)
		out = append(out, it)
	}
	return out
}

// Save replaces the stored collection in one write.
func (s *Store) Save(ctx context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.backend.SetItem(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// Clear deletes the slot.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.RemoveItem(ctx, s.key); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}
