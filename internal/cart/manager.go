package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrSaveFailed wraps storage write failures reported by mutating operations.
var ErrSaveFailed = errors.New("cart: save failed")

// CountListener is notified with the new total item count after every successful mutation.
type CountListener func(ctx context.Context, count int)

// Option customises a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for recovered read failures.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCountListener registers a listener at construction time.
func WithCountListener(fn CountListener) Option {
	return func(m *Manager) {
		if fn != nil {
			m.listeners = append(m.listeners, fn)
		}
	}
}

// Manager is the only component that mutates the cart store. It is built once per
// profile and handed to every consumer that needs the cart.
type Manager struct {
	store     *Store
	logger    *zap.Logger
	listeners []CountListener
}

// NewManager returns a Manager over store.
func NewManager(store *Store, opts ...Option) *Manager {
	m := &Manager{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnCountChange registers a listener for cart count changes.
func (m *Manager) OnCountChange(fn CountListener) {
	if fn != nil {
		m.listeners = append(m.listeners, fn)
	}
}

// GetCart returns the current collection. Absent or corrupt storage reads as an empty cart.
func (m *Manager) GetCart(ctx context.Context) []Item {
	items, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Debug("cart: treating unreadable cart as empty", zap.String("key", m.store.Key()), zap.Error(err))
		return []Item{}
	}
	return items
}

// AddItem merges item into the cart. An existing line with the same key gets its
// quantity increased; otherwise the normalized item is appended.
func (m *Manager) AddItem(ctx context.Context, item Item) error {
	item = item.Normalize()
	items := m.GetCart(ctx)
	if idx := indexOf(items, item.Key()); idx >= 0 {
		items[idx].Quantity = AddQuantity(items[idx].Quantity, item.Quantity)
	} else {
		items = append(items, item)
	}
	return m.save(ctx, items)
}

// RemoveItem deletes every line matching the key.
func (m *Manager) RemoveItem(ctx context.Context, productID int, sizeID string) error {
	key := Key{ProductID: productID, SizeID: NormalizeSizeID(sizeID)}
	items := m.GetCart(ctx)
	kept := items[:0]
	for _, it := range items {
		if it.Key() != key {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return m.save(ctx, kept)
}

// UpdateQuantity sets the quantity of the matching line to max(1, quantity).
func (m *Manager) UpdateQuantity(ctx context.Context, productID int, sizeID string, quantity int) error {
	items := m.GetCart(ctx)
	idx := indexOf(items, Key{ProductID: productID, SizeID: NormalizeSizeID(sizeID)})
	if idx < 0 {
		return nil
	}
	items[idx].Quantity = ClampQuantity(quantity)
	return m.save(ctx, items)
}

// UpdateQuantityInput applies raw quantity field input; unparsable input counts as 1.
func (m *Manager) UpdateQuantityInput(ctx context.Context, productID int, sizeID, raw string) error {
	return m.UpdateQuantity(ctx, productID, sizeID, ParseQuantity(raw))
}

// ChangeQuantity adds delta to the matching line. Changes that would drop the
// quantity below 1 are ignored.
func (m *Manager) ChangeQuantity(ctx context.Context, productID int, sizeID string, delta int) error {
	items := m.GetCart(ctx)
	idx := indexOf(items, Key{ProductID: productID, SizeID: NormalizeSizeID(sizeID)})
	if idx < 0 {
		return nil
	}
	if delta < 0 && items[idx].Quantity+delta < 1 {
		return nil
	}
	items[idx].Quantity = AddQuantity(items[idx].Quantity, delta)
	return m.save(ctx, items)
}

// ClearCart deletes the whole collection.
func (m *Manager) ClearCart(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	m.notify(ctx, 0)
	return nil
}

// TotalPrice is the sum of price * quantity, recomputed from storage.
func (m *Manager) TotalPrice(ctx context.Context) float64 {
	return TotalPrice(m.GetCart(ctx))
}

// TotalItems is the sum of quantities, recomputed from storage.
func (m *Manager) TotalItems(ctx context.Context) int {
	return TotalItems(m.GetCart(ctx))
}

// PrepareCheckoutData projects the cart to the lines sent to checkout.
func (m *Manager) PrepareCheckoutData(ctx context.Context) []CheckoutLine {
	items := m.GetCart(ctx)
	lines := make([]CheckoutLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, CheckoutLine{
			ProductID: it.ProductID,
			SizeID:    NormalizeSizeID(it.SizeID),
			Quantity:  ClampQuantity(it.Quantity),
		})
	}
	return lines
}

// TotalPrice sums line totals of items.
func TotalPrice(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// TotalItems sums quantities of items.
func TotalItems(items []Item) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func (m *Manager) save(ctx context.Context, items []Item) error {
	if err := m.store.Save(ctx, items); err != nil {
		m.logger.Warn("cart: save failed", zap.String("key", m.store.Key()), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	m.notify(ctx, TotalItems(items))
	return nil
}

func (m *Manager) notify(ctx context.Context, count int) {
	for _, fn := range m.listeners {
		fn(ctx, count)
	}
}

func indexOf(items []Item, key Key) int {
	for i, it := range items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}
