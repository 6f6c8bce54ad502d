// Package cart keeps the device-local shopping cart: an ordered list of
// product snapshots with quantities, persisted whole after every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/joss/storefront/internal/catalog"
	"github.com/joss/storefront/internal/logging"
	"github.com/joss/storefront/internal/store"
)

// ErrPersist wraps storage failures. The in-memory cart keeps the change.
var ErrPersist = errors.New("cart not saved")

// Line is one product snapshot plus the requested quantity. It serializes
// flat: the product fields followed by "quantity".
type Line struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Subtotal is price × quantity for the line.
func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Manager owns the cart for the life of the process. Every mutation holds
// the lock through its persist, so overlapping calls apply one at a time.
type Manager struct {
	mu    sync.Mutex
	kv    store.KV
	lines []Line
	log   *logging.Logger
}

// NewManager creates an empty cart. Call Restore to load the saved one.
func NewManager(kv store.KV) *Manager {
	return &Manager{
		kv:  kv,
		log: logging.New("cart"),
	}
}

// Restore replaces the cart with the persisted snapshot. Missing or
// unreadable data yields an empty cart. Lines that would break the
// one-line-per-id or quantity ≥ 1 rules are dropped.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil

	raw, err := m.kv.Get(ctx, store.KeyCart)
	if err != nil {
		if !store.IsNotFound(err) {
			m.log.Warn("restore_failed", nil, err)
		}
		return
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		m.log.Warn("restore_malformed", nil, err)
		return
	}

	seen := make(map[int]bool, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || seen[l.ID] {
			m.log.Warn("restore_dropped_line", map[string]interface{}{"id": l.ID, "quantity": l.Quantity}, nil)
			continue
		}
		seen[l.ID] = true
		m.lines = append(m.lines, l)
	}
}

// Add puts quantity units of p in the cart, incrementing an existing line
// or appending a new snapshot. quantity ≤ 0 means 1.
func (m *Manager) Add(ctx context.Context, p catalog.Product, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(p.ID); i >= 0 {
		m.lines[i].Quantity += quantity
	} else {
		m.lines = append(m.lines, Line{Product: p, Quantity: quantity})
	}
	return m.persist(ctx)
}

// UpdateQuantity sets the line's quantity. quantity ≤ 0 removes the line.
// An unknown id changes nothing but the cart is still saved.
func (m *Manager) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		return m.Remove(ctx, productID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(productID); i >= 0 {
		m.lines[i].Quantity = quantity
	}
	return m.persist(ctx)
}

// Adjust changes a line's quantity by delta, but only when the line exists
// and the result stays positive. It reports whether anything changed.
func (m *Manager) Adjust(ctx context.Context, productID, delta int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(productID)
	if i < 0 || m.lines[i].Quantity+delta <= 0 {
		return false, nil
	}
	m.lines[i].Quantity += delta
	return true, m.persist(ctx)
}

// Remove deletes the line for productID if present. The cart is saved either way.
func (m *Manager) Remove(ctx context.Context, productID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(productID); i >= 0 {
		m.lines = append(m.lines[:i:i], m.lines[i+1:]...)
	}
	return m.persist(ctx)
}

// Clear empties the cart and deletes the saved record.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clear(ctx)
}

func (m *Manager) clear(ctx context.Context) error {
	m.lines = nil
	if err := m.kv.Remove(ctx, store.KeyCart); err != nil {
		m.log.WithContext(ctx).Warn("clear_failed", nil, err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Lines returns a copy of the cart in insertion order.
func (m *Manager) Lines() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Line(nil), m.lines...)
}

// Line returns the line for productID, if any.
func (m *Manager) Line(productID int) (Line, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(productID); i >= 0 {
		return m.lines[i], true
	}
	return Line{}, false
}

// TotalPrice is the sum of price × quantity over all lines.
func (m *Manager) TotalPrice() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totalPrice(m.lines)
}

// TotalItems is the sum of quantities over all lines.
func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totalItems(m.lines)
}

func totalPrice(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

func totalItems(lines []Line) int {
	var n int
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// index returns the position of productID or -1. Caller holds mu.
func (m *Manager) index(productID int) int {
	for i, l := range m.lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}

// persist writes the whole cart. Caller holds mu.
func (m *Manager) persist(ctx context.Context) error {
	lines := m.lines
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := m.kv.Set(ctx, store.KeyCart, string(data)); err != nil {
		m.log.WithContext(ctx).Warn("persist_failed", map[string]interface{}{"lines": len(m.lines)}, err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
