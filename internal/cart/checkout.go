package cart

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrEmptyCart is returned when checking out with nothing in the cart.
var ErrEmptyCart = errors.New("cart is empty")

// Receipt records what was in the cart when it was checked out.
type Receipt struct {
	ID       string    `json:"id"`
	Lines    []Line    `json:"lines"`
	Items    int       `json:"items"`
	Total    float64   `json:"total"`
	PlacedAt time.Time `json:"placed_at"`
}

// Checkout snapshots the cart into a Receipt and clears it. The demo API
// has no order endpoint, so the receipt is local. If clearing the saved
// record fails the receipt is still returned alongside ErrPersist.
func (m *Manager) Checkout(ctx context.Context) (Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.lines) == 0 {
		return Receipt{}, ErrEmptyCart
	}

	now := time.Now().UTC()
	r := Receipt{
		ID:       ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Lines:    append([]Line(nil), m.lines...),
		Items:    totalItems(m.lines),
		Total:    totalPrice(m.lines),
		PlacedAt: now,
	}
	m.log.WithContext(ctx).Info("checkout", map[string]interface{}{"receipt": r.ID, "items": r.Items, "total": r.Total})

	return r, m.clear(ctx)
}
