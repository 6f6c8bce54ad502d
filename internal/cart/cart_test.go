package cart

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/storefront/internal/catalog"
	"github.com/joss/storefront/internal/store"
)

func product(id int, price float64) catalog.Product {
	return catalog.Product{
		ID:          id,
		Title:       "Product",
		Price:       price,
		Description: "desc",
		Category:    "electronics",
		Image:       "https://example.com/p.jpg",
		Rating:      catalog.Rating{Rate: 4.5, Count: 10},
	}
}

// flakyKV fails writes and removals while broken is set.
type flakyKV struct {
	*store.Memory
	broken bool
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.broken {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *flakyKV) Remove(ctx context.Context, key string) error {
	if f.broken {
		return errors.New("disk full")
	}
	return f.Memory.Remove(ctx, key)
}

func restored(t *testing.T, kv store.KV) *Manager {
	t.Helper()
	m := NewManager(kv)
	m.Restore(context.Background())
	return m
}

func TestScenarioAddUpdateRemove(t *testing.T) {
	ctx := context.Background()
	m := restored(t, store.NewMemory())

	require.NoError(t, m.Add(ctx, product(1, 10), 2))
	assert.Equal(t, 2, m.TotalItems())
	assert.InDelta(t, 20.00, m.TotalPrice(), 1e-9)

	require.NoError(t, m.UpdateQuantity(ctx, 1, 5))
	assert.Equal(t, 5, m.TotalItems())
	assert.InDelta(t, 50.00, m.TotalPrice(), 1e-9)

	require.NoError(t, m.Remove(ctx, 1))
	assert.Empty(t, m.Lines())
	assert.Equal(t, 0, m.TotalItems())
	assert.Zero(t, m.TotalPrice())
}

func TestAddSameProductAccumulates(t *testing.T) {
	ctx := context.Background()
	m := restored(t, store.NewMemory())

	quantities := []int{1, 3, 0, 2} // 0 means the default of 1
	for _, q := range quantities {
		require.NoError(t, m.Add(ctx, product(7, 2.5), q))
	}

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
	assert.Equal(t, 7, m.TotalItems())
}

func TestAddKeepsSnapshotAndOrder(t *testing.T) {
	ctx := context.Background()
	m := restored(t, store.NewMemory())

	p := product(3, 9.99)
	require.NoError(t, m.Add(ctx, p, 1))
	require.NoError(t, m.Add(ctx, product(1, 1), 1))

	// A later catalog edit does not reach the existing line
	edited := p
	edited.Title = "Renamed"
	edited.Price = 100
	require.NoError(t, m.Add(ctx, edited, 1))

	lines := m.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 3, lines[0].ID)
	assert.Equal(t, 1, lines[1].ID)
	assert.Equal(t, "Product", lines[0].Title)
	assert.Equal(t, 9.99, lines[0].Price)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestUpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -1, -50} {
		ctx := context.Background()
		viaUpdate := restored(t, store.NewMemory())
		viaRemove := restored(t, store.NewMemory())
		for _, m := range []*Manager{viaUpdate, viaRemove} {
			require.NoError(t, m.Add(ctx, product(1, 10), 2))
			require.NoError(t, m.Add(ctx, product(2, 5), 1))
		}

		require.NoError(t, viaUpdate.UpdateQuantity(ctx, 1, q))
		require.NoError(t, viaRemove.Remove(ctx, 1))

		assert.Equal(t, viaRemove.Lines(), viaUpdate.Lines(), "quantity %d", q)
		_, ok := viaUpdate.Line(1)
		assert.False(t, ok)
	}
}

func TestUpdateQuantityUnknownIDStillPersists(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m := restored(t, kv)

	require.NoError(t, m.UpdateQuantity(ctx, 42, 3))
	assert.Empty(t, m.Lines())

	raw, err := kv.Get(ctx, store.KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, raw)
}

func TestRemoveMissingStillPersists(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m := restored(t, kv)
	require.NoError(t, m.Add(ctx, product(1, 1), 1))

	require.NoError(t, m.Remove(ctx, 99))
	assert.Len(t, m.Lines(), 1)

	raw, err := kv.Get(ctx, store.KeyCart)
	require.NoError(t, err)
	var lines []Line
	require.NoError(t, json.Unmarshal([]byte(raw), &lines))
	assert.Len(t, lines, 1)
}

func TestTotalPriceMatchesLines(t *testing.T) {
	ctx := context.Background()
	m := restored(t, store.NewMemory())

	require.NoError(t, m.Add(ctx, product(1, 109.95), 2))
	require.NoError(t, m.Add(ctx, product(2, 22.3), 3))
	require.NoError(t, m.Add(ctx, product(3, 0.5), 1))
	require.NoError(t, m.UpdateQuantity(ctx, 3, 4))
	require.NoError(t, m.Remove(ctx, 2))
	require.NoError(t, m.Add(ctx, product(2, 22.3), 1))

	var want float64
	var items int
	for _, l := range m.Lines() {
		want += l.Price * float64(l.Quantity)
		items += l.Quantity
	}
	assert.InDelta(t, want, m.TotalPrice(), 1e-9)
	assert.InDelta(t, 109.95*2+0.5*4+22.3, m.TotalPrice(), 1e-9)
	assert.Equal(t, items, m.TotalItems())
}

func TestPersistRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := store.OpenSQLite(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	defer kv.Close()

	m := restored(t, kv)
	require.NoError(t, m.Add(ctx, product(5, 695), 1))
	require.NoError(t, m.Add(ctx, product(1, 109.95), 3))
	require.NoError(t, m.Add(ctx, product(9, 64), 2))

	again := restored(t, kv)
	assert.Equal(t, m.Lines(), again.Lines())
	assert.Equal(t, m.TotalItems(), again.TotalItems())
}

func TestPersistedShape(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m := restored(t, kv)
	require.NoError(t, m.Add(ctx, product(1, 10), 2))

	raw, err := kv.Get(ctx, store.KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": 1, "title": "Product", "price": 10, "description": "desc",
		"category": "electronics", "image": "https://example.com/p.jpg",
		"rating": {"rate": 4.5, "count": 10}, "quantity": 2
	}]`, raw)
}

func TestClearThenRestoreIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m := restored(t, kv)
	require.NoError(t, m.Add(ctx, product(1, 10), 2))

	require.NoError(t, m.Clear(ctx))
	assert.Empty(t, m.Lines())

	_, err := kv.Get(ctx, store.KeyCart)
	assert.True(t, store.IsNotFound(err), "clear removes the record instead of writing []")

	assert.Empty(t, restored(t, kv).Lines())
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   []int
	}{
		{"corrupted", `[{"id":1,`, nil},
		{"wrong shape", `{"id":1}`, nil},
		{"drops bad quantities", `[{"id":1,"quantity":0},{"id":2,"quantity":2},{"id":3,"quantity":-4}]`, []int{2}},
		{"drops duplicate ids", `[{"id":1,"quantity":1},{"id":1,"quantity":5},{"id":2,"quantity":1}]`, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := store.NewMemory()
			require.NoError(t, kv.Set(ctx, store.KeyCart, tt.record))

			var m *Manager
			require.NotPanics(t, func() { m = restored(t, kv) })

			var got []int
			for _, l := range m.Lines() {
				got = append(got, l.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestoreReplacesInMemoryState(t *testing.T) {
	ctx := context.Background()
	m := restored(t, store.NewMemory())
	require.NoError(t, m.Add(ctx, product(1, 1), 1))
	require.NoError(t, m.Clear(ctx))

	m.Restore(ctx)
	assert.Empty(t, m.Lines())
}

func TestPersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: store.NewMemory()}
	m := restored(t, kv)
	require.NoError(t, m.Add(ctx, product(1, 10), 1))

	kv.broken = true
	err := m.Add(ctx, product(1, 10), 2)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, 3, m.TotalItems(), "in-memory change is not rolled back")

	assert.ErrorIs(t, m.Clear(ctx), ErrPersist)
	assert.Empty(t, m.Lines())

	// Durable state diverged: it still holds the last good snapshot
	kv.broken = false
	again := restored(t, kv)
	assert.Equal(t, 1, again.TotalItems())
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()
	m := restored(t, store.NewMemory())
	require.NoError(t, m.Add(ctx, product(1, 10), 2))

	changed, err := m.Adjust(ctx, 1, +1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 3, m.TotalItems())

	changed, err = m.Adjust(ctx, 1, -2)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, m.TotalItems())

	// Would drop to zero: ignored rather than removing the line
	changed, err = m.Adjust(ctx, 1, -1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, m.TotalItems())

	changed, err = m.Adjust(ctx, 404, 1)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m := restored(t, kv)

	_, err := m.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, m.Add(ctx, product(1, 10), 2))
	require.NoError(t, m.Add(ctx, product(2, 2.5), 4))

	r, err := m.Checkout(ctx)
	require.NoError(t, err)
	assert.Len(t, r.ID, 26, "ULID string")
	assert.Equal(t, 6, r.Items)
	assert.InDelta(t, 30.0, r.Total, 1e-9)
	assert.Len(t, r.Lines, 2)
	assert.False(t, r.PlacedAt.IsZero())

	assert.Empty(t, m.Lines())
	_, err = kv.Get(ctx, store.KeyCart)
	assert.True(t, store.IsNotFound(err))
}

func TestConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m := restored(t, kv)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Add(ctx, product(1, 1), 1)
		}()
	}
	wg.Wait()

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 50, lines[0].Quantity)
	assert.Equal(t, 50, restored(t, kv).TotalItems(), "last persisted snapshot is the final state")
}
