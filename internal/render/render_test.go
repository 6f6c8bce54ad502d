package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/storefront/internal/cart"
	"github.com/joss/storefront/internal/catalog"
	"github.com/joss/storefront/internal/session"
	"github.com/joss/storefront/internal/text"
)

var (
	backpack = catalog.Product{
		ID:          1,
		Title:       "Fjallraven - Foldsack No. 1 Backpack, Fits 15 Laptops",
		Price:       109.95,
		Description: "Your perfect pack for everyday use and walks in the forest.",
		Category:    "men's clothing",
		Image:       "https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg",
		Rating:      catalog.Rating{Rate: 3.9, Count: 120},
	}
	tee = catalog.Product{ID: 2, Title: "Mens Casual Premium Slim Fit T-Shirts", Price: 22.3, Category: "men's clothing"}
)

func TestProductsPlain(t *testing.T) {
	r := New(false)

	got := r.Products([]catalog.Product{backpack, tee})
	want := "1\t$109.95\tmen's clothing\tFjallraven - Foldsack No. 1 Backpack, Fits 15 Laptops\n" +
		"2\t$22.30\tmen's clothing\tMens Casual Premium Slim Fit T-Shirts\n"
	assert.Equal(t, want, got)

	assert.Equal(t, "No products found\n", r.Products(nil))
}

func TestProductsPrettyTruncatesTitles(t *testing.T) {
	long := backpack
	long.Title = strings.Repeat("x", 80)

	got := New(true).Products([]catalog.Product{long})
	assert.Contains(t, got, "Products (1)")
	assert.Contains(t, got, "...")
	assert.NotContains(t, got, strings.Repeat("x", 80))
}

func TestProductsPrettyAlignsWideTitles(t *testing.T) {
	wide := tee
	wide.Title = "日本語のタイトル"

	out := New(true).Products([]catalog.Product{tee, wide})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)

	// Price columns start at the same cell on both rows.
	col := func(line string) int { return text.Width(line[:strings.Index(line, "$")]) }
	assert.Equal(t, col(lines[2]), col(lines[3]))
}

func TestProductPlain(t *testing.T) {
	got := New(false).Product(backpack)

	assert.Contains(t, got, "id=1\n")
	assert.Contains(t, got, "price=109.95\n")
	assert.Contains(t, got, "rating=3.9/120\n")
	assert.Contains(t, got, "category=men's clothing\n")
}

func TestCategories(t *testing.T) {
	r := New(false)
	assert.Equal(t, "electronics\njewelery\n", r.Categories([]string{"electronics", "jewelery"}))
	assert.Equal(t, "No categories found\n", r.Categories(nil))
}

func TestCartPlain(t *testing.T) {
	lines := []cart.Line{
		{Product: backpack, Quantity: 2},
		{Product: tee, Quantity: 1},
	}

	got := New(false).Cart(lines, 3, 242.2)
	want := "1\t2\t109.95\t219.90\tFjallraven - Foldsack No. 1 Backpack, Fits 15 Laptops\n" +
		"2\t1\t22.30\t22.30\tMens Casual Premium Slim Fit T-Shirts\n" +
		"items=3 total=242.20\n"
	assert.Equal(t, want, got)
}

func TestCartPrettyShowsTotals(t *testing.T) {
	got := New(true).Cart([]cart.Line{{Product: tee, Quantity: 3}}, 3, 66.9)
	assert.Contains(t, got, "Items: 3")
	assert.Contains(t, got, "Total: $66.90")
}

func TestCartEmpty(t *testing.T) {
	assert.Equal(t, "Your cart is empty\n", New(true).Cart(nil, 0, 0))
}

func TestReceipt(t *testing.T) {
	rc := cart.Receipt{ID: "01J0000000000000000000TEST", Items: 2, Total: 44.6, PlacedAt: time.Now()}

	assert.Equal(t, "receipt=01J0000000000000000000TEST items=2 total=44.60\n", New(false).Receipt(rc))

	pretty := New(true).Receipt(rc)
	assert.Contains(t, pretty, "01J0000000000000000000TEST")
	assert.Contains(t, pretty, "$44.60")
}

func TestSession(t *testing.T) {
	r := New(false)
	const api = "https://fakestoreapi.com"
	assert.Equal(t, "Not logged in\napi=https://fakestoreapi.com\n", r.Session(session.Session{}, false, api))

	got := r.Session(session.Session{Username: "mor_2314", Token: "opaque"}, true, api)
	assert.Equal(t, "username=mor_2314\napi=https://fakestoreapi.com\n", got)

	pretty := New(true).Session(session.Session{Username: "mor_2314", Token: "opaque"}, true, api)
	assert.Contains(t, pretty, "mor_2314")
	assert.Contains(t, pretty, "api:       https://fakestoreapi.com")
}

func TestHome(t *testing.T) {
	r := New(false)
	assert.Equal(t, "user=guest items=0 total=0.00\n", r.Home(session.Session{}, false, 0, 0))
	assert.Equal(t, "user=johnd items=2 total=10.50\n",
		r.Home(session.Session{Username: "johnd", Token: "t"}, true, 2, 10.5))
}

func TestWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.JSON(map[string]int{"items": 2}))
	assert.Equal(t, "{\n  \"items\": 2\n}\n", buf.String())
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "$0.00", Price(0))
	assert.Equal(t, "$1234.50", Price(1234.5))
}
