package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/yogesh1636/Bibliotheca/internal/cart/domain"
	catalogdomain "github.com/yogesh1636/Bibliotheca/internal/catalog/domain"
	"github.com/yogesh1636/Bibliotheca/internal/order/domain"
	r "github.com/yogesh1636/Bibliotheca/internal/order/repository"
)

type mockOrderRepo struct {
	m      sync.Mutex
	orders []*domain.Order
	err    error
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderRepo) GetOrderByID(context.Context, uuid.UUID) (*domain.Order, error) {
	return nil, r.ErrOrderNotFound
}

func (m *mockOrderRepo) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	return nil, nil
}

func (m *mockOrderRepo) MarkEventAsProcessed(context.Context, int64) error {
	return nil
}

func (m *mockOrderRepo) RunMigrations(*r.Credentials) error { return nil }
func (m *mockOrderRepo) Close() error                       { return nil }

type mockCatalog struct {
	books []catalogdomain.Book
	err   error
}

func (m *mockCatalog) Load(context.Context) ([]catalogdomain.Book, error) {
	return m.books, m.err
}

type mockClearer struct {
	m       sync.Mutex
	cleared bool
	err     error
}

func (m *mockClearer) Clear(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cleared = true
	return nil
}

func snapshotOf(lines ...cartdomain.Line) *cartdomain.Cart {
	c := cartdomain.NewCart()
	c.Lines = lines
	return c
}

func defaultCatalog() *mockCatalog {
	return &mockCatalog{books: []catalogdomain.Book{
		{ID: 1, Title: "A", Price: 10, Category: "fic"},
		{ID: 2, Title: "B", Price: 5, Category: "sci"},
	}}
}

func TestCreateOrder_EmptyCartRejected(t *testing.T) {
	sut := NewOrderService(&mockOrderRepo{}, defaultCatalog(), &mockClearer{})

	_, err := sut.CreateOrder(context.Background(), "u1", snapshotOf(), "5 Main St", "card")
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = sut.CreateOrder(context.Background(), "u1", nil, "5 Main St", "card")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrder_BlankAddressRejected(t *testing.T) {
	sut := NewOrderService(&mockOrderRepo{}, defaultCatalog(), &mockClearer{})

	_, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}), "   ", "card")

	assert.ErrorIs(t, err, ErrMissingAddress)
}

func TestCreateOrder_TotalEqualsSumOfLines(t *testing.T) {
	repo := &mockOrderRepo{}
	sut := NewOrderService(repo, defaultCatalog(), &mockClearer{})

	order, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}, cartdomain.Line{Name: "B", Price: 5}),
		"5 Main St", "card")

	require.NoError(t, err)
	assert.Equal(t, 15.0, order.TotalAmount)
	require.Len(t, order.Items, 2)

	// the invariant: sum of price*quantity over items equals the total
	var sum float64
	for _, item := range order.Items {
		sum += item.Price * float64(item.Quantity)
	}
	assert.Equal(t, order.TotalAmount, sum)
}

func TestCreateOrder_RepeatedLinesStaySeparate(t *testing.T) {
	repo := &mockOrderRepo{}
	sut := NewOrderService(repo, defaultCatalog(), &mockClearer{})

	order, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}, cartdomain.Line{Name: "A", Price: 10}),
		"5 Main St", "card")

	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.Equal(t, 1, order.Items[1].Quantity)
	assert.Equal(t, 20.0, order.TotalAmount)
}

func TestCreateOrder_ResolvesBookIDsButKeepsCartPrices(t *testing.T) {
	repo := &mockOrderRepo{}
	// catalog price differs from the price captured in the cart
	catalog := &mockCatalog{books: []catalogdomain.Book{{ID: 7, Title: "A", Price: 99}}}
	sut := NewOrderService(repo, catalog, &mockClearer{})

	order, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}), "5 Main St", "card")

	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(7), order.Items[0].BookID)
	assert.Equal(t, 10.0, order.Items[0].Price)
}

func TestCreateOrder_CatalogFailureDoesNotBlockCheckout(t *testing.T) {
	repo := &mockOrderRepo{}
	catalog := &mockCatalog{err: fmt.Errorf("catalog source unavailable")}
	sut := NewOrderService(repo, catalog, &mockClearer{})

	order, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}), "5 Main St", "card")

	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(0), order.Items[0].BookID)
}

func TestCreateOrder_StatusConfirmedAndPaymentOpaque(t *testing.T) {
	repo := &mockOrderRepo{}
	sut := NewOrderService(repo, defaultCatalog(), &mockClearer{})

	order, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}), "5 Main St", "cod-whatever")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "cod-whatever", order.PaymentMethod)
}

func TestCreateOrder_ClearsCartOnSuccess(t *testing.T) {
	clearer := &mockClearer{}
	sut := NewOrderService(&mockOrderRepo{}, defaultCatalog(), clearer)

	_, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}), "5 Main St", "card")

	require.NoError(t, err)
	assert.True(t, clearer.cleared)
}

func TestCreateOrder_ClearFailureDoesNotFailOrder(t *testing.T) {
	clearer := &mockClearer{err: fmt.Errorf("redis is down")}
	repo := &mockOrderRepo{}
	sut := NewOrderService(repo, defaultCatalog(), clearer)

	order, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}), "5 Main St", "card")

	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Len(t, repo.orders, 1)
}

func TestCreateOrder_PersistenceFailurePropagates(t *testing.T) {
	repo := &mockOrderRepo{err: fmt.Errorf("connection reset")}
	clearer := &mockClearer{}
	sut := NewOrderService(repo, defaultCatalog(), clearer)

	_, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}), "5 Main St", "card")

	require.ErrorContains(t, err, "connection reset")
	assert.False(t, clearer.cleared, "cart must not be cleared when the order did not persist")
}

func TestCreateOrder_DistinctOrderNumbers(t *testing.T) {
	repo := &mockOrderRepo{}
	sut := NewOrderService(repo, defaultCatalog(), &mockClearer{})

	first, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "A", Price: 10}), "5 Main St", "card")
	require.NoError(t, err)

	second, err := sut.CreateOrder(context.Background(), "u1",
		snapshotOf(cartdomain.Line{Name: "B", Price: 5}), "5 Main St", "card")
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
}

// The end-to-end scenario: two books in the catalog, add both, drop the first,
// check out the remainder.
func TestCheckoutScenario(t *testing.T) {
	catalog := &mockCatalog{books: []catalogdomain.Book{
		{ID: 1, Title: "A", Price: 10, Category: "fic"},
		{ID: 2, Title: "B", Price: 5, Category: "sci"},
	}}

	cart := cartdomain.NewCart()
	cart.Add("A", 10)
	cart.Add("B", 5)
	assert.Equal(t, 15.0, cart.Total())
	assert.Len(t, cart.Lines, 2)

	cart.RemoveAt(0)
	require.Equal(t, []cartdomain.Line{{Name: "B", Price: 5}}, cart.Lines)

	repo := &mockOrderRepo{}
	clearer := &mockClearer{}
	sut := NewOrderService(repo, catalog, clearer)

	order, err := sut.CreateOrder(context.Background(), "u1", cart, "5 Main St", "card")
	require.NoError(t, err)
	assert.Equal(t, 5.0, order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(2), order.Items[0].BookID)
	assert.True(t, clearer.cleared)
}
