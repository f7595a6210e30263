package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	cartdomain "github.com/yogesh1636/Bibliotheca/internal/cart/domain"
	catalogdomain "github.com/yogesh1636/Bibliotheca/internal/catalog/domain"
	"github.com/yogesh1636/Bibliotheca/internal/order/domain"
	r "github.com/yogesh1636/Bibliotheca/internal/order/repository"
)

// CatalogResolver maps cart line names back to catalog books. Only the book id
// is taken from the catalog; the price stays whatever the cart captured at
// add time.
type CatalogResolver interface {
	Load(ctx context.Context) ([]catalogdomain.Book, error)
}

// CartClearer empties the cart after a successful checkout. Best effort, not
// part of the order transaction.
type CartClearer interface {
	Clear(ctx context.Context) error
}

type OrderService struct {
	repo    r.OrderRepository
	catalog CatalogResolver
	cart    CartClearer
}

func NewOrderService(repo r.OrderRepository, catalog CatalogResolver, cart CartClearer) *OrderService {
	return &OrderService{
		repo:    repo,
		catalog: catalog,
		cart:    cart,
	}
}

// CreateOrder assembles an order from the cart snapshot and persists header,
// line items and the outbox event as one unit. On success the cart is cleared
// best-effort: a failed clear is logged, the order stands.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	userID string,
	snapshot *cartdomain.Cart,
	shippingAddress string,
	paymentMethod string) (*domain.Order, error) {

	if snapshot == nil || len(snapshot.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, ErrMissingAddress
	}

	items, total := s.assembleItems(ctx, snapshot.Lines)

	order := &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     domain.NewOrderNumber(),
		UserID:          userID,
		TotalAmount:     total,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		Status:          domain.OrderStatusConfirmed,
		Items:           items,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if errClear := s.cart.Clear(ctx); errClear != nil {
		log.Printf("order %s placed but cart clear failed: %v", order.OrderNumber, errClear)
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListOrdersByUserID(ctx, userID)
}

// assembleItems turns cart lines into order items. Each line is its own item
// with quantity 1; the cart does not merge repeated adds. Lines whose title is
// no longer in the catalog keep book id 0.
func (s *OrderService) assembleItems(ctx context.Context, lines []cartdomain.Line) ([]domain.OrderItem, float64) {
	byTitle := map[string]int64{}
	books, err := s.catalog.Load(ctx)
	if err != nil {
		log.Printf("catalog load failed during checkout, book ids unresolved: %v", err)
	} else {
		for _, b := range books {
			byTitle[b.Title] = b.ID
		}
	}

	items := make([]domain.OrderItem, len(lines))
	var total float64
	for i, line := range lines {
		items[i] = domain.OrderItem{
			BookID:   byTitle[line.Name],
			Title:    line.Name,
			Quantity: 1,
			Price:    line.Price,
		}
		total += line.Price * float64(items[i].Quantity)
	}

	return items, total
}
