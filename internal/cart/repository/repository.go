package repository

import (
	"context"
	"errors"

	"github.com/yogesh1636/Bibliotheca/internal/cart/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context) error
}
