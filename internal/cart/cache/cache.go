package cache

import (
	"context"
	"errors"

	"github.com/yogesh1636/Bibliotheca/internal/cart/domain"
)

type CartCache interface {
	Get(ctx context.Context) (*domain.Cart, error)
	Set(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
