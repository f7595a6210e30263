package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	c "github.com/yogesh1636/Bibliotheca/internal/cart/cache"
	r "github.com/yogesh1636/Bibliotheca/internal/cart/repository"
)

// Poller consumes order events and clears the cart. The checkout flow clears
// the cart best-effort in process; this consumer is the backstop for the case
// where that clear failed after the order committed.
type Poller struct {
	repo   r.CartRepository
	reader *kafka.Reader
	cache  c.CartCache
}

func NewPoller(repo r.CartRepository, cache c.CartCache, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "order-events",
		GroupID:  "cart-clearer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{repo, reader, cache}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.getMessagesAndEmptyCart(ctx)
	}
}

func (p *Poller) Close() {
	err := p.reader.Close()
	if err != nil {
		fmt.Printf("error closing reader: %v\n", err)
	}
}

func (p *Poller) getMessagesAndEmptyCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Printf("error reading message: %v\n", err)
		return
	}

	var payload map[string]interface{}
	if errUnMarshal := json.Unmarshal(m.Value, &payload); errUnMarshal != nil {
		fmt.Printf("error parsing message: %v\n", errUnMarshal)
		return
	}
	if _, ok := payload["order_number"].(string); !ok {
		fmt.Println("missing or invalid order_number")
		return
	}

	errDelete := p.repo.DeleteCart(ctx)
	if errDelete != nil && !errors.Is(errDelete, r.ErrCartNotFound) {
		fmt.Printf("failed to delete cart: %v\n", errDelete)
	}

	errCacheDelete := p.cache.Delete(ctx)
	if errCacheDelete != nil {
		fmt.Printf("failed to delete cache: %v\n", errCacheDelete)
	}
}
