package service

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yogesh1636/Bibliotheca/internal/cart/cache"
	"github.com/yogesh1636/Bibliotheca/internal/cart/domain"
	"github.com/yogesh1636/Bibliotheca/internal/cart/repository"
)

type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
	}
}

// Snapshot returns the current cart. An absent stored cart reads as an empty
// one, never as an error.
func (s *CartService) Snapshot(ctx context.Context) (*domain.Cart, error) {
	// Use singleflight to collapse concurrent cache misses into one load
	v, err, _ := s.sfg.Do(domain.StorageKey, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) {
			return domain.NewCart(), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), cart)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// Add appends a line to the end of the cart. No dedup, no quantity merge.
func (s *CartService) Add(ctx context.Context, name string, price float64) error {
	cart, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}

	cart.Add(name, price)
	if errSave := s.repo.SaveCart(ctx, cart); errSave != nil {
		log.Printf("repo save cart error: %v \n", errSave)
		return errSave
	}

	s.invalidateCache()
	return nil
}

// RemoveAt drops the line at index; out-of-bounds indices are a silent no-op.
func (s *CartService) RemoveAt(ctx context.Context, index int) error {
	cart, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}

	cart.RemoveAt(index)
	if errSave := s.repo.SaveCart(ctx, cart); errSave != nil {
		log.Printf("repo save cart error: %v \n", errSave)
		return errSave
	}

	s.invalidateCache()
	return nil
}

func (s *CartService) Clear(ctx context.Context) error {
	errDelete := s.repo.DeleteCart(ctx)
	if errDelete != nil && !errors.Is(errDelete, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v \n", errDelete)
		return errDelete
	}

	s.invalidateCache()
	return nil
}

func (s *CartService) Total(ctx context.Context) (float64, error) {
	cart, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return cart.Total(), nil
}

func (s *CartService) loadForWrite(ctx context.Context) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) invalidateCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v \n", errInvalidate)
	}
}
