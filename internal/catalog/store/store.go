package store

import (
	"context"
	"sync"

	"github.com/yogesh1636/Bibliotheca/internal/catalog/domain"
	"github.com/yogesh1636/Bibliotheca/internal/catalog/source"
)

// CategoryAll is the sentinel that disables category filtering.
const CategoryAll = "all"

// Store holds the catalog in memory after a single fetch from the source.
// The fetch runs exactly once per process; its outcome (including failure)
// is cached, matching the "load once per session" contract.
type Store struct {
	src source.Source

	once  sync.Once
	books []domain.Book
	err   error
}

func NewStore(src source.Source) *Store {
	return &Store{src: src}
}

func (s *Store) Load(ctx context.Context) ([]domain.Book, error) {
	s.once.Do(func() {
		s.books, s.err = s.src.Fetch(ctx)
	})
	if s.err != nil {
		return nil, s.err
	}
	return s.books, nil
}

// FilterByCategory returns the subsequence of books whose category matches
// exactly. The "all" sentinel returns the input unchanged. Pure function,
// an empty result is valid.
func FilterByCategory(books []domain.Book, category string) []domain.Book {
	if category == CategoryAll {
		return books
	}
	var out []domain.Book
	for _, b := range books {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out
}
