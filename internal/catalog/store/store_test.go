package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogesh1636/Bibliotheca/internal/catalog/domain"
)

type mockSource struct {
	books []domain.Book
	err   error
	calls int
}

func (m *mockSource) Fetch(context.Context) ([]domain.Book, error) {
	m.calls++
	return m.books, m.err
}

func sampleCatalog() []domain.Book {
	return []domain.Book{
		{ID: 1, Title: "A", Author: "x", Price: 10, Category: "fiction"},
		{ID: 2, Title: "B", Author: "y", Price: 5, Category: "science"},
		{ID: 3, Title: "C", Author: "z", Price: 7, Category: "fiction"},
	}
}

func TestLoad_FetchesExactlyOnce(t *testing.T) {
	src := &mockSource{books: sampleCatalog()}
	sut := NewStore(src)

	for i := 0; i < 3; i++ {
		books, err := sut.Load(context.Background())
		require.NoError(t, err)
		assert.Len(t, books, 3)
	}

	assert.Equal(t, 1, src.calls)
}

func TestLoad_FailureIsSurfacedAndCached(t *testing.T) {
	srcErr := errors.New("connection refused")
	src := &mockSource{err: srcErr}
	sut := NewStore(src)

	_, err := sut.Load(context.Background())
	require.ErrorIs(t, err, srcErr)

	// A failed load is not retried within the same session.
	_, err = sut.Load(context.Background())
	require.ErrorIs(t, err, srcErr)
	assert.Equal(t, 1, src.calls)
}

func TestFilterByCategory_AllReturnsInputUnchanged(t *testing.T) {
	books := sampleCatalog()

	got := FilterByCategory(books, CategoryAll)

	assert.Equal(t, books, got)
}

func TestFilterByCategory_ExactMatch(t *testing.T) {
	books := sampleCatalog()

	got := FilterByCategory(books, "fiction")

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "C", got[1].Title)
}

func TestFilterByCategory_CaseSensitive(t *testing.T) {
	books := sampleCatalog()

	got := FilterByCategory(books, "Fiction")

	assert.Empty(t, got)
}

func TestFilterByCategory_UnknownCategoryIsEmptyNotError(t *testing.T) {
	got := FilterByCategory(sampleCatalog(), "poetry")

	assert.Empty(t, got)
}

func TestFilterByCategory_UnionReconstructsCatalog(t *testing.T) {
	books := sampleCatalog()

	categories := map[string]struct{}{}
	for _, b := range books {
		categories[b.Category] = struct{}{}
	}

	var union []domain.Book
	for c := range categories {
		union = append(union, FilterByCategory(books, c)...)
	}
	union = append(union, FilterByCategory(books, "")...)

	assert.ElementsMatch(t, books, union)
}
