package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yogesh1636/Bibliotheca/internal/catalog/repository"
	"github.com/yogesh1636/Bibliotheca/internal/catalog/store"
)

const featuredLimit = 6

type BookHandler struct {
	store   *store.Store
	repo    repository.RepoInterface
	timeout time.Duration
}

func NewBookHandler(st *store.Store, repo repository.RepoInterface, timeout time.Duration) *BookHandler {
	return &BookHandler{
		store:   st,
		repo:    repo,
		timeout: timeout,
	}
}

// ListBooks serves the in-memory catalog, optionally filtered by the
// ?category= query parameter. Missing or "all" means no filter.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	books, err := h.store.Load(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		category = store.CategoryAll
	}

	filtered := store.FilterByCategory(books, category)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"books":    filtered,
		"category": category,
		"count":    len(filtered),
	})
}

func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "invalid book id")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	book, err := h.repo.GetBook(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, book)
}

func (h *BookHandler) FeaturedBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	books, err := h.repo.GetFeaturedBooks(ctx, featuredLimit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"books": books,
		"count": len(books),
	})
}
