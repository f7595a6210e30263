package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yogesh1636/Bibliotheca/internal/cart/domain"
	"github.com/yogesh1636/Bibliotheca/internal/cart/service"
)

type CartHandler struct {
	cart    *service.CartService
	timeout time.Duration
}

func NewCartHandler(cart *service.CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:    cart,
		timeout: timeout,
	}
}

type addLineRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type cartResponse struct {
	Lines []domain.Line `json:"lines"`
	Total float64       `json:"total"`
	Count int           `json:"count"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	cart, err := h.cart.Snapshot(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse{
		Lines: cart.Lines,
		Total: cart.Total(),
		Count: len(cart.Lines),
	})
}

func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_argument", "name is required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_argument", "price must not be negative")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	if err := h.cart.Add(ctx, req.Name, req.Price); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// RemoveLine drops the cart line at the path index. Out-of-bounds indices
// succeed without changing the cart.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "invalid line index")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	if err := h.cart.RemoveAt(ctx, index); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	if err := h.cart.Clear(ctx); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
