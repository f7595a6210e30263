package http

import (
	"net/http"
	"time"

	"github.com/yogesh1636/Bibliotheca/internal/order/service"
)

type OrdersHandler struct {
	orders  *service.OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders *service.OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// ListOrders returns the signed-in user's orders, newest first.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in to view orders")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}
