package http

import (
	"encoding/json"
	"net/http"
	"time"

	cartservice "github.com/yogesh1636/Bibliotheca/internal/cart/service"
	orderservice "github.com/yogesh1636/Bibliotheca/internal/order/service"
)

type CheckoutHandler struct {
	cart    *cartservice.CartService
	orders  *orderservice.OrderService
	timeout time.Duration
}

func NewCheckoutHandler(cart *cartservice.CartService, orders *orderservice.OrderService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		cart:    cart,
		orders:  orders,
		timeout: timeout,
	}
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
}

type checkoutResponse struct {
	OrderID     string  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
}

// Checkout snapshots the cart and turns it into an order for the signed-in
// user. An empty cart is a 400, not a zero-total order.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in to check out")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}

	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	snapshot, err := h.cart.Snapshot(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	order, err := h.orders.CreateOrder(ctx, userID, snapshot, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
	})
}
