package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

// Orders are created confirmed; no further transitions are modeled.
const OrderStatusConfirmed OrderStatus = "confirmed"

type OrderItem struct {
	BookID   int64   `json:"book_id"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"` // price at purchase, not re-fetched from the catalog
}

type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	UserID          string
	TotalAmount     float64
	ShippingAddress string
	PaymentMethod   string // opaque passthrough
	Status          OrderStatus
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
