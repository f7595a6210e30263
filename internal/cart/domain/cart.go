package domain

import "time"

// StorageKey is the single persisted cart mapping. The cart is not namespaced
// per user; whoever is signed in on this storefront owns it.
const StorageKey = "cart"

// Line is one denormalized entry in the cart: the book title and the price
// captured at add time. Repeated adds of the same book create repeated lines,
// and position is the only identifier a line has.
type Line struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

type Cart struct {
	Key       string    `bson:"_id"`
	Lines     []Line    `bson:"lines"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func NewCart() *Cart {
	now := time.Now()
	return &Cart{
		Key:       StorageKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) Add(name string, price float64) {
	c.Lines = append(c.Lines, Line{Name: name, Price: price})
}

// RemoveAt drops the line at index. An out-of-bounds index is a silent no-op,
// the sequence is left untouched.
func (c *Cart) RemoveAt(index int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Price
	}
	return total
}
