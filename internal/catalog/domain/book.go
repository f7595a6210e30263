package domain

import "time"

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"created_at"`
}
