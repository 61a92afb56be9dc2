package domain

import (
	"context"
	"time"
)

type OrderStatus string

const (
	OrderStatusActive   OrderStatus = "active"
	OrderStatusArchived OrderStatus = "archived"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	return s == OrderStatusActive || s == OrderStatusArchived
}

// OrderItem is the frozen snapshot of one catalog item at submission time.
type OrderItem struct {
	ItemID int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

// Order is a customer submission. Items and TotalPrice never change after
// creation; only Status moves between active and archived.
type Order struct {
	ID         int64
	FullName   string
	Phone      string
	Email      string
	Address    string
	Notes      string
	Items      []OrderItem
	TotalPrice float64
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderFilter narrows an order listing. An empty Status lists every order.
type OrderFilter struct {
	Status OrderStatus
}

// OrderChanges lists the order columns an update touches.
type OrderChanges struct {
	Status *OrderStatus
}

// OrderRepository defines persistence operations for orders. Listings are
// newest-first.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
	Update(ctx context.Context, id int64, changes OrderChanges) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
