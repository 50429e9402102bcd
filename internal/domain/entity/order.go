package entity

import "time"

// OrderStatusCompleted marks an order whose payment has been settled.
const OrderStatusCompleted = "finalizado"

// Order is a sale recorded against a seller. Orders are written by the storefront
// checkout; this system only reads them.
type Order struct {
	ID           int64
	CustomerID   int64
	CustomerName string
	SellerID     int64
	Total        float64
	Status       string
	CreatedAt    time.Time
}

// IsCompleted reports whether the order counts towards revenue.
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}
