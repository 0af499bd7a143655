package order

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

var (
	ErrOrderNotFound   = fmt.Errorf("order %w", domain.ErrNotFound)
	ErrItemUnavailable = fmt.Errorf("%w: menu item unavailable", domain.ErrInvalid)
	ErrOrderBilled     = fmt.Errorf("%w: order is on a bill", domain.ErrConflict)
	ErrStatusChanged   = fmt.Errorf("%w: order status changed concurrently", domain.ErrConflict)
)

// ItemRequest is one cart line. Name and Price are ignored when the menu item
// exists; they are kept only for items no longer on the menu.
type ItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Qty        int       `json:"qty" validate:"gte=1"`
	Price      int       `json:"price"`
}

// PlaceOrderRequest creates an order. ID is optional; terminals send the id
// they already used locally so a retried request is idempotent.
type PlaceOrderRequest struct {
	ID            uuid.UUID     `json:"id"`
	TableNumber   int           `json:"table_number" validate:"gte=1"`
	CustomerPhone string        `json:"customer_phone"`
	Items         []ItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes         string        `json:"notes"`
}

// UpdateStatusRequest moves an order along its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderRequest edits the free-text part of an order.
type UpdateOrderRequest struct {
	Notes *string `json:"notes"`
}

// MenuPrice is the current price and availability of a menu item.
type MenuPrice struct {
	Name      string
	Price     int
	Available bool
}
