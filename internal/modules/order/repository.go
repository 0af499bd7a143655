package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Repository defines data access for orders.
type Repository interface {
	// ListOrders returns every order, oldest first.
	ListOrders(ctx context.Context) ([]domain.Order, error)

	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)

	// CreateOrder inserts o. It returns false without error when the id already exists.
	CreateOrder(ctx context.Context, o domain.Order) (bool, error)

	// UpdateStatus moves the order from status from to status to. It returns
	// ErrStatusChanged when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, at time.Time) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string, at time.Time) error

	// DeleteOrder fails with ErrOrderBilled while a bill references the order.
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	// MenuPrices looks up the current price of each menu item id.
	MenuPrices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]MenuPrice, error)
}
