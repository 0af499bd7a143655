package waitercall

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Repository defines data access for waiter calls.
type Repository interface {
	List(ctx context.Context, pendingOnly bool) ([]domain.WaiterCall, error)
	Get(ctx context.Context, id uuid.UUID) (domain.WaiterCall, error)
	// PendingForTable returns the open call of a table, or ErrCallNotFound.
	PendingForTable(ctx context.Context, table int) (domain.WaiterCall, error)
	// Create inserts c; created is false when the id already exists.
	Create(ctx context.Context, c domain.WaiterCall) (bool, error)
	// Acknowledge stamps a pending call. Already acknowledged calls are left alone.
	Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) (domain.WaiterCall, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
