package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Repository defines data access for bills and transactions.
type Repository interface {
	ListBills(ctx context.Context) ([]domain.Bill, error)
	GetBill(ctx context.Context, id uuid.UUID) (domain.Bill, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)

	// WithTx runs fn in one database transaction, committing only when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write surface available inside WithTx. Bills read through Tx are locked
// until the transaction ends.
type Tx interface {
	ActiveBill(ctx context.Context, table int) (domain.Bill, bool, error)
	LockBill(ctx context.Context, id uuid.UUID) (domain.Bill, error)
	InsertBill(ctx context.Context, b domain.Bill) error
	SaveBill(ctx context.Context, b domain.Bill) error
	DeleteBill(ctx context.Context, id uuid.UUID) error

	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)
	LinkOrder(ctx context.Context, billID, orderID uuid.UUID) error
	SetOrderStatus(ctx context.Context, ids []uuid.UUID, status domain.OrderStatus, at time.Time) error

	InsertTransaction(ctx context.Context, t domain.Transaction) error

	// RewardCustomer adds points and spend to phone, creating the customer when missing.
	RewardCustomer(ctx context.Context, phone string, points, spent int, at time.Time) error
}
