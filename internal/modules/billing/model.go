package billing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

var (
	ErrBillNotFound      = fmt.Errorf("bill %w", domain.ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("order %w", domain.ErrNotFound)
	ErrBillPaid          = fmt.Errorf("%w: bill already paid", domain.ErrConflict)
	ErrBillExists        = fmt.Errorf("%w: bill id already used", domain.ErrConflict)
	ErrBillNotEmpty      = fmt.Errorf("%w: bill has orders", domain.ErrConflict)
	ErrInvalidDiscount   = fmt.Errorf("%w: discount must be between 0 and the subtotal", domain.ErrInvalid)
	ErrInvalidPayment    = fmt.Errorf("%w: unknown payment method", domain.ErrInvalid)
	ErrWrongTable        = fmt.Errorf("%w: order belongs to another table", domain.ErrInvalid)
	errActiveBillCreated = fmt.Errorf("%w: table got an active bill concurrently", domain.ErrConflict)
)

// OpenBillRequest opens or joins the active bill of a table. ID is used only
// when a new bill is opened.
type OpenBillRequest struct {
	ID            uuid.UUID `json:"id"`
	TableNumber   int       `json:"table_number" validate:"gte=1"`
	CustomerPhone string    `json:"customer_phone"`
}

// AddOrderRequest appends an existing order to a bill.
type AddOrderRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// PayRequest settles a bill.
type PayRequest struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method" validate:"required"`
	Discount      int                  `json:"discount" validate:"gte=0"`
}
