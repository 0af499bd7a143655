package store

import (
	"fmt"

	"github.com/georgemunganga/tablepos/internal/domain"
)

var (
	ErrBillNotFound       = fmt.Errorf("bill %w", domain.ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order %w", domain.ErrNotFound)
	ErrCustomerNotFound   = fmt.Errorf("customer %w", domain.ErrNotFound)
	ErrMenuItemNotFound   = fmt.Errorf("menu item %w", domain.ErrNotFound)
	ErrWaiterCallNotFound = fmt.Errorf("waiter call %w", domain.ErrNotFound)

	ErrBillPaid   = fmt.Errorf("%w: bill already paid", domain.ErrConflict)
	ErrBillExists = fmt.Errorf("%w: bill id already in use", domain.ErrConflict)

	ErrInvalidDiscount      = fmt.Errorf("%w: discount must be between 0 and the bill subtotal", domain.ErrInvalid)
	ErrInvalidPaymentMethod = fmt.Errorf("%w: unsupported payment method", domain.ErrInvalid)
	ErrInvalidTable         = fmt.Errorf("%w: table number must be positive", domain.ErrInvalid)
	ErrInvalidOrder         = fmt.Errorf("%w: order", domain.ErrInvalid)
	ErrInvalidMenuItem      = fmt.Errorf("%w: menu item", domain.ErrInvalid)
	ErrInvalidExpense       = fmt.Errorf("%w: expense", domain.ErrInvalid)
	ErrInvalidPhone         = fmt.Errorf("%w: customer phone is required", domain.ErrInvalid)
	ErrInvalidPoints        = fmt.Errorf("%w: points must not be negative", domain.ErrInvalid)
	ErrWrongTable           = fmt.Errorf("%w: order belongs to another table", domain.ErrInvalid)
)
