package customer

import (
	"fmt"

	"github.com/georgemunganga/tablepos/internal/domain"
)

var ErrCustomerNotFound = fmt.Errorf("customer %w", domain.ErrNotFound)

// VisitRequest records a visit for a phone, creating the customer on first visit.
type VisitRequest struct {
	Phone string `json:"phone" validate:"required"`
	Name  string `json:"name"`
}

// UpdateRequest renames a customer.
type UpdateRequest struct {
	Name string `json:"name" validate:"required"`
}

// RedeemRequest debits loyalty points.
type RedeemRequest struct {
	Points int `json:"points" validate:"gte=1"`
}
