package waitercall

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

var ErrCallNotFound = fmt.Errorf("waiter call %w", domain.ErrNotFound)

// CallRequest raises a call for a table. ID and CreatedAt may be supplied by the
// terminal that raised it first.
type CallRequest struct {
	ID            uuid.UUID `json:"id"`
	TableNumber   int       `json:"table_number" validate:"gte=1"`
	CustomerPhone string    `json:"customer_phone"`
	CreatedAt     time.Time `json:"created_at"`
}
