package staff

import (
	"fmt"

	"github.com/georgemunganga/tablepos/internal/domain"
)

var (
	ErrStaffNotFound      = fmt.Errorf("staff %w", domain.ErrNotFound)
	ErrUsernameTaken      = fmt.Errorf("%w: username already taken", domain.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	ErrLastAdmin          = fmt.Errorf("%w: cannot remove the last admin", domain.ErrConflict)
)

// CreateRequest registers a staff account.
type CreateRequest struct {
	Username string           `json:"username" validate:"required,min=3"`
	Password string           `json:"password" validate:"required,min=6"`
	Role     domain.StaffRole `json:"role" validate:"required,oneof=admin counter kitchen"`
	Name     string           `json:"name"`
}

// UpdateRequest edits an account; nil fields are left unchanged.
type UpdateRequest struct {
	Password *string           `json:"password" validate:"omitempty,min=6"`
	Role     *domain.StaffRole `json:"role" validate:"omitempty,oneof=admin counter kitchen"`
	Name     *string           `json:"name"`
}
