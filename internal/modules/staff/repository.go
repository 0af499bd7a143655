package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Repository defines data access for staff accounts.
type Repository interface {
	List(ctx context.Context) ([]domain.Staff, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Staff, error)
	GetByUsername(ctx context.Context, username string) (domain.Staff, error)
	Create(ctx context.Context, s domain.Staff) error
	Update(ctx context.Context, s domain.Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByRole(ctx context.Context, role domain.StaffRole) (int, error)
}
