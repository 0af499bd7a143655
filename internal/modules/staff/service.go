package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Service defines staff account business logic.
type Service interface {
	List(ctx context.Context) ([]domain.Staff, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Staff, error)
	Create(ctx context.Context, req CreateRequest) (domain.Staff, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (domain.Staff, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Authenticate checks a username and password pair.
	Authenticate(ctx context.Context, username, password string) (domain.Staff, error)

	// EnsureAdmin creates the bootstrap admin account when no admin exists yet.
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}
