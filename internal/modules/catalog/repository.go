package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Repository defines data access for menu items and categories.
type Repository interface {
	ListMenu(ctx context.Context) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, m domain.MenuItem) error
	UpdateMenuItem(ctx context.Context, m domain.MenuItem) error
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) error
	UpdateCategory(ctx context.Context, c domain.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}
