package customer

import (
	"context"
	"time"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Repository defines data access for customers, keyed by phone.
type Repository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, phone string) (domain.Customer, error)
	// RecordVisit upserts phone, bumping total_orders and last_visit. An empty name keeps the stored one.
	RecordVisit(ctx context.Context, phone, name string, at time.Time) (domain.Customer, error)
	UpdateName(ctx context.Context, phone, name string) (domain.Customer, error)
	// Redeem subtracts points, never going below zero.
	Redeem(ctx context.Context, phone string, points int) (domain.Customer, error)
	Delete(ctx context.Context, phone string) error
}
