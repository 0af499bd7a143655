package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

// Service defines menu and category business logic.
type Service interface {
	ListMenu(ctx context.Context) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, req CreateMenuItemRequest) (domain.MenuItem, error)
	// UpdateMenuItem applies a partial update, including availability toggles.
	UpdateMenuItem(ctx context.Context, id uuid.UUID, req UpdateMenuItemRequest) (domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, req CategoryRequest) (domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	notify *syncchan.Notifier
}

func NewService(repo Repository, notify *syncchan.Notifier) Service {
	return &service{repo: repo, notify: notify}
}

func (s *service) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.ListMenu(ctx)
}

func (s *service) GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
	return s.repo.GetMenuItem(ctx, id)
}

func (s *service) CreateMenuItem(ctx context.Context, req CreateMenuItemRequest) (domain.MenuItem, error) {
	m := domain.MenuItem{
		ID:          uuid.New(),
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Available:   true,
		Description: req.Description,
		Image:       req.Image,
	}
	if req.Available != nil {
		m.Available = *req.Available
	}
	if err := s.repo.CreateMenuItem(ctx, m); err != nil {
		return domain.MenuItem{}, err
	}
	s.notify.Notify(ctx, syncchan.EventMenuUpdate)
	return m, nil
}

func (s *service) UpdateMenuItem(ctx context.Context, id uuid.UUID, req UpdateMenuItemRequest) (domain.MenuItem, error) {
	m, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}
	req.apply(&m)
	if err := s.repo.UpdateMenuItem(ctx, m); err != nil {
		return domain.MenuItem{}, err
	}
	s.notify.Notify(ctx, syncchan.EventMenuUpdate)
	return m, nil
}

func (s *service) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	s.notify.Notify(ctx, syncchan.EventMenuUpdate)
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) CreateCategory(ctx context.Context, req CategoryRequest) (domain.Category, error) {
	c := domain.Category{ID: uuid.New(), Name: req.Name, SortOrder: req.SortOrder}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}
	s.notify.Notify(ctx, syncchan.EventCategoriesUpdate)
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (domain.Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	c.Name = req.Name
	c.SortOrder = req.SortOrder
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}
	s.notify.Notify(ctx, syncchan.EventCategoriesUpdate)
	return c, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.notify.Notify(ctx, syncchan.EventCategoriesUpdate)
	return nil
}
