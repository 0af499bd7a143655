package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

// Service defines the order management business logic.
type Service interface {
	// PlaceOrder prices the cart from the current menu and persists a pending order.
	// Placing an order whose id already exists returns the stored order.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error)

	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)

	// UpdateStatus advances an order to a new lifecycle status.
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (domain.Order, error)

	UpdateOrder(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (domain.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

const maxStatusRetries = 2

type service struct {
	repo   Repository
	policy domain.TransitionPolicy
	notify *syncchan.Notifier
	now    func() time.Time
}

// NewService creates a new order service.
func NewService(repo Repository, policy domain.TransitionPolicy, notify *syncchan.Notifier) Service {
	return &service{repo: repo, policy: policy, notify: notify, now: time.Now}
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	if req.ID != uuid.Nil {
		existing, err := s.repo.GetOrder(ctx, req.ID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return domain.Order{}, err
		}
	}

	items, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return domain.Order{}, err
	}

	now := s.now().UTC()
	o := domain.Order{
		ID:            req.ID,
		TableNumber:   req.TableNumber,
		CustomerPhone: req.CustomerPhone,
		Items:         items,
		Status:        domain.StatusPending,
		Total:         domain.ItemsTotal(items),
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	created, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to persist order: %w", err)
	}
	if !created {
		// Lost a race with a retry of the same request.
		return s.repo.GetOrder(ctx, o.ID)
	}
	s.notify.Notify(ctx, syncchan.EventOrderUpdate)
	return o, nil
}

// ── pricing ──────────────────────────────────────────────────────────────────

func (s *service) priceItems(ctx context.Context, lines []ItemRequest) ([]domain.OrderItem, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if l.MenuItemID != uuid.Nil {
			ids = append(ids, l.MenuItemID)
		}
	}
	prices, err := s.repo.MenuPrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		it := domain.OrderItem{ID: uuid.New(), MenuItemID: l.MenuItemID, Name: l.Name, Qty: l.Qty, Price: l.Price}
		if p, ok := prices[l.MenuItemID]; ok {
			if !p.Available {
				return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, p.Name)
			}
			it.Name, it.Price = p.Name, p.Price
		}
		if it.Name == "" || it.Price <= 0 {
			return nil, fmt.Errorf("%w: item %s is not on the menu", domain.ErrInvalid, l.MenuItemID)
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx)
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (domain.Order, error) {
	next, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return domain.Order{}, err
	}
	for attempt := 0; ; attempt++ {
		o, err := s.repo.GetOrder(ctx, id)
		if err != nil {
			return domain.Order{}, err
		}
		if err := s.policy.Check(o.Status, next); err != nil {
			return domain.Order{}, err
		}
		if o.Status == next {
			return o, nil
		}

		from := o.Status
		o.Status = next
		o.UpdatedAt = s.now().UTC()
		err = s.repo.UpdateStatus(ctx, id, from, next, o.UpdatedAt)
		if errors.Is(err, ErrStatusChanged) && attempt < maxStatusRetries {
			// Another writer moved the order; check the move again from its new status.
			continue
		}
		if err != nil {
			return domain.Order{}, err
		}
		s.notify.Notify(ctx, syncchan.EventOrderUpdate)
		return o, nil
	}
}

func (s *service) UpdateOrder(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (domain.Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if req.Notes == nil {
		return o, nil
	}
	o.Notes = *req.Notes
	o.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateNotes(ctx, id, o.Notes, o.UpdatedAt); err != nil {
		return domain.Order{}, err
	}
	s.notify.Notify(ctx, syncchan.EventOrderUpdate)
	return o, nil
}

func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.notify.Notify(ctx, syncchan.EventOrderUpdate)
	return nil
}
