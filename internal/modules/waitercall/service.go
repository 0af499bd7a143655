package waitercall

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

type Service struct {
	repo   Repository
	notify *syncchan.Notifier
	now    func() time.Time
}

func NewService(repo Repository, notify *syncchan.Notifier) *Service {
	return &Service{repo: repo, notify: notify, now: time.Now}
}

func (s *Service) List(ctx context.Context, pendingOnly bool) ([]domain.WaiterCall, error) {
	return s.repo.List(ctx, pendingOnly)
}

// Call raises a call for a table. A table with a pending call gets that call back
// instead of a second one.
func (s *Service) Call(ctx context.Context, req CallRequest) (domain.WaiterCall, error) {
	if req.ID != uuid.Nil {
		if existing, err := s.repo.Get(ctx, req.ID); err == nil {
			return existing, nil
		} else if !errors.Is(err, ErrCallNotFound) {
			return domain.WaiterCall{}, err
		}
	}
	pending, err := s.repo.PendingForTable(ctx, req.TableNumber)
	if err == nil {
		return pending, nil
	}
	if !errors.Is(err, ErrCallNotFound) {
		return domain.WaiterCall{}, err
	}

	c := domain.WaiterCall{
		ID:            req.ID,
		TableNumber:   req.TableNumber,
		CustomerPhone: req.CustomerPhone,
		Status:        domain.CallPending,
		CreatedAt:     req.CreatedAt,
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return domain.WaiterCall{}, err
	}
	if !created {
		return s.repo.Get(ctx, c.ID)
	}
	s.notify.Notify(ctx, syncchan.EventWaiterCall)
	return c, nil
}

// Acknowledge marks a call handled. Repeating it keeps the first timestamp.
func (s *Service) Acknowledge(ctx context.Context, id uuid.UUID) (domain.WaiterCall, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.WaiterCall{}, err
	}
	if before.Status == domain.CallAcknowledged {
		return before, nil
	}
	c, err := s.repo.Acknowledge(ctx, id, s.now().UTC())
	if err != nil {
		return domain.WaiterCall{}, err
	}
	s.notify.Notify(ctx, syncchan.EventWaiterCall)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify.Notify(ctx, syncchan.EventWaiterCall)
	return nil
}
