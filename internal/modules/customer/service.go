package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

// Service defines customer and loyalty business logic.
type Service interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, phone string) (domain.Customer, error)
	RecordVisit(ctx context.Context, req VisitRequest) (domain.Customer, error)
	Rename(ctx context.Context, phone string, req UpdateRequest) (domain.Customer, error)
	Redeem(ctx context.Context, phone string, req RedeemRequest) (domain.Customer, error)
	Delete(ctx context.Context, phone string) error
}

type service struct {
	repo   Repository
	notify *syncchan.Notifier
	now    func() time.Time
}

func NewService(repo Repository, notify *syncchan.Notifier) Service {
	return &service{repo: repo, notify: notify, now: time.Now}
}

func (s *service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, phone string) (domain.Customer, error) {
	return s.repo.Get(ctx, strings.TrimSpace(phone))
}

func (s *service) RecordVisit(ctx context.Context, req VisitRequest) (domain.Customer, error) {
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return domain.Customer{}, fmt.Errorf("%w: phone is required", domain.ErrInvalid)
	}
	c, err := s.repo.RecordVisit(ctx, phone, strings.TrimSpace(req.Name), s.now().UTC())
	if err != nil {
		return domain.Customer{}, err
	}
	s.notify.Notify(ctx, syncchan.EventCustomerUpdate)
	return c, nil
}

func (s *service) Rename(ctx context.Context, phone string, req UpdateRequest) (domain.Customer, error) {
	c, err := s.repo.UpdateName(ctx, strings.TrimSpace(phone), strings.TrimSpace(req.Name))
	if err != nil {
		return domain.Customer{}, err
	}
	s.notify.Notify(ctx, syncchan.EventCustomerUpdate)
	return c, nil
}

func (s *service) Redeem(ctx context.Context, phone string, req RedeemRequest) (domain.Customer, error) {
	if req.Points <= 0 {
		return domain.Customer{}, fmt.Errorf("%w: points must be positive", domain.ErrInvalid)
	}
	c, err := s.repo.Redeem(ctx, strings.TrimSpace(phone), req.Points)
	if err != nil {
		return domain.Customer{}, err
	}
	s.notify.Notify(ctx, syncchan.EventCustomerUpdate)
	return c, nil
}

func (s *service) Delete(ctx context.Context, phone string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(phone)); err != nil {
		return err
	}
	s.notify.Notify(ctx, syncchan.EventCustomerUpdate)
	return nil
}
