package staff

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

type service struct {
	repo   Repository
	notify *syncchan.Notifier
	cost   int
}

// NewService creates a new staff service.
func NewService(repo Repository, notify *syncchan.Notifier) Service {
	return &service{repo: repo, notify: notify, cost: bcrypt.DefaultCost}
}

func (s *service) List(ctx context.Context) ([]domain.Staff, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (domain.Staff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (domain.Staff, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return domain.Staff{}, err
	}
	st := domain.Staff{
		ID:           uuid.New(),
		Username:     strings.ToLower(strings.TrimSpace(req.Username)),
		PasswordHash: string(hash),
		Role:         req.Role,
		Name:         req.Name,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return domain.Staff{}, err
	}
	s.notify.Notify(ctx, syncchan.EventStaffUpdate)
	return st, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (domain.Staff, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Staff{}, err
	}
	if req.Role != nil && *req.Role != domain.RoleAdmin && st.Role == domain.RoleAdmin {
		if err := s.keepOneAdmin(ctx); err != nil {
			return domain.Staff{}, err
		}
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.cost)
		if err != nil {
			return domain.Staff{}, err
		}
		st.PasswordHash = string(hash)
	}
	if req.Role != nil {
		st.Role = *req.Role
	}
	if req.Name != nil {
		st.Name = *req.Name
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return domain.Staff{}, err
	}
	s.notify.Notify(ctx, syncchan.EventStaffUpdate)
	return st, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if st.Role == domain.RoleAdmin {
		if err := s.keepOneAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify.Notify(ctx, syncchan.EventStaffUpdate)
	return nil
}

func (s *service) keepOneAdmin(ctx context.Context) error {
	n, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (domain.Staff, error) {
	st, err := s.repo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if errors.Is(err, ErrStaffNotFound) {
		return domain.Staff{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Staff{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)); err != nil {
		return domain.Staff{}, ErrInvalidCredentials
	}
	return st, nil
}

func (s *service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	n, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil || n > 0 {
		return false, err
	}
	_, err = s.Create(ctx, CreateRequest{Username: username, Password: password, Role: domain.RoleAdmin, Name: "Administrator"})
	return err == nil, err
}
