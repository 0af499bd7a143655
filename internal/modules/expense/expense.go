// Package expense records outgoing payments.
package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/httpx"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

var ErrExpenseNotFound = fmt.Errorf("expense %w", domain.ErrNotFound)

var categories = map[domain.ExpenseCategory]bool{
	domain.ExpenseIngredients: true,
	domain.ExpenseUtilities:   true,
	domain.ExpenseSalary:      true,
	domain.ExpenseMaintenance: true,
	domain.ExpenseOther:       true,
}

// Repository defines data access for expenses.
type Repository interface {
	List(ctx context.Context) ([]domain.Expense, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Expense, error)
	Create(ctx context.Context, e domain.Expense) error
	Update(ctx context.Context, e domain.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) List(ctx context.Context) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, description, category, created_by, created_at
		FROM expenses ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Description, &e.Category, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Get(ctx context.Context, id uuid.UUID) (domain.Expense, error) {
	var e domain.Expense
	err := r.db.QueryRowContext(ctx, `
		SELECT id, amount, description, category, created_by, created_at
		FROM expenses WHERE id=$1`, id).
		Scan(&e.ID, &e.Amount, &e.Description, &e.Category, &e.CreatedBy, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Expense{}, ErrExpenseNotFound
	}
	return e, err
}

func (r *postgresRepo) Update(ctx context.Context, e domain.Expense) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET amount=$2, description=$3, category=$4 WHERE id=$1`,
		e.ID, e.Amount, e.Description, e.Category)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (r *postgresRepo) Create(ctx context.Context, e domain.Expense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, amount, description, category, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Amount, e.Description, e.Category, e.CreatedBy, e.CreatedAt)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// CreateRequest records an expense. ID and CreatedAt are optional so terminals can
// forward the record they already hold.
type CreateRequest struct {
	ID          uuid.UUID              `json:"id"`
	Amount      int                    `json:"amount" validate:"gte=1"`
	Description string                 `json:"description" validate:"required"`
	Category    domain.ExpenseCategory `json:"category"`
	CreatedBy   string                 `json:"created_by"`
	CreatedAt   time.Time              `json:"created_at"`
}

// UpdateRequest corrects a recorded expense. Nil fields are left unchanged.
type UpdateRequest struct {
	Amount      *int                    `json:"amount" validate:"omitempty,gte=1"`
	Description *string                 `json:"description" validate:"omitempty,min=1"`
	Category    *domain.ExpenseCategory `json:"category"`
}

type Service struct {
	repo   Repository
	notify *syncchan.Notifier
	now    func() time.Time
}

func NewService(repo Repository, notify *syncchan.Notifier) *Service {
	return &Service{repo: repo, notify: notify, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]domain.Expense, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, req CreateRequest, by string) (domain.Expense, error) {
	e := domain.Expense{
		ID:          req.ID,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   req.CreatedAt,
	}
	if e.Category == "" {
		e.Category = domain.ExpenseOther
	}
	if !categories[e.Category] {
		return domain.Expense{}, fmt.Errorf("%w: unknown expense category %q", domain.ErrInvalid, e.Category)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	if e.CreatedBy == "" {
		e.CreatedBy = by
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return domain.Expense{}, err
	}
	s.notify.Notify(ctx, syncchan.EventExpenseUpdate)
	return e, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (domain.Expense, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Expense{}, err
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	if req.Description != nil {
		e.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !categories[*req.Category] {
			return domain.Expense{}, fmt.Errorf("%w: unknown expense category %q", domain.ErrInvalid, *req.Category)
		}
		e.Category = *req.Category
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return domain.Expense{}, err
	}
	s.notify.Notify(ctx, syncchan.EventExpenseUpdate)
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify.Notify(ctx, syncchan.EventExpenseUpdate)
	return nil
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

type Handler struct {
	service *Service
	// actor names the caller for CreatedBy; nil leaves it empty.
	actor func(r *http.Request) string
}

func NewHandler(service *Service, actor func(r *http.Request) string) *Handler {
	return &Handler{service: service, actor: actor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/expenses", func(r chi.Router) {
		r.Get("/", h.list)          // GET    /api/v1/expenses
		r.Post("/", h.create)       // POST   /api/v1/expenses
		r.Patch("/{id}", h.update)  // PATCH  /api/v1/expenses/{id}
		r.Delete("/{id}", h.delete) // DELETE /api/v1/expenses/{id}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	es, err := h.service.List(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, es)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	by := ""
	if h.actor != nil {
		by = h.actor(r)
	}
	e, err := h.service.Create(r.Context(), req, by)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	e, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, e)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusNoContent, nil)
}
