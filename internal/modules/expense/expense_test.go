package expense

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/logger"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

type memRepo struct{ items []domain.Expense }

func (m *memRepo) List(context.Context) ([]domain.Expense, error) { return m.items, nil }

func (m *memRepo) Create(_ context.Context, e domain.Expense) error {
	m.items = append(m.items, e)
	return nil
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (domain.Expense, error) {
	for _, e := range m.items {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Expense{}, ErrExpenseNotFound
}

func (m *memRepo) Update(_ context.Context, e domain.Expense) error {
	for i := range m.items {
		if m.items[i].ID == e.ID {
			m.items[i] = e
			return nil
		}
	}
	return ErrExpenseNotFound
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, e := range m.items {
		if e.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return ErrExpenseNotFound
}

func TestCreateExpense(t *testing.T) {
	repo := &memRepo{}
	rec := &syncchan.Recorder{}
	svc := NewService(repo, syncchan.NewNotifier(rec, logger.Nop()))
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateRequest{Amount: 500, Description: " Milk "}, "counter-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Category != domain.ExpenseOther || e.CreatedBy != "counter-1" || e.Description != "Milk" || e.CreatedAt.IsZero() {
		t.Errorf("unexpected expense %+v", e)
	}

	id := uuid.New()
	kept, _ := svc.Create(ctx, CreateRequest{ID: id, Amount: 100, Description: "Gas", Category: domain.ExpenseUtilities, CreatedBy: "kitchen"}, "admin")
	if kept.ID != id || kept.CreatedBy != "kitchen" {
		t.Errorf("client fields not kept: %+v", kept)
	}

	if _, err := svc.Create(ctx, CreateRequest{Amount: 1, Description: "x", Category: "travel"}, ""); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("unknown category: %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete missing: %v", err)
	}
	if n := len(rec.Events()); n != 2 {
		t.Errorf("events = %d, want 2", n)
	}
}

func TestUpdateExpense(t *testing.T) {
	repo := &memRepo{}
	rec := &syncchan.Recorder{}
	svc := NewService(repo, syncchan.NewNotifier(rec, logger.Nop()))
	ctx := context.Background()

	e, _ := svc.Create(ctx, CreateRequest{Amount: 800, Description: "Sugar", Category: domain.ExpenseIngredients}, "admin")

	amount := 750
	got, err := svc.Update(ctx, e.ID, UpdateRequest{Amount: &amount})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Amount != 750 || got.Description != "Sugar" || got.Category != domain.ExpenseIngredients {
		t.Errorf("partial update changed other fields: %+v", got)
	}

	bad := domain.ExpenseCategory("travel")
	if _, err := svc.Update(ctx, e.ID, UpdateRequest{Category: &bad}); !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("bad category: %v", err)
	}
	if repo.items[0].Category != domain.ExpenseIngredients {
		t.Error("rejected update was applied")
	}
	if _, err := svc.Update(ctx, uuid.New(), UpdateRequest{Amount: &amount}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("update missing: %v", err)
	}
}
