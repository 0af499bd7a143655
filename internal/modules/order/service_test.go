package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/logger"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

type memRepo struct {
	orders map[uuid.UUID]domain.Order
	menu   map[uuid.UUID]MenuPrice
	billed map[uuid.UUID]bool
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[uuid.UUID]domain.Order{}, menu: map[uuid.UUID]MenuPrice{}, billed: map[uuid.UUID]bool{}}
}

func (m *memRepo) ListOrders(context.Context) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memRepo) GetOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return o, ErrOrderNotFound
	}
	return o, nil
}

func (m *memRepo) CreateOrder(_ context.Context, o domain.Order) (bool, error) {
	if _, ok := m.orders[o.ID]; ok {
		return false, nil
	}
	m.orders[o.ID] = o
	return true, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.OrderStatus, at time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if o.Status != from {
		return ErrStatusChanged
	}
	o.Status, o.UpdatedAt = to, at
	m.orders[id] = o
	return nil
}

func (m *memRepo) UpdateNotes(_ context.Context, id uuid.UUID, notes string, at time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Notes, o.UpdatedAt = notes, at
	m.orders[id] = o
	return nil
}

func (m *memRepo) DeleteOrder(_ context.Context, id uuid.UUID) error {
	if m.billed[id] {
		return ErrOrderBilled
	}
	if _, ok := m.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *memRepo) MenuPrices(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]MenuPrice, error) {
	out := map[uuid.UUID]MenuPrice{}
	for _, id := range ids {
		if p, ok := m.menu[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func setup() (*service, *memRepo, *syncchan.Recorder) {
	repo := newMemRepo()
	rec := &syncchan.Recorder{}
	svc := NewService(repo, domain.DefaultTransitionPolicy(), syncchan.NewNotifier(rec, logger.Nop())).(*service)
	return svc, repo, rec
}

func TestPlaceOrder_PricesFromMenu(t *testing.T) {
	svc, repo, rec := setup()
	tea := uuid.New()
	repo.menu[tea] = MenuPrice{Name: "Masala Tea", Price: 30, Available: true}

	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		TableNumber: 3,
		Items:       []ItemRequest{{MenuItemID: tea, Name: "stale", Qty: 2, Price: 1}},
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if o.Total != 60 || o.Items[0].Name != "Masala Tea" || o.Status != domain.StatusPending {
		t.Errorf("unexpected order %+v", o)
	}
	if ev := rec.Events(); len(ev) != 1 || ev[0] != syncchan.EventOrderUpdate {
		t.Errorf("events = %v", ev)
	}
}

func TestPlaceOrder_IdempotentOnClientID(t *testing.T) {
	svc, repo, rec := setup()
	tea := uuid.New()
	repo.menu[tea] = MenuPrice{Name: "Tea", Price: 20, Available: true}
	req := PlaceOrderRequest{ID: uuid.New(), TableNumber: 1, Items: []ItemRequest{{MenuItemID: tea, Qty: 1}}}

	first, err := svc.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != req.ID || second.ID != req.ID || len(repo.orders) != 1 {
		t.Errorf("retry created a duplicate: %d orders", len(repo.orders))
	}
	if n := len(rec.Events()); n != 1 {
		t.Errorf("expected one event, got %d", n)
	}
}

func TestPlaceOrder_UnavailableItem(t *testing.T) {
	svc, repo, _ := setup()
	cake := uuid.New()
	repo.menu[cake] = MenuPrice{Name: "Cake", Price: 90, Available: false}

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		TableNumber: 1, Items: []ItemRequest{{MenuItemID: cake, Qty: 1}},
	})
	if !errors.Is(err, ErrItemUnavailable) {
		t.Fatalf("expected ErrItemUnavailable, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Error("order persisted despite error")
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name string
		from domain.OrderStatus
		to   string
		want error
	}{
		{"forward", domain.StatusPending, "preparing", nil},
		{"same status", domain.StatusReady, "ready", nil},
		{"backward", domain.StatusReady, "pending", domain.ErrInvalidTransition},
		{"cancel pending", domain.StatusPending, "cancelled", nil},
		{"cancel preparing", domain.StatusPreparing, "cancelled", domain.ErrInvalidTransition},
		{"from paid", domain.StatusPaid, "served", domain.ErrInvalidTransition},
		{"unknown", domain.StatusPending, "eaten", domain.ErrUnknownStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := setup()
			id := uuid.New()
			repo.orders[id] = domain.Order{ID: id, TableNumber: 1, Status: tt.from}

			o, err := svc.UpdateStatus(context.Background(), id, UpdateStatusRequest{Status: tt.to})
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if string(o.Status) != tt.to || repo.orders[id].Status != o.Status {
					t.Errorf("status = %s, stored %s", o.Status, repo.orders[id].Status)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if repo.orders[id].Status != tt.from {
				t.Error("rejected transition changed the stored status")
			}
		})
	}
}

func TestDeleteOrder_Billed(t *testing.T) {
	svc, repo, rec := setup()
	id := uuid.New()
	repo.orders[id] = domain.Order{ID: id}
	repo.billed[id] = true

	if err := svc.DeleteOrder(context.Background(), id); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(rec.Events()) != 0 {
		t.Error("failed delete published an event")
	}
}

// payingRepo commits a concurrent payment right after the first read of an order.
type payingRepo struct {
	*memRepo
	paid bool
}

func (r *payingRepo) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	o, err := r.memRepo.GetOrder(ctx, id)
	if err == nil && !r.paid {
		r.paid = true
		stored := r.orders[id]
		stored.Status = domain.StatusPaid
		r.orders[id] = stored
	}
	return o, err
}

func TestUpdateStatus_ConcurrentPayWins(t *testing.T) {
	repo := &payingRepo{memRepo: newMemRepo()}
	rec := &syncchan.Recorder{}
	svc := NewService(repo, domain.DefaultTransitionPolicy(), syncchan.NewNotifier(rec, logger.Nop()))
	id := uuid.New()
	repo.orders[id] = domain.Order{ID: id, TableNumber: 3, Status: domain.StatusReady}

	_, err := svc.UpdateStatus(context.Background(), id, UpdateStatusRequest{Status: "served"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want invalid transition from paid", err)
	}
	if got := repo.orders[id].Status; got != domain.StatusPaid {
		t.Errorf("stored status = %s, want paid", got)
	}
	if n := len(rec.Events()); n != 0 {
		t.Errorf("events = %d, want 0", n)
	}
}
