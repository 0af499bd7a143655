package kitchen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

type fakeOrders []domain.Order

func (f fakeOrders) ListOrders(context.Context) ([]domain.Order, error) { return f, nil }

func (f fakeOrders) GetOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	for _, o := range f {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func order(table int, status domain.OrderStatus, at time.Time, name string, qty int) domain.Order {
	return domain.Order{
		ID:          uuid.New(),
		TableNumber: table,
		Status:      status,
		CreatedAt:   at,
		Items:       []domain.OrderItem{{ID: uuid.New(), Name: name, Qty: qty, Price: 10}},
	}
}

func TestKitchenHandler(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	orders := fakeOrders{
		order(2, domain.StatusPreparing, base.Add(2*time.Minute), "Momo", 1),
		order(5, domain.StatusPending, base, "Tea", 2),
		order(7, domain.StatusReady, base.Add(-time.Minute), "Tea", 1),
	}
	r := chi.NewRouter()
	NewHandler(NewService(orders)).RegisterRoutes(r)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/api/v1/kitchen/queue")
	if w.Code != http.StatusOK {
		t.Fatalf("queue = %d", w.Code)
	}
	var q Queue
	if err := json.NewDecoder(w.Body).Decode(&q); err != nil {
		t.Fatal(err)
	}
	if len(q.Orders) != 2 || q.Orders[0].TableNumber != 5 || q.Orders[1].TableNumber != 2 {
		t.Errorf("queue order = %+v", q.Orders)
	}
	if q.Wait.QueueLength != 2 {
		t.Errorf("wait queue length = %d, want 2", q.Wait.QueueLength)
	}

	var depth map[string]int
	json.NewDecoder(get("/api/v1/kitchen/queue-depth").Body).Decode(&depth)
	if depth["queue_depth"] != 2 {
		t.Errorf("queue depth = %v", depth)
	}

	w = get("/api/v1/kitchen/orders/" + orders[1].ID.String() + "/ticket?waiter=Sita")
	if w.Code != http.StatusOK {
		t.Fatalf("ticket = %d", w.Code)
	}
	for _, want := range []string{"Table: 5", "2x Tea", "Waiter: Sita"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("ticket missing %q:\n%s", want, w.Body.String())
		}
	}

	if w := get("/api/v1/kitchen/orders/" + uuid.NewString() + "/ticket"); w.Code != http.StatusNotFound {
		t.Errorf("missing order ticket = %d, want 404", w.Code)
	}
}
