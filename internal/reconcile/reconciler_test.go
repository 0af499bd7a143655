package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/logger"
	"github.com/georgemunganga/tablepos/internal/store"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

type fakeSource struct {
	mu        sync.Mutex
	healthErr error
	failures  map[Family]error
	calls     map[Family]int
	gate      map[Family]chan struct{}
	started   chan Family
	menu      []domain.MenuItem
	orders    []domain.Order
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		failures: make(map[Family]error),
		calls:    make(map[Family]int),
		gate:     make(map[Family]chan struct{}),
		started:  make(chan Family, 64),
		menu:     []domain.MenuItem{{ID: uuid.New(), Name: "Tea", Price: 30, Available: true}},
		orders:   []domain.Order{{ID: uuid.New(), TableNumber: 1, Status: domain.StatusPending, Total: 30}},
	}
}

func (f *fakeSource) enter(ctx context.Context, fam Family) error {
	f.mu.Lock()
	f.calls[fam]++
	gate := f.gate[fam]
	err := f.failures[fam]
	f.mu.Unlock()

	f.started <- fam
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeSource) count(fam Family) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[fam]
}

func (f *fakeSource) CheckHealth(context.Context) error { return f.healthErr }

func (f *fakeSource) FetchMenu(ctx context.Context) ([]domain.MenuItem, error) {
	if err := f.enter(ctx, FamilyMenu); err != nil {
		return nil, err
	}
	return f.menu, nil
}

func (f *fakeSource) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	return nil, f.enter(ctx, FamilyCategories)
}

func (f *fakeSource) FetchStaff(ctx context.Context) ([]domain.Staff, error) {
	return nil, f.enter(ctx, FamilyStaff)
}

func (f *fakeSource) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	if err := f.enter(ctx, FamilyOrders); err != nil {
		return nil, err
	}
	return f.orders, nil
}

func (f *fakeSource) FetchBills(ctx context.Context) ([]domain.Bill, error) {
	return nil, f.enter(ctx, FamilyBills)
}

func (f *fakeSource) FetchTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return nil, f.enter(ctx, FamilyTransactions)
}

func (f *fakeSource) FetchCustomers(ctx context.Context) ([]domain.Customer, error) {
	return nil, f.enter(ctx, FamilyCustomers)
}

func (f *fakeSource) FetchWaiterCalls(ctx context.Context) ([]domain.WaiterCall, error) {
	return nil, f.enter(ctx, FamilyWaiterCalls)
}

func (f *fakeSource) FetchSettings(ctx context.Context) (domain.Settings, error) {
	if err := f.enter(ctx, FamilySettings); err != nil {
		return domain.Settings{}, err
	}
	return domain.Settings{RestaurantName: "Chiya Ghar", TableCount: 12}, nil
}

func (f *fakeSource) FetchExpenses(ctx context.Context) ([]domain.Expense, error) {
	return nil, f.enter(ctx, FamilyExpenses)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestInitialLoad_PartialFailureIsReported(t *testing.T) {
	src := newFakeSource()
	src.failures[FamilyExpenses] = errors.New("boom")
	st := store.New()
	if _, err := st.AddExpense(domain.Expense{Amount: 120, Description: "Gas"}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	r := New(src, st, logger.Nop())

	rep, err := r.InitialLoad(context.Background())
	if err != nil {
		t.Fatalf("InitialLoad: %v", err)
	}
	failed := rep.Failed()
	if len(failed) != 1 || failed[0] != FamilyExpenses {
		t.Fatalf("failed = %v, want [expenses]", failed)
	}
	if rep.OK() {
		t.Errorf("report should not be OK")
	}
	if !r.Loaded() {
		t.Errorf("latch should be set after a partial load")
	}
	if len(st.Menu()) != 1 || len(st.Orders()) != 1 {
		t.Errorf("successful families were not applied")
	}
	if n := len(st.Expenses()); n != 1 {
		t.Errorf("failed family should keep prior data, expenses = %d", n)
	}
	if st.Settings().RestaurantName != "Chiya Ghar" {
		t.Errorf("settings not applied: %+v", st.Settings())
	}
	if res, _ := rep.Result(FamilyMenu); res.Count != 1 || res.Err != nil {
		t.Errorf("menu result = %+v", res)
	}

	raw, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	if !strings.Contains(string(raw), `"failed":["expenses"]`) || !strings.Contains(string(raw), `"error":"boom"`) {
		t.Errorf("report json = %s", raw)
	}

	// a second call does not fetch again
	before := src.count(FamilyMenu)
	if _, err := r.InitialLoad(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.count(FamilyMenu) != before {
		t.Errorf("InitialLoad refetched after the latch was set")
	}
}

func TestInitialLoad_HealthGateAndRetry(t *testing.T) {
	src := newFakeSource()
	src.healthErr = errors.New("connection refused")
	r := New(src, store.New(), logger.Nop())

	rep, err := r.InitialLoad(context.Background())
	if !errors.Is(err, ErrBackendUnavailable) || !errors.Is(rep.Err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if r.Loaded() {
		t.Fatalf("latch set despite failed health check")
	}
	if src.count(FamilyMenu) != 0 {
		t.Fatalf("families fetched without a healthy backend")
	}

	src.healthErr = nil
	rep, err = r.Retry(context.Background())
	if err != nil || !rep.OK() || !r.Loaded() {
		t.Fatalf("Retry = %+v, %v", rep, err)
	}
}

func TestBillUpdateRefetchesBillsTransactionsAndOrders(t *testing.T) {
	src := newFakeSource()
	r := New(src, store.New(), logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	bus := syncchan.NewBus()
	detach := r.Attach(bus)
	defer detach()

	bus.Emit(syncchan.Event{Type: syncchan.EventBillUpdate})

	waitFor(t, "bill families", func() bool {
		return src.count(FamilyBills) == 1 && src.count(FamilyTransactions) == 1 && src.count(FamilyOrders) == 1
	})
	if src.count(FamilyMenu) != 0 {
		t.Errorf("menu should not be refetched on a bill update")
	}
}

func TestConnectionRefreshOnlyAfterInitialLoad(t *testing.T) {
	src := newFakeSource()
	r := New(src, store.New(), logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	bus := syncchan.NewBus()
	r.Attach(bus)

	bus.Emit(syncchan.Event{Type: syncchan.EventConnection, Status: syncchan.StatusConnected})
	time.Sleep(50 * time.Millisecond)
	if n := src.count(FamilyMenu); n != 0 {
		t.Fatalf("connection before load triggered %d fetches", n)
	}

	if _, err := r.InitialLoad(context.Background()); err != nil {
		t.Fatal(err)
	}
	bus.Emit(syncchan.Event{Type: syncchan.EventConnection, Status: syncchan.StatusDisconnected})
	bus.Emit(syncchan.Event{Type: syncchan.EventConnection, Status: syncchan.StatusConnected})

	waitFor(t, "full refresh", func() bool {
		for _, f := range Families {
			if src.count(f) != 2 {
				return false
			}
		}
		return true
	})
}

func TestRequestsCoalesceWhileFetching(t *testing.T) {
	src := newFakeSource()
	gate := make(chan struct{})
	src.gate[FamilyOrders] = gate
	r := New(src, store.New(), logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	r.Request(FamilyOrders)
	<-src.started
	if r.State(FamilyOrders) != Fetching {
		t.Fatalf("state = %s, want fetching", r.State(FamilyOrders))
	}
	for i := 0; i < 10; i++ {
		r.Request(FamilyOrders)
	}
	close(gate)

	waitFor(t, "second fetch", func() bool { return src.count(FamilyOrders) == 2 })
	time.Sleep(50 * time.Millisecond)
	if n := src.count(FamilyOrders); n != 2 {
		t.Errorf("fetch count = %d, want 2 (one running, one coalesced)", n)
	}
	waitFor(t, "idle", func() bool { return r.State(FamilyOrders) == Idle })
}
