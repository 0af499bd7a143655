// Package store holds a terminal's canonical copy of the restaurant state.
//
// Every mutation runs under one lock and either commits completely or returns an
// error without touching state. Getters return deep copies, so callers may hold
// results across later mutations.
package store

import (
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/views"
)

// Store is the single in-process owner of all entity collections.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	loc      *time.Location
	policy   domain.TransitionPolicy
	version  uint64
	nextSub  int
	watchers map[int]func(Snapshot)

	menu         []domain.MenuItem
	categories   []domain.Category
	orders       []domain.Order
	bills        []domain.Bill
	transactions []domain.Transaction
	customers    []domain.Customer
	staff        []domain.Staff
	settings     domain.Settings
	expenses     []domain.Expense
	waiterCalls  []domain.WaiterCall
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the timezone used for calendar-day comparisons.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithPolicy sets the order status transition policy.
func WithPolicy(p domain.TransitionPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// New returns an empty store with default settings.
func New(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		loc:      time.Local,
		policy:   domain.DefaultTransitionPolicy(),
		watchers: make(map[int]func(Snapshot)),
		settings: domain.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to receive a snapshot after every committed change.
// fn runs on the mutating goroutine after the lock is released.
func (s *Store) OnChange(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.watchers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// update runs fn under the write lock. State must only be written by fn after
// every check has passed; fn reports whether anything changed.
func (s *Store) update(fn func() (bool, error)) error {
	s.mu.Lock()
	changed, err := fn()
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.version++
	var snap Snapshot
	watchers := make([]func(Snapshot), 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	if len(watchers) > 0 {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	for _, w := range watchers {
		w(snap)
	}
	return nil
}

func (s *Store) stamp() time.Time {
	return s.now().In(s.loc)
}

// ── snapshot & full-collection replace ───────────────────────────────────────

// Snapshot returns a deep copy of every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Version increases by one for every committed change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Restore replaces every collection with snap, typically read from local persistence
// before the backend is reachable.
func (s *Store) Restore(snap Snapshot) {
	_ = s.update(func() (bool, error) {
		s.menu = cloneSlice(snap.Menu, nil)
		s.categories = cloneSlice(snap.Categories, nil)
		s.orders = cloneSlice(snap.Orders, cloneOrder)
		s.bills = cloneSlice(snap.Bills, cloneBill)
		s.transactions = cloneSlice(snap.Transactions, cloneTransaction)
		s.customers = cloneSlice(snap.Customers, nil)
		s.staff = cloneSlice(snap.Staff, nil)
		s.settings = snap.Settings
		if s.settings == (domain.Settings{}) {
			s.settings = domain.DefaultSettings()
		}
		s.expenses = cloneSlice(snap.Expenses, nil)
		s.waiterCalls = cloneSlice(snap.WaiterCalls, cloneWaiterCall)
		if snap.Version > s.version {
			s.version = snap.Version - 1
		}
		return true, nil
	})
}

// replace swaps *dst for a copy of src unless they are equal. Nil and empty compare equal.
func replace[T any](dst *[]T, src []T, clone func(T) T) bool {
	if len(*dst) == 0 && len(src) == 0 {
		return false
	}
	if reflect.DeepEqual(*dst, src) {
		return false
	}
	*dst = cloneSlice(src, clone)
	return true
}

func (s *Store) set(fn func() bool) bool {
	var changed bool
	_ = s.update(func() (bool, error) {
		changed = fn()
		return changed, nil
	})
	return changed
}

// SetMenu replaces the menu. It reports whether the collection changed.
func (s *Store) SetMenu(items []domain.MenuItem) bool {
	return s.set(func() bool { return replace(&s.menu, items, nil) })
}

func (s *Store) SetCategories(items []domain.Category) bool {
	return s.set(func() bool { return replace(&s.categories, items, nil) })
}

func (s *Store) SetOrders(items []domain.Order) bool {
	return s.set(func() bool { return replace(&s.orders, items, cloneOrder) })
}

func (s *Store) SetBills(items []domain.Bill) bool {
	return s.set(func() bool { return replace(&s.bills, items, cloneBill) })
}

func (s *Store) SetTransactions(items []domain.Transaction) bool {
	return s.set(func() bool { return replace(&s.transactions, items, cloneTransaction) })
}

func (s *Store) SetCustomers(items []domain.Customer) bool {
	return s.set(func() bool { return replace(&s.customers, items, nil) })
}

func (s *Store) SetStaff(items []domain.Staff) bool {
	return s.set(func() bool { return replace(&s.staff, items, nil) })
}

func (s *Store) SetExpenses(items []domain.Expense) bool {
	return s.set(func() bool { return replace(&s.expenses, items, nil) })
}

func (s *Store) SetWaiterCalls(items []domain.WaiterCall) bool {
	return s.set(func() bool { return replace(&s.waiterCalls, items, cloneWaiterCall) })
}

// SetSettings replaces the settings singleton.
func (s *Store) SetSettings(st domain.Settings) bool {
	return s.set(func() bool {
		if s.settings == st {
			return false
		}
		s.settings = st
		return true
	})
}

// ── getters ───────────────────────────────────────────────────────────────────

func (s *Store) Menu() []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.menu, nil)
}

func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.categories, nil)
}

func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.orders, cloneOrder)
}

func (s *Store) Order(id uuid.UUID) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.orderIndex(id); i >= 0 {
		return cloneOrder(s.orders[i]), true
	}
	return domain.Order{}, false
}

func (s *Store) Bills() []domain.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.bills, cloneBill)
}

func (s *Store) Bill(id uuid.UUID) (domain.Bill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.billIndex(id); i >= 0 {
		return cloneBill(s.bills[i]), true
	}
	return domain.Bill{}, false
}

// ActiveBillForTable returns the unpaid bill of a table, if any.
func (s *Store) ActiveBillForTable(table int) (domain.Bill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.activeBillIndex(table); i >= 0 {
		return cloneBill(s.bills[i]), true
	}
	return domain.Bill{}, false
}

func (s *Store) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.transactions, cloneTransaction)
}

func (s *Store) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.customers, nil)
}

func (s *Store) Customer(phone string) (domain.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.customerIndex(phone); i >= 0 {
		return s.customers[i], true
	}
	return domain.Customer{}, false
}

func (s *Store) Staff() []domain.Staff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.staff, nil)
}

func (s *Store) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Store) Expenses() []domain.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.expenses, nil)
}

func (s *Store) WaiterCalls() []domain.WaiterCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.waiterCalls, cloneWaiterCall)
}

// GetPendingOrders returns orders the kitchen has not started, oldest first.
func (s *Store) GetPendingOrders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(views.PendingOrders(s.orders), cloneOrder)
}

// GetActiveBills returns unpaid bills ordered by table.
func (s *Store) GetActiveBills() []domain.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(views.ActiveBills(s.bills), cloneBill)
}

// GetTodayStats summarises today's takings and live activity.
func (s *Store) GetTodayStats() views.TodayStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return views.Today(s.orders, s.bills, s.transactions, s.stamp(), s.loc)
}

// Now returns the store clock reading in the store location.
func (s *Store) Now() time.Time { return s.stamp() }

// Location is the timezone used for calendar-day views.
func (s *Store) Location() *time.Location { return s.loc }

// ── index helpers (callers hold the lock) ─────────────────────────────────────

func (s *Store) orderIndex(id uuid.UUID) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) billIndex(id uuid.UUID) int {
	for i := range s.bills {
		if s.bills[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) activeBillIndex(table int) int {
	for i := range s.bills {
		if s.bills[i].TableNumber == table && s.bills[i].Status == domain.BillActive {
			return i
		}
	}
	return -1
}

func (s *Store) customerIndex(phone string) int {
	for i := range s.customers {
		if s.customers[i].Phone == phone {
			return i
		}
	}
	return -1
}

func (s *Store) menuIndex(id uuid.UUID) int {
	for i := range s.menu {
		if s.menu[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) waiterCallIndex(id uuid.UUID) int {
	for i := range s.waiterCalls {
		if s.waiterCalls[i].ID == id {
			return i
		}
	}
	return -1
}
