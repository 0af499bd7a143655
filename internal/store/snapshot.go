package store

import (
	"github.com/georgemunganga/tablepos/internal/domain"
)

// Snapshot is a point-in-time copy of every collection the store owns.
// It is what gets written to local persistence and what views read.
type Snapshot struct {
	Version      uint64               `json:"version"`
	Menu         []domain.MenuItem    `json:"menu"`
	Categories   []domain.Category    `json:"categories"`
	Orders       []domain.Order       `json:"orders"`
	Bills        []domain.Bill        `json:"bills"`
	Transactions []domain.Transaction `json:"transactions"`
	Customers    []domain.Customer    `json:"customers"`
	Staff        []domain.Staff       `json:"staff"`
	Settings     domain.Settings      `json:"settings"`
	Expenses     []domain.Expense     `json:"expenses"`
	WaiterCalls  []domain.WaiterCall  `json:"waiter_calls"`
}

// ── deep copies ───────────────────────────────────────────────────────────────

func cloneSlice[T any](in []T, fn func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		if fn != nil {
			v = fn(v)
		}
		out[i] = v
	}
	return out
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = cloneSlice(o.Items, nil)
	return o
}

func cloneBill(b domain.Bill) domain.Bill {
	b.CustomerPhones = cloneSlice(b.CustomerPhones, nil)
	b.Orders = cloneSlice(b.Orders, cloneOrder)
	if b.PaidAt != nil {
		t := *b.PaidAt
		b.PaidAt = &t
	}
	return b
}

func cloneTransaction(t domain.Transaction) domain.Transaction {
	t.CustomerPhones = cloneSlice(t.CustomerPhones, nil)
	t.Items = cloneSlice(t.Items, nil)
	return t
}

func cloneWaiterCall(c domain.WaiterCall) domain.WaiterCall {
	if c.AcknowledgedAt != nil {
		t := *c.AcknowledgedAt
		c.AcknowledgedAt = &t
	}
	return c
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Version:      s.version,
		Menu:         cloneSlice(s.menu, nil),
		Categories:   cloneSlice(s.categories, nil),
		Orders:       cloneSlice(s.orders, cloneOrder),
		Bills:        cloneSlice(s.bills, cloneBill),
		Transactions: cloneSlice(s.transactions, cloneTransaction),
		Customers:    cloneSlice(s.customers, nil),
		Staff:        cloneSlice(s.staff, nil),
		Settings:     s.settings,
		Expenses:     cloneSlice(s.expenses, nil),
		WaiterCalls:  cloneSlice(s.waiterCalls, cloneWaiterCall),
	}
}
