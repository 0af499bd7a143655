// Package views holds read-only projections over store collections.
// Nothing here mutates its input.
package views

import (
	"sort"
	"time"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// TodayStats is the counter dashboard summary.
type TodayStats struct {
	Revenue      int `json:"revenue"`
	Orders       int `json:"orders"`
	ActiveOrders int `json:"active_orders"`
	ActiveTables int `json:"active_tables"`
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Today computes revenue and paid-bill count from transactions paid on now's calendar day,
// plus the live count of active orders and of tables holding an active bill.
func Today(orders []domain.Order, bills []domain.Bill, txs []domain.Transaction, now time.Time, loc *time.Location) TodayStats {
	var st TodayStats
	for _, t := range txs {
		if SameDay(t.PaidAt, now, loc) {
			st.Revenue += t.Total
			st.Orders++
		}
	}
	for _, o := range orders {
		if o.Status.Active() {
			st.ActiveOrders++
		}
	}
	tables := make(map[int]struct{})
	for _, b := range ActiveBills(bills) {
		tables[b.TableNumber] = struct{}{}
	}
	st.ActiveTables = len(tables)
	return st
}

// PendingOrders returns orders waiting for the kitchen (pending or accepted), oldest first.
func PendingOrders(orders []domain.Order) []domain.Order {
	var out []domain.Order
	for _, o := range orders {
		if o.Status == domain.StatusPending || o.Status == domain.StatusAccepted {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// KitchenQueue returns orders still being worked on: pending, accepted or preparing, oldest first.
func KitchenQueue(orders []domain.Order) []domain.Order {
	var out []domain.Order
	for _, o := range orders {
		if inQueue(o.Status) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ActiveBills returns unpaid bills ordered by table number.
func ActiveBills(bills []domain.Bill) []domain.Bill {
	var out []domain.Bill
	for _, b := range bills {
		if b.Status == domain.BillActive {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TableNumber < out[j].TableNumber })
	return out
}

// PendingWaiterCalls returns unacknowledged calls, oldest first.
func PendingWaiterCalls(calls []domain.WaiterCall) []domain.WaiterCall {
	var out []domain.WaiterCall
	for _, c := range calls {
		if c.Status == domain.CallPending {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func inQueue(s domain.OrderStatus) bool {
	return s == domain.StatusPending || s == domain.StatusAccepted || s == domain.StatusPreparing
}
