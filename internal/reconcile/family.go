package reconcile

import (
	"context"
	"fmt"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/store"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

// Family is one independently fetched collection.
type Family string

const (
	FamilyMenu         Family = "menu"
	FamilyCategories   Family = "categories"
	FamilyStaff        Family = "staff"
	FamilyOrders       Family = "orders"
	FamilyBills        Family = "bills"
	FamilyTransactions Family = "transactions"
	FamilyCustomers    Family = "customers"
	FamilyWaiterCalls  Family = "waiter_calls"
	FamilySettings     Family = "settings"
	FamilyExpenses     Family = "expenses"
)

// Families is every collection loaded at startup, in load order.
var Families = []Family{
	FamilyMenu,
	FamilyCategories,
	FamilyStaff,
	FamilyOrders,
	FamilyBills,
	FamilyTransactions,
	FamilyCustomers,
	FamilyWaiterCalls,
	FamilySettings,
	FamilyExpenses,
}

// eventFamilies maps a sync notification to the collections it invalidates.
var eventFamilies = map[string][]Family{
	syncchan.EventMenuUpdate:       {FamilyMenu},
	syncchan.EventCategoriesUpdate: {FamilyCategories},
	syncchan.EventStaffUpdate:      {FamilyStaff},
	syncchan.EventOrderUpdate:      {FamilyOrders},
	syncchan.EventBillUpdate:       {FamilyBills, FamilyTransactions, FamilyOrders},
	syncchan.EventCustomerUpdate:   {FamilyCustomers},
	syncchan.EventWaiterCall:       {FamilyWaiterCalls},
	syncchan.EventSettingsUpdate:   {FamilySettings},
	syncchan.EventExpenseUpdate:    {FamilyExpenses},
}

// FamiliesFor returns the collections to refetch for an event type.
func FamiliesFor(eventType string) []Family {
	return eventFamilies[eventType]
}

// Source is the backend read surface the reconciler needs.
type Source interface {
	CheckHealth(ctx context.Context) error
	FetchMenu(ctx context.Context) ([]domain.MenuItem, error)
	FetchCategories(ctx context.Context) ([]domain.Category, error)
	FetchStaff(ctx context.Context) ([]domain.Staff, error)
	FetchOrders(ctx context.Context) ([]domain.Order, error)
	FetchBills(ctx context.Context) ([]domain.Bill, error)
	FetchTransactions(ctx context.Context) ([]domain.Transaction, error)
	FetchCustomers(ctx context.Context) ([]domain.Customer, error)
	FetchWaiterCalls(ctx context.Context) ([]domain.WaiterCall, error)
	FetchSettings(ctx context.Context) (domain.Settings, error)
	FetchExpenses(ctx context.Context) ([]domain.Expense, error)
}

// apply fetches one family and replaces it in st. It returns the number of records.
func apply(ctx context.Context, src Source, st *store.Store, f Family) (int, error) {
	switch f {
	case FamilyMenu:
		return replaceWith(ctx, src.FetchMenu, st.SetMenu)
	case FamilyCategories:
		return replaceWith(ctx, src.FetchCategories, st.SetCategories)
	case FamilyStaff:
		return replaceWith(ctx, src.FetchStaff, st.SetStaff)
	case FamilyOrders:
		return replaceWith(ctx, src.FetchOrders, st.SetOrders)
	case FamilyBills:
		return replaceWith(ctx, src.FetchBills, st.SetBills)
	case FamilyTransactions:
		return replaceWith(ctx, src.FetchTransactions, st.SetTransactions)
	case FamilyCustomers:
		return replaceWith(ctx, src.FetchCustomers, st.SetCustomers)
	case FamilyWaiterCalls:
		return replaceWith(ctx, src.FetchWaiterCalls, st.SetWaiterCalls)
	case FamilyExpenses:
		return replaceWith(ctx, src.FetchExpenses, st.SetExpenses)
	case FamilySettings:
		s, err := src.FetchSettings(ctx)
		if err != nil {
			return 0, err
		}
		st.SetSettings(s)
		return 1, nil
	}
	return 0, fmt.Errorf("unknown family %q", f)
}

func replaceWith[T any](ctx context.Context, fetch func(context.Context) ([]T, error), set func([]T) bool) (int, error) {
	items, err := fetch(ctx)
	if err != nil {
		return 0, err
	}
	set(items)
	return len(items), nil
}
