// Package terminal ties one station together: role surfaces call Session, which
// mutates the local store first and then persists through the backend gateway.
// Persistence failures are logged and reported, never rolled back; the next
// reconciliation brings the store back in line with the backend.
package terminal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/gateway"
	"github.com/georgemunganga/tablepos/internal/logger"
	"github.com/georgemunganga/tablepos/internal/reconcile"
	"github.com/georgemunganga/tablepos/internal/store"
	"github.com/georgemunganga/tablepos/internal/views"
)

// ErrItemUnavailable is returned when a cart line names a missing or hidden menu item.
var ErrItemUnavailable = fmt.Errorf("%w: menu item unavailable", domain.ErrInvalid)

// Loader is the part of the reconciler the session drives.
type Loader interface {
	InitialLoad(ctx context.Context) (reconcile.LoadReport, error)
	Retry(ctx context.Context) (reconcile.LoadReport, error)
	Report() reconcile.LoadReport
	Request(f reconcile.Family)
}

// Session is the operation surface of one terminal.
type Session struct {
	name   string
	st     *store.Store
	api    *gateway.Client
	loader Loader
	log    *logger.Logger
}

func NewSession(name string, st *store.Store, api *gateway.Client, loader Loader, log *logger.Logger) *Session {
	return &Session{name: name, st: st, api: api, loader: loader, log: log.WithComponent("terminal")}
}

// Store exposes the underlying store for read-only consumers.
func (s *Session) Store() *store.Store { return s.st }

// Result wraps a local outcome with whether the backend accepted it.
type Result[T any] struct {
	Data      T      `json:"data"`
	Synced    bool   `json:"synced"`
	SyncError string `json:"sync_error,omitempty"`
}

func (s *Session) synced(op string, err error) (bool, string) {
	if err == nil {
		return true, ""
	}
	s.log.Warn("backend persist failed", "op", op, "terminal", s.name, "error", err)
	return false, err.Error()
}

// CartItem is one line of a cart, priced from the local menu.
type CartItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Qty        int       `json:"qty" validate:"gte=1"`
}

// PlaceOrderRequest is a customer or counter order for a table.
type PlaceOrderRequest struct {
	TableNumber   int        `json:"table_number" validate:"gte=1"`
	CustomerPhone string     `json:"customer_phone"`
	CustomerName  string     `json:"customer_name"`
	Items         []CartItem `json:"items" validate:"required,min=1,dive"`
	Notes         string     `json:"notes"`
}

// PlacedOrder is what the surface shows after placing an order.
type PlacedOrder struct {
	Order  domain.Order   `json:"order"`
	BillID uuid.UUID      `json:"bill_id"`
	Wait   views.WaitTime `json:"wait"`
	KOT    string         `json:"kot,omitempty"`
}

// PlaceOrder records the visit, adds the order, joins or opens the table bill and
// appends the order to it.
func (s *Session) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (Result[PlacedOrder], error) {
	items, err := s.priceCart(req.Items)
	if err != nil {
		return Result[PlacedOrder]{}, err
	}
	wait := views.WaitForNewOrder(s.st.Orders(), cartLines(items))
	o, err := s.st.AddOrder(store.OrderDraft{
		TableNumber:   req.TableNumber,
		CustomerPhone: req.CustomerPhone,
		Items:         items,
		Notes:         req.Notes,
	})
	if err != nil {
		return Result[PlacedOrder]{}, err
	}
	if req.CustomerPhone != "" {
		if _, err := s.st.AddOrUpdateCustomer(req.CustomerPhone, req.CustomerName); err != nil {
			return Result[PlacedOrder]{}, err
		}
	}
	billID, err := s.st.CreateBill(req.TableNumber, req.CustomerPhone)
	if err != nil {
		return Result[PlacedOrder]{}, err
	}
	if err := s.st.AddOrderToBill(billID, o); err != nil {
		return Result[PlacedOrder]{}, err
	}

	out := PlacedOrder{Order: o, BillID: billID, Wait: wait}
	if s.st.Settings().KOTPrintingEnabled {
		out.KOT = views.KitchenTicket(o, s.name)
	}

	res := Result[PlacedOrder]{Data: out}
	res.Synced, res.SyncError = s.synced("place_order", s.persistOrder(ctx, req, o, billID))
	return res, nil
}

func (s *Session) persistOrder(ctx context.Context, req PlaceOrderRequest, o domain.Order, billID uuid.UUID) error {
	if req.CustomerPhone != "" {
		if _, err := s.api.Customers.RecordVisit(ctx, req.CustomerPhone, req.CustomerName); err != nil {
			return fmt.Errorf("record visit: %w", err)
		}
	}
	if _, err := s.api.Orders.Create(ctx, store.OrderDraft{
		ID:            o.ID,
		TableNumber:   o.TableNumber,
		CustomerPhone: o.CustomerPhone,
		Items:         o.Items,
		Notes:         o.Notes,
	}); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	// The backend may already hold a different active bill for this table; use its id.
	bill, err := s.api.Bills.Open(ctx, gateway.OpenBillRequest{ID: billID, TableNumber: o.TableNumber, CustomerPhone: o.CustomerPhone})
	if err != nil {
		return fmt.Errorf("open bill: %w", err)
	}
	if _, err := s.api.Bills.AddOrder(ctx, bill.ID, o.ID); err != nil {
		return fmt.Errorf("add order to bill: %w", err)
	}
	if bill.ID != billID {
		// The local bill is a duplicate of the backend's; refetch to settle on one.
		s.loader.Request(reconcile.FamilyBills)
	}
	return nil
}

func (s *Session) priceCart(cart []CartItem) ([]domain.OrderItem, error) {
	menu := make(map[uuid.UUID]domain.MenuItem)
	for _, m := range s.st.Menu() {
		menu[m.ID] = m
	}
	items := make([]domain.OrderItem, 0, len(cart))
	for _, c := range cart {
		m, ok := menu[c.MenuItemID]
		if !ok || !m.Available {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, c.MenuItemID)
		}
		items = append(items, domain.OrderItem{MenuItemID: m.ID, Name: m.Name, Qty: c.Qty, Price: m.Price})
	}
	return items, nil
}

func cartLines(items []domain.OrderItem) []views.CartLine {
	out := make([]views.CartLine, len(items))
	for i, it := range items {
		out[i] = views.CartLine{Name: it.Name, Qty: it.Qty}
	}
	return out
}

// UpdateOrderStatus moves one order through the status machine.
func (s *Session) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (Result[domain.Order], error) {
	o, err := s.st.UpdateOrderStatus(id, status)
	if err != nil {
		return Result[domain.Order]{}, err
	}
	res := Result[domain.Order]{Data: o}
	_, perr := s.api.Orders.UpdateStatus(ctx, id, status)
	res.Synced, res.SyncError = s.synced("update_order_status", perr)
	return res, nil
}

// PayBill settles a bill locally and on the backend.
func (s *Session) PayBill(ctx context.Context, billID uuid.UUID, method domain.PaymentMethod, discount int) (Result[domain.Transaction], error) {
	tx, err := s.st.PayBill(billID, method, discount)
	if err != nil {
		return Result[domain.Transaction]{}, err
	}
	res := Result[domain.Transaction]{Data: tx}
	_, perr := s.api.Bills.Pay(ctx, billID, method, discount)
	res.Synced, res.SyncError = s.synced("pay_bill", perr)
	return res, nil
}

// RedeemPoints debits loyalty points, floored at zero.
func (s *Session) RedeemPoints(ctx context.Context, phone string, points int) (Result[domain.Customer], error) {
	c, err := s.st.RedeemLoyaltyPoints(phone, points)
	if err != nil {
		return Result[domain.Customer]{}, err
	}
	res := Result[domain.Customer]{Data: c}
	_, perr := s.api.Customers.Redeem(ctx, phone, points)
	res.Synced, res.SyncError = s.synced("redeem_points", perr)
	return res, nil
}

// CallWaiter raises a call for a table.
func (s *Session) CallWaiter(ctx context.Context, table int, phone string) (Result[domain.WaiterCall], error) {
	call, err := s.st.CallWaiter(table, phone)
	if err != nil {
		return Result[domain.WaiterCall]{}, err
	}
	res := Result[domain.WaiterCall]{Data: call}
	remote, perr := s.api.WaiterCalls.Create(ctx, call)
	if perr == nil && remote.ID != uuid.Nil && remote.ID != call.ID {
		// The backend already had a pending call for the table.
		if err := s.st.AdoptWaiterCall(call.ID, remote); err != nil {
			s.log.Warn("adopt waiter call failed", "terminal", s.name, "error", err)
		} else {
			res.Data = remote
		}
	}
	res.Synced, res.SyncError = s.synced("call_waiter", perr)
	return res, nil
}

// AcknowledgeWaiterCall marks a call handled.
func (s *Session) AcknowledgeWaiterCall(ctx context.Context, id uuid.UUID) (Result[domain.WaiterCall], error) {
	call, err := s.st.AcknowledgeWaiterCall(id)
	if err != nil {
		return Result[domain.WaiterCall]{}, err
	}
	res := Result[domain.WaiterCall]{Data: call}
	_, perr := s.api.WaiterCalls.Acknowledge(ctx, id)
	res.Synced, res.SyncError = s.synced("acknowledge_waiter_call", perr)
	return res, nil
}

// ToggleAvailability hides or shows a menu item.
func (s *Session) ToggleAvailability(ctx context.Context, id uuid.UUID) (Result[domain.MenuItem], error) {
	m, err := s.st.ToggleAvailability(id)
	if err != nil {
		return Result[domain.MenuItem]{}, err
	}
	res := Result[domain.MenuItem]{Data: m}
	_, perr := s.api.Menu.Update(ctx, id.String(), map[string]bool{"available": m.Available})
	res.Synced, res.SyncError = s.synced("toggle_availability", perr)
	return res, nil
}

// AddExpense records an expense.
func (s *Session) AddExpense(ctx context.Context, e domain.Expense) (Result[domain.Expense], error) {
	if e.CreatedBy == "" {
		e.CreatedBy = s.name
	}
	saved, err := s.st.AddExpense(e)
	if err != nil {
		return Result[domain.Expense]{}, err
	}
	res := Result[domain.Expense]{Data: saved}
	_, perr := s.api.Expenses.Create(ctx, saved)
	res.Synced, res.SyncError = s.synced("add_expense", perr)
	return res, nil
}

// Reload clears the load latch and loads everything again.
func (s *Session) Reload(ctx context.Context) (reconcile.LoadReport, error) {
	return s.loader.Retry(ctx)
}

// LoadReport returns the latest bulk-load outcome.
func (s *Session) LoadReport() reconcile.LoadReport {
	return s.loader.Report()
}

// ── views ─────────────────────────────────────────────────────────────────────

// Queue is the kitchen display model.
type Queue struct {
	Pending     []domain.Order      `json:"pending"`
	InKitchen   []domain.Order      `json:"in_kitchen"`
	ActiveBills []domain.Bill       `json:"active_bills"`
	WaiterCalls []domain.WaiterCall `json:"waiter_calls"`
}

func (s *Session) Today() views.TodayStats { return s.st.GetTodayStats() }

func (s *Session) Queue() Queue {
	return Queue{
		Pending:     s.st.GetPendingOrders(),
		InKitchen:   views.KitchenQueue(s.st.Orders()),
		ActiveBills: s.st.GetActiveBills(),
		WaiterCalls: s.st.PendingWaiterCalls(),
	}
}

func (s *Session) WaitTime() views.WaitTime { return views.EstimateWait(s.st.Orders()) }

func (s *Session) Report(p views.Period) views.SalesReport {
	return views.Sales(p, s.st.Transactions(), s.st.Expenses(), s.st.Now(), s.st.Location())
}
