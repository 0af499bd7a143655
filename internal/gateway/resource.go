package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Resource is the CRUD surface shared by every entity family.
type Resource[T any] struct {
	c    *Client
	path string
}

func newResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) GetAll(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Create(ctx context.Context, entity any) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPost, r.path, entity, &out)
	return out, err
}

// Update sends a partial document; the backend merges it.
func (r *Resource[T]) Update(ctx context.Context, id string, partial any) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPatch, r.path+"/"+url.PathEscape(id), partial, &out)
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil)
}

// ── family-specific verbs ─────────────────────────────────────────────────────

type OrdersAPI struct{ *Resource[domain.Order] }

// UpdateStatus moves an order through the status machine on the backend.
func (a *OrdersAPI) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	var out domain.Order
	body := map[string]domain.OrderStatus{"status": status}
	err := a.c.do(ctx, http.MethodPatch, a.path+"/"+id.String()+"/status", body, &out)
	return out, err
}

type BillsAPI struct{ *Resource[domain.Bill] }

// OpenBillRequest opens or joins the active bill of a table.
type OpenBillRequest struct {
	ID            uuid.UUID `json:"id"` // uuid.Nil lets the backend choose
	TableNumber   int       `json:"table_number"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
}

// PayRequest settles a bill.
type PayRequest struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Discount      int                  `json:"discount"`
}

func (a *BillsAPI) Open(ctx context.Context, req OpenBillRequest) (domain.Bill, error) {
	var out domain.Bill
	err := a.c.do(ctx, http.MethodPost, a.path, req, &out)
	return out, err
}

func (a *BillsAPI) AddOrder(ctx context.Context, billID, orderID uuid.UUID) (domain.Bill, error) {
	var out domain.Bill
	body := map[string]uuid.UUID{"order_id": orderID}
	err := a.c.do(ctx, http.MethodPost, a.path+"/"+billID.String()+"/orders", body, &out)
	return out, err
}

func (a *BillsAPI) Pay(ctx context.Context, billID uuid.UUID, method domain.PaymentMethod, discount int) (domain.Transaction, error) {
	var out domain.Transaction
	err := a.c.do(ctx, http.MethodPost, a.path+"/"+billID.String()+"/pay", PayRequest{PaymentMethod: method, Discount: discount}, &out)
	return out, err
}

type CustomersAPI struct{ *Resource[domain.Customer] }

// GetByPhone returns the customer, or ok=false when the backend has no such phone.
func (a *CustomersAPI) GetByPhone(ctx context.Context, phone string) (domain.Customer, bool, error) {
	var out domain.Customer
	err := a.c.do(ctx, http.MethodGet, a.path+"/"+url.PathEscape(phone), nil, &out)
	if IsNotFound(err) {
		return domain.Customer{}, false, nil
	}
	if err != nil {
		return domain.Customer{}, false, err
	}
	return out, true, nil
}

// RecordVisit upserts the customer and bumps the visit count.
func (a *CustomersAPI) RecordVisit(ctx context.Context, phone, name string) (domain.Customer, error) {
	var out domain.Customer
	body := map[string]string{"phone": phone, "name": name}
	err := a.c.do(ctx, http.MethodPost, a.path, body, &out)
	return out, err
}

func (a *CustomersAPI) Redeem(ctx context.Context, phone string, points int) (domain.Customer, error) {
	var out domain.Customer
	body := map[string]int{"points": points}
	err := a.c.do(ctx, http.MethodPost, a.path+"/"+url.PathEscape(phone)+"/redeem", body, &out)
	return out, err
}

type WaiterCallsAPI struct{ *Resource[domain.WaiterCall] }

func (a *WaiterCallsAPI) Acknowledge(ctx context.Context, id uuid.UUID) (domain.WaiterCall, error) {
	var out domain.WaiterCall
	err := a.c.do(ctx, http.MethodPost, a.path+"/"+id.String()+"/acknowledge", nil, &out)
	return out, err
}

// SettingsAPI reads and writes the settings singleton.
type SettingsAPI struct{ c *Client }

func (a *SettingsAPI) Get(ctx context.Context) (domain.Settings, error) {
	var out domain.Settings
	if err := a.c.do(ctx, http.MethodGet, "/settings", nil, &out); err != nil {
		return domain.Settings{}, err
	}
	return out, nil
}

func (a *SettingsAPI) Update(ctx context.Context, s domain.Settings) (domain.Settings, error) {
	var out domain.Settings
	err := a.c.do(ctx, http.MethodPut, "/settings", s, &out)
	return out, err
}
