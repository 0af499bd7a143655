// Package reports computes dashboard figures from the books of record.
package reports

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/httpx"
	"github.com/georgemunganga/tablepos/internal/views"
)

// OrderReader is served by the order module.
type OrderReader interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// BillReader is served by the billing module.
type BillReader interface {
	ListBills(ctx context.Context) ([]domain.Bill, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// ExpenseReader is served by the expense module.
type ExpenseReader interface {
	List(ctx context.Context) ([]domain.Expense, error)
}

// Books is everything a report reads.
type Books struct {
	Orders   OrderReader
	Bills    BillReader
	Expenses ExpenseReader
}

type Service struct {
	books Books
	loc   *time.Location
	now   func() time.Time
}

// NewService reports days in loc; nil means UTC.
func NewService(books Books, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{books: books, loc: loc, now: time.Now}
}

func (s *Service) Today(ctx context.Context) (views.TodayStats, error) {
	orders, err := s.books.Orders.ListOrders(ctx)
	if err != nil {
		return views.TodayStats{}, err
	}
	bills, err := s.books.Bills.ListBills(ctx)
	if err != nil {
		return views.TodayStats{}, err
	}
	txs, err := s.books.Bills.ListTransactions(ctx)
	if err != nil {
		return views.TodayStats{}, err
	}
	return views.Today(orders, bills, txs, s.now(), s.loc), nil
}

func (s *Service) Sales(ctx context.Context, period views.Period) (views.SalesReport, error) {
	txs, err := s.books.Bills.ListTransactions(ctx)
	if err != nil {
		return views.SalesReport{}, err
	}
	expenses, err := s.books.Expenses.List(ctx)
	if err != nil {
		return views.SalesReport{}, err
	}
	return views.Sales(period, txs, expenses, s.now(), s.loc), nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/today", h.today) // GET /api/v1/reports/today
		r.Get("/sales", h.sales) // GET /api/v1/reports/sales?period=today|week|month
	})
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Today(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, stats)
}

func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	p, err := views.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		httpx.Error(w, fmt.Errorf("%w: %v", domain.ErrInvalid, err))
		return
	}
	rep, err := h.service.Sales(r.Context(), p)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, rep)
}
