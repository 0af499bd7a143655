// Package kitchen serves the kitchen display: the live preparation queue, its
// depth and wait estimate, and printable order tickets.
package kitchen

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/httpx"
	"github.com/georgemunganga/tablepos/internal/views"
)

// Orders is the read side of the order module.
type Orders interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)
}

// Queue is the kitchen display payload.
type Queue struct {
	Orders []domain.Order `json:"orders"`
	Wait   views.WaitTime `json:"wait"`
}

type Service struct {
	orders Orders
}

func NewService(orders Orders) *Service { return &Service{orders: orders} }

// Queue returns pending, accepted and preparing orders oldest first.
func (s *Service) Queue(ctx context.Context) (Queue, error) {
	all, err := s.orders.ListOrders(ctx)
	if err != nil {
		return Queue{}, err
	}
	q := views.KitchenQueue(all)
	if q == nil {
		q = []domain.Order{}
	}
	return Queue{Orders: q, Wait: views.EstimateWait(all)}, nil
}

func (s *Service) QueueDepth(ctx context.Context) (int, error) {
	q, err := s.Queue(ctx)
	if err != nil {
		return 0, err
	}
	return len(q.Orders), nil
}

func (s *Service) Ticket(ctx context.Context, id uuid.UUID, waiter string) (string, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	return views.KitchenTicket(o, waiter), nil
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/kitchen", func(r chi.Router) {
		r.Get("/queue", h.queue)               // GET /api/v1/kitchen/queue
		r.Get("/queue-depth", h.queueDepth)    // GET /api/v1/kitchen/queue-depth
		r.Get("/orders/{id}/ticket", h.ticket) // GET /api/v1/kitchen/orders/{id}/ticket?waiter=
	})
}

func (h *Handler) queue(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Queue(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, q)
}

func (h *Handler) queueDepth(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.QueueDepth(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]int{"queue_depth": n})
}

func (h *Handler) ticket(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	text, err := h.service.Ticket(r.Context(), id, r.URL.Query().Get("waiter"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}
