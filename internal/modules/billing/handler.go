package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/tablepos/internal/httpx"
)

// Handler exposes bill and transaction HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/bills", func(r chi.Router) {
		r.Get("/", h.listBills)            // GET    /api/v1/bills
		r.Post("/", h.openBill)            // POST   /api/v1/bills
		r.Get("/{id}", h.getBill)          // GET    /api/v1/bills/{id}
		r.Delete("/{id}", h.voidBill)      // DELETE /api/v1/bills/{id}
		r.Post("/{id}/orders", h.addOrder) // POST   /api/v1/bills/{id}/orders
		r.Post("/{id}/pay", h.payBill)     // POST   /api/v1/bills/{id}/pay
	})
	r.Get("/api/v1/transactions", h.listTransactions) // GET /api/v1/transactions
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.ListBills(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, bills)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	b, err := h.service.GetBill(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, b)
}

func (h *Handler) openBill(w http.ResponseWriter, r *http.Request) {
	var req OpenBillRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	b, err := h.service.OpenBill(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, b)
}

func (h *Handler) addOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	var req AddOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	b, err := h.service.AddOrder(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, b)
}

func (h *Handler) payBill(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	var req PayRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	t, err := h.service.PayBill(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, t)
}

func (h *Handler) voidBill(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	if err := h.service.VoidBill(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusNoContent, nil)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.ListTransactions(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, txs)
}
