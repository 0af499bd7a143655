package terminal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/httpx"
	"github.com/georgemunganga/tablepos/internal/views"
)

// Handler exposes the session to local role surfaces.
type Handler struct {
	session *Session
	device  Device
}

func NewHandler(session *Session) *Handler { return &Handler{session: session} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/views", func(r chi.Router) {
		r.Get("/today", h.today)        // GET /views/today
		r.Get("/queue", h.queue)        // GET /views/queue
		r.Get("/wait-time", h.waitTime) // GET /views/wait-time
		r.Get("/report", h.report)      // GET /views/report?period=week
		r.Get("/menu", h.menu)          // GET /views/menu
	})
	r.Get("/load-report", h.loadReport) // GET  /load-report
	r.Post("/reload", h.reload)         // POST /reload

	r.Post("/orders", h.placeOrder)                             // POST  /orders
	r.Patch("/orders/{id}/status", h.updateStatus)              // PATCH /orders/{id}/status
	r.Post("/bills/{id}/pay", h.payBill)                        // POST  /bills/{id}/pay
	r.Post("/customers/{phone}/redeem", h.redeem)               // POST  /customers/{phone}/redeem
	r.Post("/waiter-calls", h.callWaiter)                       // POST  /waiter-calls
	r.Post("/waiter-calls/{id}/acknowledge", h.acknowledgeCall) // POST  /waiter-calls/{id}/acknowledge
	r.Post("/menu/{id}/toggle", h.toggleAvailability)           // POST  /menu/{id}/toggle
	r.Post("/expenses", h.addExpense)                           // POST  /expenses

	if h.device != nil {
		r.Route("/device", h.deviceRoutes)
	}
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, http.StatusOK, h.session.Today())
}

func (h *Handler) queue(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, http.StatusOK, h.session.Queue())
}

func (h *Handler) waitTime(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, http.StatusOK, h.session.WaitTime())
}

func (h *Handler) menu(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, http.StatusOK, h.session.Store().AvailableMenu())
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	p, err := views.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		httpx.Respond(w, http.StatusBadRequest, httpx.ErrorResponse{Error: err.Error()})
		return
	}
	httpx.Respond(w, http.StatusOK, h.session.Report(p))
}

func (h *Handler) loadReport(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, http.StatusOK, h.session.LoadReport())
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	rep, err := h.session.Reload(r.Context())
	if err != nil {
		httpx.Respond(w, http.StatusServiceUnavailable, rep)
		return
	}
	httpx.Respond(w, http.StatusOK, rep)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.session.PlaceOrder(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, res)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.session.UpdateOrderStatus(r.Context(), id, status)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

type payRequest struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method" validate:"required"`
	Discount      int                  `json:"discount" validate:"gte=0"`
}

func (h *Handler) payBill(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	var req payRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.session.PayBill(r.Context(), id, req.PaymentMethod, req.Discount)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

type redeemRequest struct {
	Points int `json:"points" validate:"gte=1"`
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.session.RedeemPoints(r.Context(), chi.URLParam(r, "phone"), req.Points)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

type callRequest struct {
	TableNumber   int    `json:"table_number" validate:"gte=1"`
	CustomerPhone string `json:"customer_phone"`
}

func (h *Handler) callWaiter(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.session.CallWaiter(r.Context(), req.TableNumber, req.CustomerPhone)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, res)
}

func (h *Handler) acknowledgeCall(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	res, err := h.session.AcknowledgeWaiterCall(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

func (h *Handler) toggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	res, err := h.session.ToggleAvailability(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, res)
}

type expenseRequest struct {
	Amount      int                    `json:"amount" validate:"gte=1"`
	Description string                 `json:"description" validate:"required"`
	Category    domain.ExpenseCategory `json:"category"`
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.session.AddExpense(r.Context(), domain.Expense{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, res)
}
