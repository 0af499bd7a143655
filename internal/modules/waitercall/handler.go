package waitercall

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/tablepos/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/waiter-calls", func(r chi.Router) {
		r.Get("/", h.list)                         // GET    /api/v1/waiter-calls?pending=true
		r.Post("/", h.call)                        // POST   /api/v1/waiter-calls
		r.Post("/{id}/acknowledge", h.acknowledge) // POST   /api/v1/waiter-calls/{id}/acknowledge
		r.Delete("/{id}", h.delete)                // DELETE /api/v1/waiter-calls/{id}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	calls, err := h.service.List(r.Context(), r.URL.Query().Get("pending") == "true")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, calls)
}

func (h *Handler) call(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.service.Call(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, c)
}

func (h *Handler) acknowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	c, err := h.service.Acknowledge(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusNoContent, nil)
}
