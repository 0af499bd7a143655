package staff

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/tablepos/internal/httpx"
)

type Handler struct {
	service   Service
	adminOnly func(http.Handler) http.Handler
}

// NewHandler wires the staff endpoints. Writes go through adminOnly.
func NewHandler(service Service, adminOnly func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, adminOnly: adminOnly}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/staff", func(r chi.Router) {
		r.Get("/", h.list)    // GET    /api/v1/staff
		r.Get("/{id}", h.get) // GET    /api/v1/staff/{id}
		r.Group(func(r chi.Router) {
			r.Use(h.adminOnly)
			r.Post("/", h.create)       // POST   /api/v1/staff
			r.Patch("/{id}", h.update)  // PATCH  /api/v1/staff/{id}
			r.Delete("/{id}", h.delete) // DELETE /api/v1/staff/{id}
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	staff, err := h.service.List(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, staff)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	st, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	st, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, st)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	st, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
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
