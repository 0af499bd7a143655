package customer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/tablepos/internal/httpx"
)

// Handler exposes customer HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Get("/", h.list)                  // GET    /api/v1/customers
		r.Post("/", h.recordVisit)          // POST   /api/v1/customers
		r.Get("/{phone}", h.get)            // GET    /api/v1/customers/{phone}
		r.Patch("/{phone}", h.rename)       // PATCH  /api/v1/customers/{phone}
		r.Delete("/{phone}", h.delete)      // DELETE /api/v1/customers/{phone}
		r.Post("/{phone}/redeem", h.redeem) // POST   /api/v1/customers/{phone}/redeem
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.service.List(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, cs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) recordVisit(w http.ResponseWriter, r *http.Request) {
	var req VisitRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.service.RecordVisit(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.service.Rename(r.Context(), chi.URLParam(r, "phone"), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.service.Redeem(r.Context(), chi.URLParam(r, "phone"), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "phone")); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusNoContent, nil)
}
