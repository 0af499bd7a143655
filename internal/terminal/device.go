package terminal

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/tablepos/internal/httpx"
	"github.com/georgemunganga/tablepos/internal/localstate"
)

// Device holds values that belong to this station only, such as the table a
// customer phone is seated at. They are never read as order or bill state.
type Device interface {
	SetSession(ctx context.Context, key localstate.SessionKey, value string) error
	Session(ctx context.Context, key localstate.SessionKey) (string, bool, error)
	ClearSession(ctx context.Context, key localstate.SessionKey) error
}

// surfaceKeys are the device values role surfaces may read and write.
var surfaceKeys = map[string]localstate.SessionKey{
	"active-table":   localstate.KeyActiveTable,
	"customer-phone": localstate.KeyCustomerPhone,
}

type deviceValue struct {
	Value string `json:"value"`
}

// WithDevice enables the /device routes.
func (h *Handler) WithDevice(d Device) *Handler {
	h.device = d
	return h
}

func (h *Handler) deviceRoutes(r chi.Router) {
	r.Get("/{key}", h.getDevice)      // GET    /device/{key}
	r.Put("/{key}", h.putDevice)      // PUT    /device/{key}
	r.Delete("/{key}", h.clearDevice) // DELETE /device/{key}
}

func deviceKey(w http.ResponseWriter, r *http.Request) (localstate.SessionKey, bool) {
	key, ok := surfaceKeys[chi.URLParam(r, "key")]
	if !ok {
		httpx.Respond(w, http.StatusNotFound, httpx.ErrorResponse{Error: "unknown device key"})
	}
	return key, ok
}

func (h *Handler) getDevice(w http.ResponseWriter, r *http.Request) {
	key, ok := deviceKey(w, r)
	if !ok {
		return
	}
	v, found, err := h.device.Session(r.Context(), key)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !found {
		httpx.Respond(w, http.StatusNotFound, httpx.ErrorResponse{Error: "not set"})
		return
	}
	httpx.Respond(w, http.StatusOK, deviceValue{Value: v})
}

func (h *Handler) putDevice(w http.ResponseWriter, r *http.Request) {
	key, ok := deviceKey(w, r)
	if !ok {
		return
	}
	var body deviceValue
	if err := httpx.Decode(r, &body); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.device.SetSession(r.Context(), key, body.Value); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, body)
}

func (h *Handler) clearDevice(w http.ResponseWriter, r *http.Request) {
	key, ok := deviceKey(w, r)
	if !ok {
		return
	}
	if err := h.device.ClearSession(r.Context(), key); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusNoContent, nil)
}
