// Package settings stores the restaurant configuration singleton.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/httpx"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

var ErrNotConfigured = fmt.Errorf("settings %w", domain.ErrNotFound)

// Repository loads and replaces the singleton row.
type Repository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Put(ctx context.Context, s domain.Settings) error
}

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Get(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM settings WHERE id=1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNotConfigured
	}
	if err != nil {
		return s, err
	}
	return s, json.Unmarshal(raw, &s)
}

func (r *postgresRepo) Put(ctx context.Context, s domain.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, data) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, raw)
	return err
}

// UpdateRequest is the full settings document.
type UpdateRequest struct {
	domain.Settings
	RestaurantName string `json:"restaurant_name" validate:"required"`
	TableCount     int    `json:"table_count" validate:"gte=1,lte=500"`
}

type Service struct {
	repo   Repository
	notify *syncchan.Notifier
}

func NewService(repo Repository, notify *syncchan.Notifier) *Service {
	return &Service{repo: repo, notify: notify}
}

// Get returns the stored settings or ErrNotConfigured.
func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	return s.repo.Get(ctx)
}

// Put replaces the settings document.
func (s *Service) Put(ctx context.Context, req UpdateRequest) (domain.Settings, error) {
	out := req.Settings
	out.RestaurantName = req.RestaurantName
	out.TableCount = req.TableCount
	if err := s.repo.Put(ctx, out); err != nil {
		return domain.Settings{}, err
	}
	s.notify.Notify(ctx, syncchan.EventSettingsUpdate)
	return out, nil
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

type Handler struct {
	service   *Service
	adminOnly func(http.Handler) http.Handler
}

func NewHandler(service *Service, adminOnly func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, adminOnly: adminOnly}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/settings", h.get)                   // GET /api/v1/settings
	r.With(h.adminOnly).Put("/api/v1/settings", h.put) // PUT /api/v1/settings
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, s)
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	s, err := h.service.Put(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, s)
}
