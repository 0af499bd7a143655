package staff

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/logger"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

type memRepo struct{ byID map[uuid.UUID]domain.Staff }

func (m *memRepo) List(context.Context) ([]domain.Staff, error) {
	out := []domain.Staff{}
	for _, s := range m.byID {
		out = append(out, s)
	}
	return out, nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Staff, error) {
	s, ok := m.byID[id]
	if !ok {
		return s, ErrStaffNotFound
	}
	return s, nil
}

func (m *memRepo) GetByUsername(_ context.Context, username string) (domain.Staff, error) {
	for _, s := range m.byID {
		if s.Username == username {
			return s, nil
		}
	}
	return domain.Staff{}, ErrStaffNotFound
}

func (m *memRepo) Create(ctx context.Context, s domain.Staff) error {
	if _, err := m.GetByUsername(ctx, s.Username); err == nil {
		return ErrUsernameTaken
	}
	m.byID[s.ID] = s
	return nil
}

func (m *memRepo) Update(_ context.Context, s domain.Staff) error {
	m.byID[s.ID] = s
	return nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

func (m *memRepo) CountByRole(_ context.Context, role domain.StaffRole) (int, error) {
	n := 0
	for _, s := range m.byID {
		if s.Role == role {
			n++
		}
	}
	return n, nil
}

func newTestService() (*service, *memRepo, *syncchan.Recorder) {
	repo := &memRepo{byID: map[uuid.UUID]domain.Staff{}}
	rec := &syncchan.Recorder{}
	svc := NewService(repo, syncchan.NewNotifier(rec, logger.Nop())).(*service)
	svc.cost = bcrypt.MinCost
	return svc, repo, rec
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc, _, rec := newTestService()
	ctx := context.Background()

	st, err := svc.Create(ctx, CreateRequest{Username: " Counter1 ", Password: "secret1", Role: domain.RoleCounter})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.Username != "counter1" || st.PasswordHash == "secret1" {
		t.Errorf("unexpected account %+v", st)
	}
	if _, err := svc.Create(ctx, CreateRequest{Username: "counter1", Password: "other12", Role: domain.RoleKitchen}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate username: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "COUNTER1", "secret1"); err != nil {
		t.Errorf("valid login failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "counter1", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: %v", err)
	}
	if n := len(rec.Events()); n != 1 {
		t.Errorf("events = %d, want 1", n)
	}
}

func TestPasswordHashNeverSerialized(t *testing.T) {
	svc, _, _ := newTestService()
	st, err := svc.Create(context.Background(), CreateRequest{Username: "kitchen", Password: "secret1", Role: domain.RoleKitchen})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := json.Marshal(st)
	if strings.Contains(string(b), "password") || strings.Contains(string(b), st.PasswordHash) {
		t.Errorf("hash leaked: %s", b)
	}
}

func TestLastAdminIsProtected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin", "admin123")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin = %v, %v", created, err)
	}
	if again, _ := svc.EnsureAdmin(ctx, "admin2", "admin123"); again {
		t.Error("EnsureAdmin created a second admin")
	}
	admin, _ := svc.Authenticate(ctx, "admin", "admin123")

	if err := svc.Delete(ctx, admin.ID); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("delete last admin: %v", err)
	}
	demote := domain.RoleCounter
	if _, err := svc.Update(ctx, admin.ID, UpdateRequest{Role: &demote}); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("demote last admin: %v", err)
	}
}

func TestHandler_AdminOnlyWrites(t *testing.T) {
	svc, _, _ := newTestService()
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	r := chiRouter(NewHandler(svc, deny))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/staff", strings.NewReader(`{"username":"abc","password":"secret1","role":"counter"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("create without admin = %d, want 403", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/staff", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("list = %d, want 200", w.Code)
	}
}

func chiRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}
