package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/georgemunganga/tablepos/internal/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("bill %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: paid", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: paid -> pending", domain.ErrInvalidTransition), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: qty", domain.ErrInvalid), http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type payBody struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash fonepay card"`
	Discount      int    `json:"discount" validate:"gte=0"`
}

func TestDecode_Validation(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"payment_method":"cheque","discount":-1}`))
	var body payBody
	err := Decode(r, &body)
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	w := httptest.NewRecorder()
	Error(w, err)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", w.Code)
	}
	var resp ErrorResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Details) != 2 {
		t.Errorf("details = %v, want 2 entries", resp.Details)
	}
}

func TestDecode_Malformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"payment_method":`))
	var body payBody
	if err := Decode(r, &body); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestError_HidesInternalMessages(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, errors.New("pq: password authentication failed"))
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("internal error leaked: %s", w.Body.String())
	}
}
