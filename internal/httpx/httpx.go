// Package httpx holds the JSON response, error mapping and request decoding shared
// by the API modules and the terminal surface.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Respond writes body as JSON with status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil || status == http.StatusNoContent {
		return
	}
	json.NewEncoder(w).Encode(body)
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalid), errors.Is(err, domain.ErrUnknownStatus):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error writes err with the status StatusFor picks. Internal errors are not echoed.
func Error(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	var details []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	Respond(w, status, ErrorResponse{Error: msg, Details: details})
}

// Decode reads a JSON body into dst and runs its `validate` tags.
func Decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed body: %v", domain.ErrInvalid, err)
	}
	return Validate(dst)
}

// Validate runs struct validation and wraps failures as invalid input.
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return invalid{verrs}
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	return nil
}

// invalid carries validator errors while matching domain.ErrInvalid.
type invalid struct{ errs validator.ValidationErrors }

func (e invalid) Error() string {
	fields := make([]string, len(e.errs))
	for i, fe := range e.errs {
		fields[i] = fe.Field()
	}
	return "invalid input: " + strings.Join(fields, ", ")
}

func (e invalid) Is(target error) bool { return target == domain.ErrInvalid }

func (e invalid) As(target interface{}) bool {
	if p, ok := target.(*validator.ValidationErrors); ok {
		*p = e.errs
		return true
	}
	return false
}

// PathID parses the {id} URL parameter, answering 400 when it is not a UUID.
func PathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Respond(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
