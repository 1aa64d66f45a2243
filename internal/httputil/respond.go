package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arvera/comanda-service/internal/apperr"
)

type errorBody struct {
	Error string `json:"error"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func RespondError(w http.ResponseWriter, err error) {
	RespondJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case apperr.IsValidation(err), errors.Is(err, apperr.ErrInvalidReason):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrItemUnavailable),
		errors.Is(err, apperr.ErrInvalidTransition),
		errors.Is(err, apperr.ErrAlreadyInProgress),
		errors.Is(err, apperr.ErrNotReady),
		errors.Is(err, apperr.ErrConcurrentModification):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ActorID resolves the acting staff member from the request. Authentication
// itself lives in the gateway; we only read the identity it forwards.
func ActorID(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}
