package utils

import (
	"errors"
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/logger"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteValidationError renders field errors as 400.
func WriteValidationError(w http.ResponseWriter, verr *domain.ValidationError) {
	WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": verr.Fields,
	})
}

// WriteDomainError maps usecase errors onto status codes. Unknown errors are
// logged and hidden behind a 500.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrVariantNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrCartEmpty), errors.Is(err, domain.ErrProductInactive):
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// DecodeJSON reads a JSON request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
