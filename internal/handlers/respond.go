// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avolio/stockbook-be/internal/core/domain"
)

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, errorResponse{Error: message})
}

// respondDomainError maps domain sentinel errors onto HTTP status codes.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, logger, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidUnit),
		errors.Is(err, domain.ErrNonPositiveQuantity),
		errors.Is(err, domain.ErrNegativeCost):
		respondError(w, logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrDuplicateExternalID),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrConflict):
		respondError(w, logger, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(w, logger, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, logger, http.StatusInternalServerError, "internal server error")
	}
}
