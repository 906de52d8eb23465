package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"teatroqr/internal/delivery/http/helpers"
	"teatroqr/internal/domain"
)

// writeServiceError maps domain errors to the JSON envelope. Anything unrecognised is logged
// and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrWorkNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "work not found")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrDuplicateRegistration):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeDuplicateRegistration, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeDuplicateEmail, err.Error())
	case errors.Is(err, domain.ErrAlreadyValidated):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeAlreadyValidated, err.Error())
	case errors.Is(err, domain.ErrTokenMismatch):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeTokenMismatch, err.Error())
	case errors.Is(err, domain.ErrWorkHasAttendees):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeWorkHasAttendees, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}
