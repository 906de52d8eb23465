package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"teatroqr/internal/delivery/http/helpers"
	"teatroqr/internal/domain"
	"teatroqr/internal/metrics"
)

// ValidateQRRequest is the request body for POST /validar_qr.
type ValidateQRRequest struct {
	Email  string `json:"email"`
	QRCode string `json:"qr_code"`
}

// Validate implements Validator.
func (req ValidateQRRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, "email is required")
	}
	if strings.TrimSpace(req.QRCode) == "" {
		errs = append(errs, "qr_code is required")
	}
	return errs
}

// ValidateQRResponse is the data payload for a successful validation.
type ValidateQRResponse struct {
	Message  string           `json:"message"`
	Attendee *domain.Attendee `json:"attendee"`
}

// ValidateQRSuccessResponse is the success envelope for POST /validar_qr.
type ValidateQRSuccessResponse struct {
	Data  ValidateQRResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type ValidationController struct {
	Logger  *slog.Logger
	Service domain.ValidationService
}

func NewValidationController(logger *slog.Logger, svc domain.ValidationService) *ValidationController {
	return &ValidationController{Logger: logger, Service: svc}
}

// ValidateQR godoc
// @Summary Validate a QR code at the door
// @Description Succeeds once per attendee. Later attempts fail with already_validated.
// @Tags validacion
// @Accept json
// @Produce json
// @Param body body ValidateQRRequest true "Email and token read from the QR link"
// @Success 200 {object} controllers.ValidateQRSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, already_validated, token_mismatch"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /validar_qr [post]
func (c *ValidationController) ValidateQR(w http.ResponseWriter, r *http.Request) {
	var req ValidateQRRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
		return
	}
	attendee, err := c.Service.Validate(r.Context(), req.Email, req.QRCode)
	if err != nil {
		metrics.ValidationsTotal.WithLabelValues(validationOutcome(err)).Inc()
		writeServiceError(w, r, c.Logger, err)
		return
	}
	metrics.ValidationsTotal.WithLabelValues("ok").Inc()
	helpers.WriteJSONSuccess(w, http.StatusOK, ValidateQRResponse{
		Message:  "Código QR validado correctamente.",
		Attendee: attendee,
	})
}

func validationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyValidated):
		return "already_validated"
	case errors.Is(err, domain.ErrTokenMismatch):
		return "token_mismatch"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
