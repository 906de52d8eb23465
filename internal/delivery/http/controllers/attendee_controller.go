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

// AttendeeRequest is the request body for POST /usuarios, POST /admin/usuarios and PUT /usuarios/{attendeeID}.
type AttendeeRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	WorkID string `json:"work_id"`
}

// Validate implements Validator.
func (req AttendeeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, "email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if req.WorkID == "" {
		errs = append(errs, "work_id is required")
	} else if !helpers.IsUUID(req.WorkID) {
		errs = append(errs, "work_id must be a UUID")
	}
	return errs
}

// RegisterResponse is the data payload for POST /usuarios. The token is deliberately
// absent; it only travels inside the emailed QR code.
type RegisterResponse struct {
	Message          string `json:"message"`
	NotificationSent bool   `json:"notification_sent"`
}

// RegisterSuccessResponse is the success envelope for POST /usuarios (201).
type RegisterSuccessResponse struct {
	Data  RegisterResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AttendeeSuccessResponse is the success envelope for endpoints returning one attendee.
type AttendeeSuccessResponse struct {
	Data  *domain.Attendee  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListAttendeesResponse is the data payload for GET /usuarios.
type ListAttendeesResponse struct {
	Items      []*domain.Attendee     `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListAttendeesSuccessResponse is the success envelope for GET /usuarios.
type ListAttendeesSuccessResponse struct {
	Data  ListAttendeesResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type AttendeeController struct {
	Logger       *slog.Logger
	Registration domain.RegistrationService
	Service      domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, registration domain.RegistrationService, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{Logger: logger, Registration: registration, Service: svc}
}

// Register godoc
// @Summary Register for a work
// @Description Registers the attendee and emails a QR code that encodes the verification link.
// @Description A failed email does not fail the registration; notification_sent reports it.
// @Tags usuarios
// @Accept json
// @Produce json
// @Param attendee body AttendeeRequest true "Attendee data"
// @Success 201 {object} controllers.RegisterSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, duplicate_registration"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (work)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /usuarios [post]
func (c *AttendeeController) Register(w http.ResponseWriter, r *http.Request) {
	var req AttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return
	}
	res, err := c.Registration.Register(r.Context(), req.Email, req.Name, req.WorkID)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationOutcome(err)).Inc()
		writeServiceError(w, r, c.Logger, err)
		return
	}
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	msg := "Usuario registrado. Revisa tu correo para obtener tu código QR."
	if res.Notified {
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	} else {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		msg = "Usuario registrado, pero no se pudo enviar el correo con el código QR."
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, RegisterResponse{Message: msg, NotificationSent: res.Notified})
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateRegistration):
		return "duplicate"
	case errors.Is(err, domain.ErrWorkNotFound):
		return "work_not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

// CreateAttendee godoc
// @Summary Create an attendee without sending email
// @Description Administrative create. A token is assigned as in registration but no email is sent.
// @Tags usuarios
// @Accept json
// @Produce json
// @Param attendee body AttendeeRequest true "Attendee data"
// @Success 201 {object} controllers.AttendeeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, duplicate_registration"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (work)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/usuarios [post]
func (c *AttendeeController) CreateAttendee(w http.ResponseWriter, r *http.Request) {
	var req AttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee, err := c.Service.Create(r.Context(), req.Email, req.Name, req.WorkID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, attendee)
}

// ListAttendees godoc
// @Summary List attendees
// @Tags usuarios
// @Produce json
// @Param work_id query string false "Only attendees of this work (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListAttendeesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /usuarios [get]
func (c *AttendeeController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	filter := domain.AttendeeFilter{WorkID: strings.TrimSpace(r.URL.Query().Get("work_id"))}
	if filter.WorkID != "" && !helpers.IsUUID(filter.WorkID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "work_id must be a UUID")
		return
	}
	params := helpers.ParsePagination(r)
	attendees, total, err := c.Service.List(r.Context(), filter, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListAttendeesResponse{Items: attendees, Pagination: meta})
}

// GetAttendee godoc
// @Summary Get an attendee by ID
// @Tags usuarios
// @Produce json
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 200 {object} controllers.AttendeeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /usuarios/{attendeeID} [get]
func (c *AttendeeController) GetAttendee(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	attendee, err := c.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendee)
}

// GetAttendeeQRCode godoc
// @Summary Get an attendee's QR code
// @Description Renders the attendee's verification link as a PNG image.
// @Tags usuarios
// @Produce png
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 200 {file} binary
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /usuarios/{attendeeID}/qr [get]
func (c *AttendeeController) GetAttendeeQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	png, err := c.Service.QRCode(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// UpdateAttendee godoc
// @Summary Update an attendee
// @Description Replaces email, name and work. The token and validation state are kept.
// @Tags usuarios
// @Accept json
// @Produce json
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Param attendee body AttendeeRequest true "Attendee data"
// @Success 200 {object} controllers.AttendeeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, duplicate_email"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /usuarios/{attendeeID} [put]
func (c *AttendeeController) UpdateAttendee(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	var req AttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee, err := c.Service.Update(r.Context(), id, req.Email, req.Name, req.WorkID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendee)
}

// DeleteAttendee godoc
// @Summary Delete an attendee
// @Tags usuarios
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /usuarios/{attendeeID} [delete]
func (c *AttendeeController) DeleteAttendee(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
