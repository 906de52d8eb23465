package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"teatroqr/internal/delivery/http/helpers"
	"teatroqr/internal/domain"
)

// WorkRequest is the request body for POST /obras and PUT /obras/{workID}.
type WorkRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// Validate implements Validator.
func (req WorkRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, "title is required")
	}
	return errs
}

// WorkSuccessResponse is the success envelope for endpoints returning one work.
type WorkSuccessResponse struct {
	Data  *domain.Work      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListWorksResponse is the data payload for GET /obras.
type ListWorksResponse struct {
	Items      []*domain.Work         `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListWorksSuccessResponse is the success envelope for GET /obras.
type ListWorksSuccessResponse struct {
	Data  ListWorksResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type WorkController struct {
	Logger  *slog.Logger
	Service domain.WorkService
}

func NewWorkController(logger *slog.Logger, svc domain.WorkService) *WorkController {
	return &WorkController{Logger: logger, Service: svc}
}

// CreateWork godoc
// @Summary Create a work
// @Description Create a theatrical work. id and timestamps are server-generated.
// @Tags obras
// @Accept json
// @Produce json
// @Param work body WorkRequest true "Work data"
// @Success 201 {object} controllers.WorkSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /obras [post]
func (c *WorkController) CreateWork(w http.ResponseWriter, r *http.Request) {
	var req WorkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	work := domain.NewWork(req.Title, req.Description, req.Date, now, now)
	if err := c.Service.Create(r.Context(), work); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, work)
}

// ListWorks godoc
// @Summary List works
// @Tags obras
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListWorksSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /obras [get]
func (c *WorkController) ListWorks(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	works, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if works == nil {
		works = []*domain.Work{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListWorksResponse{Items: works, Pagination: meta})
}

// GetWork godoc
// @Summary Get a work by ID
// @Tags obras
// @Produce json
// @Param workID path string true "Work ID (UUID)"
// @Success 200 {object} controllers.WorkSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /obras/{workID} [get]
func (c *WorkController) GetWork(w http.ResponseWriter, r *http.Request) {
	workID, ok := helpers.PathUUID(w, r, "workID")
	if !ok {
		return
	}
	work, err := c.Service.Get(r.Context(), workID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, work)
}

// UpdateWork godoc
// @Summary Update a work
// @Description Replaces title, description and date.
// @Tags obras
// @Accept json
// @Produce json
// @Param workID path string true "Work ID (UUID)"
// @Param work body WorkRequest true "Work data"
// @Success 200 {object} controllers.WorkSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /obras/{workID} [put]
func (c *WorkController) UpdateWork(w http.ResponseWriter, r *http.Request) {
	workID, ok := helpers.PathUUID(w, r, "workID")
	if !ok {
		return
	}
	var req WorkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	work, err := c.Service.Update(r.Context(), &domain.Work{
		ID:          workID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, work)
}

// DeleteWork godoc
// @Summary Delete a work
// @Description Fails while attendees are still registered for the work.
// @Tags obras
// @Param workID path string true "Work ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, work_has_attendees"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /obras/{workID} [delete]
func (c *WorkController) DeleteWork(w http.ResponseWriter, r *http.Request) {
	workID, ok := helpers.PathUUID(w, r, "workID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), workID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
