package controllers

import (
	"errors"
	"net/http"
	"testing"

	"teatroqr/internal/delivery/http/helpers"
	"teatroqr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkController_CreateWork(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"success", WorkRequest{Title: "Hamlet", Date: "2026-11-20"}, nil, http.StatusCreated, ""},
		{"missing title", WorkRequest{Description: "x"}, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"unknown field", `{"title":"Hamlet","id":"x"}`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"malformed json", `{"title":`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"service failure", WorkRequest{Title: "Hamlet"}, errors.New("db down"), http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWorkService{err: tt.svcErr}
			c := NewWorkController(testLogger, svc)
			rr := serve("POST /obras", c.CreateWork, http.MethodPost, "/obras", tt.body)
			if tt.wantCode != "" {
				requireErrorCode(t, rr, tt.wantStatus, tt.wantCode)
				return
			}
			require.Equal(t, tt.wantStatus, rr.Code)
			resp := decodeResponse(t, rr)
			require.Nil(t, resp.Error)
			data := resp.Data.(map[string]any)
			assert.Equal(t, workUUID, data["id"])
			assert.Equal(t, "Hamlet", data["title"])
			assert.Equal(t, "2026-11-20", data["date"])
		})
	}
}

func TestWorkController_ListWorks(t *testing.T) {
	svc := &fakeWorkService{works: []*domain.Work{{ID: workUUID, Title: "Hamlet"}}, total: 41}
	c := NewWorkController(testLogger, svc)
	rr := serve("GET /obras", c.ListWorks, http.MethodGet, "/obras?page=2&page_size=20", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 20}, svc.lastParams)

	resp := decodeResponse(t, rr)
	data := resp.Data.(map[string]any)
	require.Len(t, data["items"], 1)
	pagination := data["pagination"].(map[string]any)
	assert.EqualValues(t, 41, pagination["total"])
	assert.EqualValues(t, 3, pagination["total_pages"])

	empty := NewWorkController(testLogger, &fakeWorkService{})
	rr = serve("GET /obras", empty.ListWorks, http.MethodGet, "/obras", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"items":[]`)
}

func TestWorkController_GetWork(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		svc        *fakeWorkService
		wantStatus int
		wantCode   string
	}{
		{"found", workUUID, &fakeWorkService{work: &domain.Work{ID: workUUID, Title: "Hamlet"}}, http.StatusOK, ""},
		{"not found", workUUID, &fakeWorkService{err: domain.ErrNotFound}, http.StatusNotFound, helpers.ErrCodeNotFound},
		{"bad id", "42", &fakeWorkService{}, http.StatusBadRequest, helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWorkController(testLogger, tt.svc)
			rr := serve("GET /obras/{workID}", c.GetWork, http.MethodGet, "/obras/"+tt.id, nil)
			if tt.wantCode != "" {
				requireErrorCode(t, rr, tt.wantStatus, tt.wantCode)
				return
			}
			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, workUUID, tt.svc.lastID)
		})
	}
}

func TestWorkController_UpdateWork(t *testing.T) {
	svc := &fakeWorkService{}
	c := NewWorkController(testLogger, svc)
	rr := serve("PUT /obras/{workID}", c.UpdateWork, http.MethodPut, "/obras/"+workUUID, WorkRequest{Title: "Yerma", Description: "Lorca"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, svc.lastWork)
	assert.Equal(t, workUUID, svc.lastWork.ID)
	assert.Equal(t, "Yerma", svc.lastWork.Title)

	svc.err = domain.ErrNotFound
	rr = serve("PUT /obras/{workID}", c.UpdateWork, http.MethodPut, "/obras/"+workUUID, WorkRequest{Title: "Yerma"})
	requireErrorCode(t, rr, http.StatusNotFound, helpers.ErrCodeNotFound)
}

func TestWorkController_DeleteWork(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"deleted", nil, http.StatusNoContent, ""},
		{"has attendees", domain.ErrWorkHasAttendees, http.StatusBadRequest, helpers.ErrCodeWorkHasAttendees},
		{"not found", domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWorkController(testLogger, &fakeWorkService{err: tt.svcErr})
			rr := serve("DELETE /obras/{workID}", c.DeleteWork, http.MethodDelete, "/obras/"+workUUID, nil)
			if tt.wantCode != "" {
				requireErrorCode(t, rr, tt.wantStatus, tt.wantCode)
				return
			}
			require.Equal(t, tt.wantStatus, rr.Code)
			require.Empty(t, rr.Body.String())
		})
	}
}
