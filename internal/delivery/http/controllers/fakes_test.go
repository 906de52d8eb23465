package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"teatroqr/internal/delivery/http/helpers"
	"teatroqr/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	workUUID     = "0b6f8f0e-4a53-4b5e-9a8e-2d3c1f7a9b10"
	attendeeUUID = "6a1d2c3b-7e8f-4a9b-8c0d-1e2f3a4b5c6d"
)

// fakeWorkService implements domain.WorkService for handler tests.
type fakeWorkService struct {
	work       *domain.Work
	works      []*domain.Work
	total      int
	err        error
	lastID     string
	lastWork   *domain.Work
	lastParams domain.PaginationParams
}

func (f *fakeWorkService) Create(ctx context.Context, w *domain.Work) error {
	f.lastWork = w
	if f.err != nil {
		return f.err
	}
	w.ID = workUUID
	return nil
}

func (f *fakeWorkService) Get(ctx context.Context, id string) (*domain.Work, error) {
	f.lastID = id
	return f.work, f.err
}

func (f *fakeWorkService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Work, int, error) {
	f.lastParams = params
	return f.works, f.total, f.err
}

func (f *fakeWorkService) Update(ctx context.Context, w *domain.Work) (*domain.Work, error) {
	f.lastWork = w
	if f.err != nil {
		return nil, f.err
	}
	return w, nil
}

func (f *fakeWorkService) Delete(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

// fakeRegistrationService implements domain.RegistrationService.
type fakeRegistrationService struct {
	result *domain.RegistrationResult
	err    error
	calls  int
	email  string
}

func (f *fakeRegistrationService) Register(ctx context.Context, email, name, workID string) (*domain.RegistrationResult, error) {
	f.calls++
	f.email = email
	return f.result, f.err
}

// fakeAttendeeService implements domain.AttendeeService.
type fakeAttendeeService struct {
	attendee   *domain.Attendee
	attendees  []*domain.Attendee
	total      int
	png        []byte
	err        error
	lastID     string
	lastFilter domain.AttendeeFilter
}

func (f *fakeAttendeeService) Create(ctx context.Context, email, name, workID string) (*domain.Attendee, error) {
	return f.attendee, f.err
}

func (f *fakeAttendeeService) Get(ctx context.Context, id string) (*domain.Attendee, error) {
	f.lastID = id
	return f.attendee, f.err
}

func (f *fakeAttendeeService) List(ctx context.Context, filter domain.AttendeeFilter, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	f.lastFilter = filter
	return f.attendees, f.total, f.err
}

func (f *fakeAttendeeService) Update(ctx context.Context, id, email, name, workID string) (*domain.Attendee, error) {
	f.lastID = id
	return f.attendee, f.err
}

func (f *fakeAttendeeService) Delete(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeAttendeeService) QRCode(ctx context.Context, id string) ([]byte, error) {
	f.lastID = id
	return f.png, f.err
}

// fakeValidationService implements domain.ValidationService.
type fakeValidationService struct {
	attendee *domain.Attendee
	err      error
}

func (f *fakeValidationService) Validate(ctx context.Context, email, qrCode string) (*domain.Attendee, error) {
	return f.attendee, f.err
}

// serve routes the request through a mux so PathValue is populated.
func serve(pattern string, h http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func requireErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rr.Code)
	resp := decodeResponse(t, rr)
	require.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	require.Equal(t, code, resp.Error.Code)
}
