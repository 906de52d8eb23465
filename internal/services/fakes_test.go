package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"teatroqr/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeWorkRepo is an in-memory WorkRepository for tests.
type fakeWorkRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Work
	attendees *fakeAttendeeRepo
	seq       int
	err       error
}

func newFakeWorkRepo() *fakeWorkRepo {
	return &fakeWorkRepo{byID: make(map[string]*domain.Work)}
}

func (f *fakeWorkRepo) Create(ctx context.Context, w *domain.Work) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seq++
	w.ID = fmt.Sprintf("work-%d", f.seq)
	cp := *w
	f.byID[w.ID] = &cp
	return nil
}

func (f *fakeWorkRepo) GetByID(ctx context.Context, id string) (*domain.Work, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	w, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWorkRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Work, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	out := make([]*domain.Work, 0, len(f.byID))
	for _, w := range f.byID {
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, params), len(out), nil
}

func (f *fakeWorkRepo) Update(ctx context.Context, w *domain.Work) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	existing, ok := f.byID[w.ID]
	if !ok {
		return domain.ErrNotFound
	}
	w.CreatedAt = existing.CreatedAt
	cp := *w
	f.byID[w.ID] = &cp
	return nil
}

func (f *fakeWorkRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	if f.attendees != nil && f.attendees.countForWork(id) > 0 {
		return domain.ErrWorkHasAttendees
	}
	delete(f.byID, id)
	return nil
}

// fakeAttendeeRepo is an in-memory AttendeeRepository. MarkValidated is a compare-and-set
// under the mutex, like the conditional UPDATE in Postgres.
type fakeAttendeeRepo struct {
	mu    sync.Mutex
	byID  map[string]*domain.Attendee
	works *fakeWorkRepo
	seq   int
	err   error
}

func newFakeAttendeeRepo(works *fakeWorkRepo) *fakeAttendeeRepo {
	r := &fakeAttendeeRepo{byID: make(map[string]*domain.Attendee), works: works}
	if works != nil {
		works.attendees = r
	}
	return r
}

func (f *fakeAttendeeRepo) workExists(id string) bool {
	if f.works == nil {
		return true
	}
	_, err := f.works.GetByID(context.Background(), id)
	return err == nil
}

func (f *fakeAttendeeRepo) countForWork(workID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.byID {
		if a.WorkID == workID {
			n++
		}
	}
	return n
}

func (f *fakeAttendeeRepo) findByEmail(email string) *domain.Attendee {
	for _, a := range f.byID {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (f *fakeAttendeeRepo) Create(ctx context.Context, a *domain.Attendee) error {
	if !f.workExists(a.WorkID) {
		return domain.ErrWorkNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.findByEmail(a.Email) != nil {
		return domain.ErrDuplicateRegistration
	}
	f.seq++
	a.ID = fmt.Sprintf("attendee-%d", f.seq)
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAttendeeRepo) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttendeeRepo) GetByEmail(ctx context.Context, email string) (*domain.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a := f.findByEmail(email)
	if a == nil {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttendeeRepo) List(ctx context.Context, filter domain.AttendeeFilter, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*domain.Attendee
	for _, a := range f.byID {
		if filter.WorkID != "" && a.WorkID != filter.WorkID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, params), len(out), nil
}

func (f *fakeAttendeeRepo) Update(ctx context.Context, a *domain.Attendee) error {
	if !f.workExists(a.WorkID) {
		return domain.ErrWorkNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	existing, ok := f.byID[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if other := f.findByEmail(a.Email); other != nil && other.ID != a.ID {
		return domain.ErrDuplicateEmail
	}
	existing.Email = a.Email
	existing.Name = a.Name
	existing.WorkID = a.WorkID
	existing.UpdatedAt = a.UpdatedAt
	*a = *existing
	return nil
}

func (f *fakeAttendeeRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeAttendeeRepo) MarkValidated(ctx context.Context, email, qrCode string, at time.Time) (*domain.Attendee, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	a := f.findByEmail(email)
	if a == nil || a.QRCode != qrCode || a.Validated {
		return nil, false, nil
	}
	a.Validated = true
	validatedAt := at
	a.ValidatedAt = &validatedAt
	a.UpdatedAt = at
	cp := *a
	return &cp, true, nil
}

func page[T any](items []T, params domain.PaginationParams) []T {
	if params.Limit() == 0 {
		return items
	}
	start := params.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + params.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// fakeTokens issues predictable tokens: "<email>#<n>".
type fakeTokens struct {
	mu  sync.Mutex
	n   int
	err error
}

func (f *fakeTokens) GenerateSalt(workID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.n++
	return fmt.Sprintf("%d", f.n), nil
}

func (f *fakeTokens) Derive(email, salt string) string {
	return email + "#" + salt
}

type fakeQR struct {
	contents []string
	err      error
}

func (f *fakeQR) Render(content string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.contents = append(f.contents, content)
	return []byte("png:" + content), nil
}

// fakeEmailService records sends. When block is set it waits for the context to expire.
type fakeEmailService struct {
	mu    sync.Mutex
	sent  []*domain.QRCodeEmailData
	err   error
	block bool
	ctxs  []context.Context
}

func (f *fakeEmailService) SendQRCode(ctx context.Context, data *domain.QRCodeEmailData) error {
	f.mu.Lock()
	f.ctxs = append(f.ctxs, ctx)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return fmt.Errorf("%w: %w", domain.ErrNotificationDeliveryFailed, ctx.Err())
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

var errDBDown = errors.New("connection refused")
