package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"teatroqr/internal/adapters/email"
	"teatroqr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://teatro.example.com/validar-qr"

type registrationFixture struct {
	works     *fakeWorkRepo
	attendees *fakeAttendeeRepo
	tokens    *fakeTokens
	qr        *fakeQR
	email     *fakeEmailService
	svc       domain.RegistrationService
	work      *domain.Work
}

func newRegistrationFixture(t *testing.T, timeout time.Duration) *registrationFixture {
	t.Helper()
	f := &registrationFixture{
		works:  newFakeWorkRepo(),
		tokens: &fakeTokens{},
		qr:     &fakeQR{},
		email:  &fakeEmailService{},
	}
	f.attendees = newFakeAttendeeRepo(f.works)
	f.svc = NewRegistrationService(f.attendees, f.works, f.tokens, f.qr, f.email, testBaseURL, timeout, discardLogger())
	f.work = &domain.Work{Title: "Hamlet", Date: "2026-11-20"}
	require.NoError(t, f.works.Create(context.Background(), f.work))
	return f
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()
	f := newRegistrationFixture(t, time.Second)

	res, err := f.svc.Register(ctx, "  Ana@Example.com ", "Ana", f.work.ID)
	require.NoError(t, err)
	require.True(t, res.Notified)

	a := res.Attendee
	require.NotEmpty(t, a.ID)
	assert.Equal(t, "ana@example.com", a.Email)
	assert.Equal(t, f.work.ID, a.WorkID)
	assert.False(t, a.Validated)
	assert.NotEmpty(t, a.QRCode)

	stored, err := f.attendees.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.QRCode, stored.QRCode)

	wantURL := testBaseURL + "?email=ana@example.com&qr_code=" + a.QRCode
	require.Equal(t, []string{wantURL}, f.qr.contents)

	require.Len(t, f.email.sent, 1)
	sent := f.email.sent[0]
	assert.Equal(t, "ana@example.com", sent.Email)
	assert.Equal(t, "Ana", sent.Name)
	assert.Equal(t, "Hamlet", sent.WorkTitle)
	assert.Equal(t, wantURL, sent.VerificationURL)
	assert.Equal(t, []byte("png:"+wantURL), sent.QRCodePNG)
}

func TestRegistrationService_RegisterErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		email   string
		person  string
		workID  func(f *registrationFixture) string
		setup   func(t *testing.T, f *registrationFixture)
		wantErr error
	}{
		{
			name:    "invalid email",
			email:   "not-an-email",
			person:  "Ana",
			workID:  func(f *registrationFixture) string { return f.work.ID },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing name",
			email:   "ana@example.com",
			workID:  func(f *registrationFixture) string { return f.work.ID },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown work",
			email:   "ana@example.com",
			person:  "Ana",
			workID:  func(*registrationFixture) string { return "missing" },
			wantErr: domain.ErrWorkNotFound,
		},
		{
			name:   "duplicate email",
			email:  "ANA@example.com",
			person: "Ana again",
			workID: func(f *registrationFixture) string { return f.work.ID },
			setup: func(t *testing.T, f *registrationFixture) {
				_, err := f.svc.Register(context.Background(), "ana@example.com", "Ana", f.work.ID)
				require.NoError(t, err)
				f.email.sent = nil
			},
			wantErr: domain.ErrDuplicateRegistration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistrationFixture(t, time.Second)
			if tt.setup != nil {
				tt.setup(t, f)
			}
			before := len(f.attendees.byID)
			_, err := f.svc.Register(ctx, tt.email, tt.person, tt.workID(f))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.attendees.byID, before)
			assert.Empty(t, f.email.sent)
		})
	}
}

func TestRegistrationService_RepositoryFailure(t *testing.T) {
	f := newRegistrationFixture(t, time.Second)
	f.attendees.err = errDBDown
	_, err := f.svc.Register(context.Background(), "ana@example.com", "Ana", f.work.ID)
	require.ErrorIs(t, err, errDBDown)
	assert.Empty(t, f.email.sent)
}

func TestRegistrationService_NotificationFailureKeepsRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("mailer error", func(t *testing.T) {
		f := newRegistrationFixture(t, time.Second)
		f.email.err = domain.ErrNotificationDeliveryFailed
		res, err := f.svc.Register(ctx, "ana@example.com", "Ana", f.work.ID)
		require.NoError(t, err)
		assert.False(t, res.Notified)
		_, err = f.attendees.GetByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
	})

	t.Run("noop provider", func(t *testing.T) {
		f := newRegistrationFixture(t, time.Second)
		mailer, err := email.NewMailer(email.MailerConfig{Provider: "noop"}, discardLogger())
		require.NoError(t, err)
		emailSvc := NewEmailService(mailer, email.NewTemplateRenderer(), discardLogger())
		svc := NewRegistrationService(f.attendees, f.works, f.tokens, f.qr, emailSvc, testBaseURL, time.Second, discardLogger())

		res, err := svc.Register(ctx, "ana@example.com", "Ana", f.work.ID)
		require.NoError(t, err)
		assert.False(t, res.Notified)
	})

	t.Run("qr render error", func(t *testing.T) {
		f := newRegistrationFixture(t, time.Second)
		f.qr.err = assert.AnError
		res, err := f.svc.Register(ctx, "ana@example.com", "Ana", f.work.ID)
		require.NoError(t, err)
		assert.False(t, res.Notified)
		assert.Empty(t, f.email.ctxs)
	})

	t.Run("timeout", func(t *testing.T) {
		f := newRegistrationFixture(t, 20*time.Millisecond)
		f.email.block = true
		start := time.Now()
		res, err := f.svc.Register(ctx, "ana@example.com", "Ana", f.work.ID)
		require.NoError(t, err)
		assert.False(t, res.Notified)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestRegistrationService_NotificationSurvivesCallerCancel(t *testing.T) {
	f := newRegistrationFixture(t, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	res, err := f.svc.Register(ctx, "ana@example.com", "Ana", f.work.ID)
	cancel()
	require.NoError(t, err)
	require.True(t, res.Notified)

	require.Len(t, f.email.ctxs, 1)
	sendCtx := f.email.ctxs[0]
	_, hasDeadline := sendCtx.Deadline()
	assert.True(t, hasDeadline)
}

func TestRegistrationService_TokensAreDistinct(t *testing.T) {
	ctx := context.Background()
	f := newRegistrationFixture(t, time.Second)
	seen := make(map[string]bool)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		res, err := f.svc.Register(ctx, email, strings.ToUpper(email[:1]), f.work.ID)
		require.NoError(t, err)
		require.False(t, seen[res.Attendee.QRCode])
		seen[res.Attendee.QRCode] = true
	}
}
