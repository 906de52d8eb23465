package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"teatroqr/internal/domain"
)

type registrationService struct {
	attendeeRepo  domain.AttendeeRepository
	workRepo      domain.WorkRepository
	tickets       *ticketIssuer
	emailService  domain.EmailService
	notifyTimeout time.Duration
	logger        *slog.Logger
}

// NewRegistrationService wires the registration flow: persist the attendee with a fresh
// token, then email the QR image. baseURL is the verification page encoded in the QR.
func NewRegistrationService(
	attendeeRepo domain.AttendeeRepository,
	workRepo domain.WorkRepository,
	tokens domain.TokenGenerator,
	qr domain.QRRenderer,
	emailService domain.EmailService,
	baseURL string,
	notifyTimeout time.Duration,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		attendeeRepo:  attendeeRepo,
		workRepo:      workRepo,
		tickets:       newTicketIssuer(tokens, qr, baseURL),
		emailService:  emailService,
		notifyTimeout: notifyTimeout,
		logger:        logger,
	}
}

func (s *registrationService) Register(ctx context.Context, email, name, workID string) (*domain.RegistrationResult, error) {
	email, name, workID, err := attendeeInput(email, name, workID)
	if err != nil {
		return nil, err
	}

	if _, err := s.attendeeRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateRegistration
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing registration: %w", err)
	}

	work, err := s.workRepo.GetByID(ctx, workID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, domain.ErrWorkNotFound
		}
		return nil, fmt.Errorf("get work: %w", err)
	}

	token, err := s.tickets.issueToken(email, work.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	now := time.Now()
	attendee := domain.NewAttendee(email, name, work.ID, token, now, now)
	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		if errors.Is(err, domain.ErrDuplicateRegistration) || errors.Is(err, domain.ErrWorkNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create attendee: %w", err)
	}

	result := &domain.RegistrationResult{Attendee: attendee}
	result.Notified = s.notify(ctx, attendee, work)
	return result, nil
}

// notify sends the QR email. The attendee is already stored, so a client disconnect must
// not cancel delivery; the send is bounded by notifyTimeout instead.
func (s *registrationService) notify(ctx context.Context, attendee *domain.Attendee, work *domain.Work) bool {
	url, png, err := s.tickets.render(attendee.Email, attendee.QRCode)
	if err != nil {
		s.logger.WarnContext(ctx, "qr code not rendered", "attendee_id", attendee.ID, "err", err)
		return false
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	err = s.emailService.SendQRCode(sendCtx, &domain.QRCodeEmailData{
		Email:           attendee.Email,
		Name:            attendee.Name,
		WorkTitle:       work.Title,
		WorkDate:        work.Date,
		VerificationURL: url,
		QRCodePNG:       png,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "qr code email not delivered",
			"attendee_id", attendee.ID,
			"email", attendee.Email,
			"err", err,
		)
		return false
	}
	return true
}
