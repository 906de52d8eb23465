package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teatroqr/internal/domain"
)

type attendeeService struct {
	attendeeRepo domain.AttendeeRepository
	tickets      *ticketIssuer
}

// NewAttendeeService returns the administrative attendee service. Tokens are issued the same
// way registration does, but no email is sent.
func NewAttendeeService(
	attendeeRepo domain.AttendeeRepository,
	tokens domain.TokenGenerator,
	qr domain.QRRenderer,
	baseURL string,
) domain.AttendeeService {
	return &attendeeService{
		attendeeRepo: attendeeRepo,
		tickets:      newTicketIssuer(tokens, qr, baseURL),
	}
}

func (s *attendeeService) Create(ctx context.Context, email, name, workID string) (*domain.Attendee, error) {
	email, name, workID, err := attendeeInput(email, name, workID)
	if err != nil {
		return nil, err
	}
	token, err := s.tickets.issueToken(email, workID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	now := time.Now()
	attendee := domain.NewAttendee(email, name, workID, token, now, now)
	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		if errors.Is(err, domain.ErrDuplicateRegistration) ||
			errors.Is(err, domain.ErrWorkNotFound) ||
			errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("create attendee: %w", err)
	}
	return attendee, nil
}

func (s *attendeeService) Get(ctx context.Context, id string) (*domain.Attendee, error) {
	attendee, err := s.attendeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	return attendee, nil
}

func (s *attendeeService) List(ctx context.Context, filter domain.AttendeeFilter, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	attendees, total, err := s.attendeeRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendees: %w", err)
	}
	return attendees, total, nil
}

// Update replaces email, name and work. Token and validation state are kept.
func (s *attendeeService) Update(ctx context.Context, id, email, name, workID string) (*domain.Attendee, error) {
	email, name, workID, err := attendeeInput(email, name, workID)
	if err != nil {
		return nil, err
	}
	attendee := &domain.Attendee{
		ID:        id,
		Email:     email,
		Name:      name,
		WorkID:    workID,
		UpdatedAt: time.Now(),
	}
	if err := s.attendeeRepo.Update(ctx, attendee); err != nil {
		if errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, domain.ErrDuplicateEmail) ||
			errors.Is(err, domain.ErrWorkNotFound) ||
			errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("update attendee: %w", err)
	}
	return attendee, nil
}

func (s *attendeeService) Delete(ctx context.Context, id string) error {
	if err := s.attendeeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete attendee: %w", err)
	}
	return nil
}

func (s *attendeeService) QRCode(ctx context.Context, id string) ([]byte, error) {
	attendee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	_, png, err := s.tickets.render(attendee.Email, attendee.QRCode)
	if err != nil {
		return nil, err
	}
	return png, nil
}
