package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"teatroqr/internal/domain"
)

type validationService struct {
	attendeeRepo domain.AttendeeRepository
	now          func() time.Time
}

// NewValidationService returns the door check-in service.
func NewValidationService(attendeeRepo domain.AttendeeRepository) domain.ValidationService {
	return &validationService{attendeeRepo: attendeeRepo, now: time.Now}
}

// Validate marks the attendee as validated when email and token match an unvalidated row.
// Concurrent calls with the same pair succeed at most once.
func (s *validationService) Validate(ctx context.Context, email, qrCode string) (*domain.Attendee, error) {
	email = normalizeEmail(email)
	qrCode = strings.TrimSpace(qrCode)
	if email == "" || qrCode == "" {
		return nil, fmt.Errorf("%w: email and qr_code are required", domain.ErrInvalidInput)
	}

	attendee, ok, err := s.attendeeRepo.MarkValidated(ctx, email, qrCode, s.now())
	if err != nil {
		return nil, fmt.Errorf("mark validated: %w", err)
	}
	if ok {
		return attendee, nil
	}

	// Validated is terminal and tokens never change, so reading the row after a failed
	// update classifies the failure consistently.
	current, err := s.attendeeRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	if current.Validated {
		return nil, domain.ErrAlreadyValidated
	}
	return nil, domain.ErrTokenMismatch
}
