package domain

import "errors"

// Sentinel errors shared by services, repositories and controllers.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	ErrWorkNotFound     = errors.New("work not found")
	ErrWorkHasAttendees = errors.New("work still has registered attendees")

	ErrDuplicateRegistration = errors.New("email is already registered")
	ErrDuplicateEmail        = errors.New("email already in use")
	ErrAlreadyValidated      = errors.New("qr code was already validated")
	ErrTokenMismatch         = errors.New("qr code is not valid")

	// ErrNotificationDeliveryFailed is never returned to API callers; registration
	// logs it and still succeeds.
	ErrNotificationDeliveryFailed = errors.New("notification delivery failed")
)
