package domain

import (
	"context"
	"time"
)

// Attendee is a person registered for a Work. QRCode holds the verification token
// and never changes after creation; Validated only ever moves from false to true.
// swagger:model Attendee
type Attendee struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	QRCode      string     `json:"qr_code"`
	Validated   bool       `json:"validated"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	WorkID      string     `json:"work_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewAttendee returns an unvalidated Attendee. ID is typically set by the repository on create.
func NewAttendee(email, name, workID, qrCode string, createdAt, updatedAt time.Time) *Attendee {
	return &Attendee{
		Email:     email,
		Name:      name,
		WorkID:    workID,
		QRCode:    qrCode,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// AttendeeFilter narrows attendee listings. Empty fields are ignored.
type AttendeeFilter struct {
	WorkID string
}

// AttendeeRepository defines storage operations for attendees.
type AttendeeRepository interface {
	// Create inserts the attendee. Returns ErrDuplicateRegistration when the email is
	// taken and ErrWorkNotFound when WorkID does not reference a work.
	Create(ctx context.Context, a *Attendee) error
	GetByID(ctx context.Context, id string) (*Attendee, error)
	GetByEmail(ctx context.Context, email string) (*Attendee, error)
	List(ctx context.Context, filter AttendeeFilter, params PaginationParams) ([]*Attendee, int, error)
	// Update replaces email, name and work_id only.
	Update(ctx context.Context, a *Attendee) error
	Delete(ctx context.Context, id string) error
	// MarkValidated flips validated to true only if the row matches email and token and
	// is still unvalidated. ok is false when no row was changed.
	MarkValidated(ctx context.Context, email, qrCode string, at time.Time) (a *Attendee, ok bool, err error)
}

// RegistrationResult is what Register reports back to the caller.
type RegistrationResult struct {
	Attendee *Attendee
	// Notified is false when the QR email could not be delivered.
	Notified bool
}

// RegistrationService registers attendees and sends them their QR code.
type RegistrationService interface {
	Register(ctx context.Context, email, name, workID string) (*RegistrationResult, error)
}

// ValidationService performs the one-shot door check-in.
type ValidationService interface {
	Validate(ctx context.Context, email, qrCode string) (*Attendee, error)
}

// AttendeeService defines administrative CRUD on attendees.
type AttendeeService interface {
	// Create assigns a token like registration does but sends no email.
	Create(ctx context.Context, email, name, workID string) (*Attendee, error)
	Get(ctx context.Context, id string) (*Attendee, error)
	List(ctx context.Context, filter AttendeeFilter, params PaginationParams) ([]*Attendee, int, error)
	Update(ctx context.Context, id, email, name, workID string) (*Attendee, error)
	Delete(ctx context.Context, id string) error
	// QRCode renders the attendee's verification URL as a PNG.
	QRCode(ctx context.Context, id string) ([]byte, error)
}
