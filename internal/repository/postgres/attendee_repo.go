package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"teatroqr/internal/domain"
)

const (
	attendeeQRCodeConstraint = "attendees_qr_code_key"
	attendeeWorkFKConstraint = "attendees_work_id_fkey"
)

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{DB: db}
}

const attendeeColumns = `id, email, name, qr_code, validated, validated_at, work_id, created_at, updated_at`

func scanAttendee(s rowScanner) (*domain.Attendee, error) {
	a := &domain.Attendee{}
	var validatedAt sql.NullTime
	if err := s.Scan(&a.ID, &a.Email, &a.Name, &a.QRCode, &a.Validated, &validatedAt, &a.WorkID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if validatedAt.Valid {
		a.ValidatedAt = &validatedAt.Time
	}
	return a, nil
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	query := `
		INSERT INTO attendees (email, name, qr_code, work_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, validated
	`
	err := withWriteRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, query, a.Email, a.Name, a.QRCode, a.WorkID, a.CreatedAt, a.UpdatedAt).
			Scan(&a.ID, &a.Validated)
	})
	if err != nil {
		return mapAttendeeWriteError(err, domain.ErrDuplicateRegistration)
	}
	return nil
}

func (r *attendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	return r.getOne(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE id = $1`, id)
}

func (r *attendeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Attendee, error) {
	return r.getOne(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE email = $1`, email)
}

func (r *attendeeRepository) getOne(ctx context.Context, query string, arg string) (*domain.Attendee, error) {
	var a *domain.Attendee
	err := withRetry(ctx, func() error {
		var err error
		a, err = scanAttendee(r.DB.QueryRowContext(ctx, query, arg))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if code, _ := pqErrorCode(err); code == pqInvalidTextRepr {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) List(ctx context.Context, filter domain.AttendeeFilter, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	// $1 is NULL when no work filter is set.
	var workID any
	if filter.WorkID != "" {
		workID = filter.WorkID
	}

	var total int
	err := withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM attendees WHERE ($1::uuid IS NULL OR work_id = $1::uuid)`, workID).
			Scan(&total)
	})
	if err != nil {
		return nil, 0, listError(err)
	}

	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE ($1::uuid IS NULL OR work_id = $1::uuid)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	attendees := make([]*domain.Attendee, 0)
	err = withRetry(ctx, func() error {
		rows, err := r.DB.QueryContext(ctx, query, workID, limitArg(params.Limit()), params.Offset())
		if err != nil {
			return err
		}
		defer rows.Close()
		attendees = attendees[:0]
		for rows.Next() {
			a, err := scanAttendee(rows)
			if err != nil {
				return err
			}
			attendees = append(attendees, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, listError(err)
	}
	return attendees, total, nil
}

func (r *attendeeRepository) Update(ctx context.Context, a *domain.Attendee) error {
	query := `
		UPDATE attendees
		SET email = $1, name = $2, work_id = $3, updated_at = $4
		WHERE id = $5
		RETURNING qr_code, validated, validated_at, created_at
	`
	var validatedAt sql.NullTime
	err := withWriteRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, query, a.Email, a.Name, a.WorkID, a.UpdatedAt, a.ID).
			Scan(&a.QRCode, &a.Validated, &validatedAt, &a.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapAttendeeWriteError(err, domain.ErrDuplicateEmail)
	}
	a.ValidatedAt = nil
	if validatedAt.Valid {
		a.ValidatedAt = &validatedAt.Time
	}
	return nil
}

func (r *attendeeRepository) Delete(ctx context.Context, id string) error {
	var result sql.Result
	err := withWriteRetry(ctx, func() error {
		var err error
		result, err = r.DB.ExecContext(ctx, `DELETE FROM attendees WHERE id = $1`, id)
		return err
	})
	if err != nil {
		if code, _ := pqErrorCode(err); code == pqInvalidTextRepr {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkValidated is a compare-and-swap on the validated flag: concurrent callers with the
// right token race on one UPDATE and exactly one of them gets a row back.
func (r *attendeeRepository) MarkValidated(ctx context.Context, email, qrCode string, at time.Time) (*domain.Attendee, bool, error) {
	query := `
		UPDATE attendees
		SET validated = TRUE, validated_at = $3, updated_at = $3
		WHERE email = $1 AND qr_code = $2 AND validated = FALSE
		RETURNING ` + attendeeColumns
	var a *domain.Attendee
	err := withWriteRetry(ctx, func() error {
		var err error
		a, err = scanAttendee(r.DB.QueryRowContext(ctx, query, email, qrCode, at))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return a, true, nil
}

// mapAttendeeWriteError translates constraint violations on insert/update. dupEmail is the
// error reported when the email unique constraint fires.
func mapAttendeeWriteError(err error, dupEmail error) error {
	code, constraint := pqErrorCode(err)
	switch code {
	case pqUniqueViolation:
		if constraint == attendeeQRCodeConstraint {
			return fmt.Errorf("qr code collision: %w", err)
		}
		return dupEmail
	case pqForeignKeyViolation:
		if constraint == "" || constraint == attendeeWorkFKConstraint {
			return domain.ErrWorkNotFound
		}
	case pqInvalidTextRepr:
		return fmt.Errorf("%w: malformed identifier", domain.ErrInvalidInput)
	}
	return err
}

func listError(err error) error {
	if code, _ := pqErrorCode(err); code == pqInvalidTextRepr {
		return fmt.Errorf("%w: malformed work_id", domain.ErrInvalidInput)
	}
	return err
}
