package postgres

import (
	"context"
	"database/sql"
	"errors"

	"teatroqr/internal/domain"
)

type workRepository struct {
	DB *sql.DB
}

func NewWorkRepository(db *sql.DB) domain.WorkRepository {
	return &workRepository{DB: db}
}

const workColumns = `id, title, description, show_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWork(s rowScanner) (*domain.Work, error) {
	w := &domain.Work{}
	if err := s.Scan(&w.ID, &w.Title, &w.Description, &w.Date, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *workRepository) Create(ctx context.Context, w *domain.Work) error {
	query := `
		INSERT INTO works (title, description, show_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return withWriteRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, query, w.Title, w.Description, w.Date, w.CreatedAt, w.UpdatedAt).Scan(&w.ID)
	})
}

func (r *workRepository) GetByID(ctx context.Context, id string) (*domain.Work, error) {
	query := `SELECT ` + workColumns + ` FROM works WHERE id = $1`
	var w *domain.Work
	err := withRetry(ctx, func() error {
		var err error
		w, err = scanWork(r.DB.QueryRowContext(ctx, query, id))
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
	return w, nil
}

func (r *workRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Work, int, error) {
	var total int
	err := withRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM works`).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + workColumns + `
		FROM works
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	works := make([]*domain.Work, 0)
	err = withRetry(ctx, func() error {
		rows, err := r.DB.QueryContext(ctx, query, limitArg(params.Limit()), params.Offset())
		if err != nil {
			return err
		}
		defer rows.Close()
		works = works[:0]
		for rows.Next() {
			w, err := scanWork(rows)
			if err != nil {
				return err
			}
			works = append(works, w)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return works, total, nil
}

func (r *workRepository) Update(ctx context.Context, w *domain.Work) error {
	query := `
		UPDATE works
		SET title = $1, description = $2, show_date = $3, updated_at = $4
		WHERE id = $5
		RETURNING created_at
	`
	err := withWriteRetry(ctx, func() error {
		return r.DB.QueryRowContext(ctx, query, w.Title, w.Description, w.Date, w.UpdatedAt, w.ID).Scan(&w.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if code, _ := pqErrorCode(err); code == pqInvalidTextRepr {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete never cascades: the attendees foreign key is ON DELETE RESTRICT.
func (r *workRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM works WHERE id = $1`
	var result sql.Result
	err := withWriteRetry(ctx, func() error {
		var err error
		result, err = r.DB.ExecContext(ctx, query, id)
		return err
	})
	if err != nil {
		switch code, _ := pqErrorCode(err); code {
		case pqForeignKeyViolation:
			return domain.ErrWorkHasAttendees
		case pqInvalidTextRepr:
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
