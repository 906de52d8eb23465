package domain

import (
	"context"
	"time"
)

// Work represents a theatrical production attendees register for.
// swagger:model Work
type Work struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewWork returns a new Work with the given fields. ID is typically set by the repository on create.
func NewWork(title, description, date string, createdAt, updatedAt time.Time) *Work {
	return &Work{
		Title:       title,
		Description: description,
		Date:        date,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// WorkRepository defines the interface for work storage
type WorkRepository interface {
	Create(ctx context.Context, work *Work) error
	GetByID(ctx context.Context, id string) (*Work, error)
	List(ctx context.Context, params PaginationParams) ([]*Work, int, error)
	// Update replaces title, description and date. Returns ErrNotFound when no row matches.
	Update(ctx context.Context, work *Work) error
	// Delete removes the work. Returns ErrWorkHasAttendees while attendees still reference it.
	Delete(ctx context.Context, id string) error
}

// WorkService defines CRUD operations on works.
type WorkService interface {
	Create(ctx context.Context, work *Work) error
	Get(ctx context.Context, id string) (*Work, error)
	List(ctx context.Context, params PaginationParams) ([]*Work, int, error)
	Update(ctx context.Context, work *Work) (*Work, error)
	Delete(ctx context.Context, id string) error
}
