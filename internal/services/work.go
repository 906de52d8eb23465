package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"teatroqr/internal/domain"
)

type workService struct {
	workRepo domain.WorkRepository
}

// NewWorkService creates a WorkService backed by the given repository.
func NewWorkService(workRepo domain.WorkRepository) domain.WorkService {
	return &workService{workRepo: workRepo}
}

func (s *workService) Create(ctx context.Context, work *domain.Work) error {
	if err := normalizeWork(work); err != nil {
		return err
	}
	now := time.Now()
	work.CreatedAt = now
	work.UpdatedAt = now
	if err := s.workRepo.Create(ctx, work); err != nil {
		return fmt.Errorf("create work: %w", err)
	}
	return nil
}

func (s *workService) Get(ctx context.Context, id string) (*domain.Work, error) {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get work: %w", err)
	}
	return work, nil
}

func (s *workService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Work, int, error) {
	works, total, err := s.workRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list works: %w", err)
	}
	return works, total, nil
}

// Update replaces title, description and date.
func (s *workService) Update(ctx context.Context, work *domain.Work) (*domain.Work, error) {
	if err := normalizeWork(work); err != nil {
		return nil, err
	}
	work.UpdatedAt = time.Now()
	if err := s.workRepo.Update(ctx, work); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update work: %w", err)
	}
	return work, nil
}

func (s *workService) Delete(ctx context.Context, id string) error {
	if err := s.workRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrWorkHasAttendees) {
			return err
		}
		return fmt.Errorf("delete work: %w", err)
	}
	return nil
}

func normalizeWork(work *domain.Work) error {
	work.Title = strings.TrimSpace(work.Title)
	work.Description = strings.TrimSpace(work.Description)
	work.Date = strings.TrimSpace(work.Date)
	if work.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	return nil
}
