package services

import (
	"context"
	"errors"
	"time"

	"lead-management-server/internal/leadfilter"
	"lead-management-server/internal/models"
	"lead-management-server/internal/repo"
	"lead-management-server/internal/utils"
)

type LeadService struct {
	leads repo.LeadStore
}

func NewLeadService(leads repo.LeadStore) *LeadService {
	return &LeadService{leads: leads}
}

func (s *LeadService) Create(ctx context.Context, input models.LeadCreateInput) (*models.Lead, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.leads.GetByEmail(ctx, input.Email); err == nil {
		return nil, utils.NewDuplicateError("lead with this email already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, utils.NewInternalError()
	}

	created, err := s.leads.Create(ctx, input.Lead())
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, utils.NewDuplicateError("lead with this email already exists")
		}
		return nil, utils.NewInternalError()
	}
	return created, nil
}

func (s *LeadService) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewNotFoundError("lead not found")
		}
		return nil, utils.NewInternalError()
	}
	return lead, nil
}

// Update applies a validated partial update. Changing the status sets
// last_activity_at as a side effect; changing the email to one used by a
// different lead is rejected as a duplicate.
func (s *LeadService) Update(ctx context.Context, id string, input models.LeadUpdateInput) (*models.Lead, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewNotFoundError("lead not found")
		}
		return nil, utils.NewInternalError()
	}

	if input.Email != nil && *input.Email != lead.Email {
		existing, err := s.leads.GetByEmail(ctx, *input.Email)
		if err == nil && existing.ID != id {
			return nil, utils.NewDuplicateError("lead with this email already exists")
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewInternalError()
		}
	}

	input.Apply(lead, time.Now())

	updated, err := s.leads.Update(ctx, lead)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, utils.NewDuplicateError("lead with this email already exists")
		}
		return nil, utils.NewInternalError()
	}
	return updated, nil
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	if err := s.leads.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return utils.NewNotFoundError("lead not found")
		}
		return utils.NewInternalError()
	}
	return nil
}

// List executes a compiled filter query and reports the page plus the total
// matching count.
func (s *LeadService) List(ctx context.Context, query *leadfilter.Query) ([]models.Lead, int64, error) {
	leads, total, err := s.leads.List(ctx, query)
	if err != nil {
		return nil, 0, utils.NewInternalError()
	}
	return leads, total, nil
}
