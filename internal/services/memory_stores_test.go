package services_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lead-management-server/internal/leadfilter"
	"lead-management-server/internal/models"
	"lead-management-server/internal/repo"
)

// memoryUserStore is an in-memory repo.UserStore for unit tests.
type memoryUserStore struct {
	seq   int
	users map[string]*models.User
}

var _ repo.UserStore = (*memoryUserStore)(nil)

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]*models.User)}
}

func (s *memoryUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, repo.ErrDuplicate
		}
	}
	s.seq++
	user.ID = fmt.Sprintf("user-%d", s.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	s.users[user.ID] = &stored
	return copyUser(&stored), nil
}

func (s *memoryUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *memoryUserStore) UpdateProfile(_ context.Context, user *models.User) (*models.User, error) {
	stored, ok := s.users[user.ID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for id, other := range s.users {
		if id != user.ID && other.Email == user.Email {
			return nil, repo.ErrDuplicate
		}
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Email = user.Email
	stored.UpdatedAt = time.Now()
	return copyUser(stored), nil
}

func (s *memoryUserStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	stored, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	stored.LastLogin = &at
	return nil
}

func (s *memoryUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	stored, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	stored.PasswordHash = passwordHash
	stored.ForgotPasswordToken = nil
	stored.ForgotPasswordExpiry = nil
	return nil
}

func (s *memoryUserStore) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	stored, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	stored.ForgotPasswordToken = &tokenHash
	stored.ForgotPasswordExpiry = &expiresAt
	return nil
}

func (s *memoryUserStore) GetByResetTokenHash(_ context.Context, tokenHash string) (*models.User, error) {
	for _, user := range s.users {
		if user.ForgotPasswordToken != nil && *user.ForgotPasswordToken == tokenHash &&
			user.ForgotPasswordExpiry != nil && user.ForgotPasswordExpiry.After(time.Now()) {
			return copyUser(user), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *memoryUserStore) Delete(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func copyUser(user *models.User) *models.User {
	clone := *user
	return &clone
}

// memoryLeadStore is an in-memory repo.LeadStore. List ignores field
// predicates but honors sorting by creation time and pagination, which is all
// the handler and service tests rely on.
type memoryLeadStore struct {
	seq   int
	leads map[string]*models.Lead
}

var _ repo.LeadStore = (*memoryLeadStore)(nil)

func newMemoryLeadStore() *memoryLeadStore {
	return &memoryLeadStore{leads: make(map[string]*models.Lead)}
}

func (s *memoryLeadStore) Create(_ context.Context, lead *models.Lead) (*models.Lead, error) {
	for _, existing := range s.leads {
		if existing.Email == lead.Email {
			return nil, repo.ErrDuplicate
		}
	}
	s.seq++
	lead.ID = fmt.Sprintf("lead-%d", s.seq)
	lead.CreatedAt = time.Now().Add(time.Duration(s.seq) * time.Millisecond)
	lead.UpdatedAt = lead.CreatedAt
	stored := *lead
	s.leads[lead.ID] = &stored
	return copyLead(&stored), nil
}

func (s *memoryLeadStore) GetByID(_ context.Context, id string) (*models.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyLead(lead), nil
}

func (s *memoryLeadStore) GetByEmail(_ context.Context, email string) (*models.Lead, error) {
	for _, lead := range s.leads {
		if lead.Email == email {
			return copyLead(lead), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *memoryLeadStore) Update(_ context.Context, lead *models.Lead) (*models.Lead, error) {
	if _, ok := s.leads[lead.ID]; !ok {
		return nil, repo.ErrNotFound
	}
	lead.UpdatedAt = time.Now()
	stored := *lead
	s.leads[lead.ID] = &stored
	return copyLead(&stored), nil
}

func (s *memoryLeadStore) Delete(_ context.Context, id string) error {
	if _, ok := s.leads[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.leads, id)
	return nil
}

func (s *memoryLeadStore) List(_ context.Context, query *leadfilter.Query) ([]models.Lead, int64, error) {
	all := make([]models.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		all = append(all, *lead)
	}
	sort.Slice(all, func(i, j int) bool {
		if query.SortOrder == "desc" {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := query.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + query.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func copyLead(lead *models.Lead) *models.Lead {
	clone := *lead
	return &clone
}
