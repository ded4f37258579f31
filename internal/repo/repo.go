package repo

import (
	"context"
	"errors"
	"time"

	"lead-management-server/internal/leadfilter"
	"lead-management-server/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore is the persistence contract the auth service depends on.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// LeadStore is the persistence contract the lead service depends on.
type LeadStore interface {
	Create(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	GetByEmail(ctx context.Context, email string) (*models.Lead, error)
	Update(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query *leadfilter.Query) ([]models.Lead, int64, error)
}
