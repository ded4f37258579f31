package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"lead-management-server/internal/auth"
	"lead-management-server/internal/config"
	"lead-management-server/internal/models"
	"lead-management-server/internal/repo"
	"lead-management-server/internal/utils"
)

const resetTokenTTL = 15 * time.Minute

type AuthService struct {
	users  repo.UserStore
	tokens *auth.TokenManager
	cfg    *config.Config
}

// ForgotPasswordResult carries the raw reset token outside prod, where email
// delivery is not wired up.
type ForgotPasswordResult struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

func NewAuthService(users repo.UserStore, tokens *auth.TokenManager, cfg *config.Config) *AuthService {
	return &AuthService{users: users, tokens: tokens, cfg: cfg}
}

// Register creates the account and immediately issues a session token.
func (s *AuthService) Register(ctx context.Context, input models.RegisterInput) (*models.User, string, error) {
	if err := input.Validate(s.cfg.PasswordMinLen); err != nil {
		return nil, "", err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", utils.NewDuplicateError("user already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", utils.NewInternalError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", utils.NewInternalError()
	}

	user := &models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		// The unique constraint is the backstop for the race between the
		// existence check above and this insert.
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", utils.NewDuplicateError("user already exists")
		}
		return nil, "", utils.NewInternalError()
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, "", utils.NewInternalError()
	}
	return created, token, nil
}

// Login verifies the credentials and issues a token. An unknown email and a
// wrong password produce the same generic error so accounts cannot be
// enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", utils.NewValidationError("email and password are required")
	}

	normalized, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, "", utils.NewAuthError("invalid credentials")
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, "", utils.NewAuthError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", utils.NewAuthError("invalid credentials")
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", utils.NewInternalError()
	}
	user.LastLogin = &now

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", utils.NewInternalError()
	}
	return user, token, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, utils.NewInternalError()
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input models.ProfileUpdateInput) (*models.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, utils.NewInternalError()
	}

	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.users.GetByEmail(ctx, *input.Email)
		if err == nil && existing.ID != userID {
			return nil, utils.NewDuplicateError("email already exists")
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewInternalError()
		}
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}

	updated, err := s.users.UpdateProfile(ctx, user)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, utils.NewDuplicateError("email already exists")
		}
		return nil, utils.NewInternalError()
	}
	return updated, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return utils.NewValidationError("old_password and new_password are required")
	}
	if len(newPassword) < s.cfg.PasswordMinLen {
		return utils.NewValidationError(fmt.Sprintf("password must be at least %d characters", s.cfg.PasswordMinLen))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return utils.NewNotFoundError("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return utils.NewAuthError("invalid old password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.NewInternalError()
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return utils.NewInternalError()
	}
	return nil
}

// ForgotPassword issues a single-use, time-boxed reset token. Only its hash
// is stored; the raw token would normally leave through email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error) {
	normalized, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewNotFoundError("user not found")
		}
		return nil, utils.NewInternalError()
	}

	rawToken, err := generateResetToken()
	if err != nil {
		return nil, utils.NewInternalError()
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hashResetToken(rawToken), expiresAt); err != nil {
		return nil, utils.NewInternalError()
	}

	result := &ForgotPasswordResult{Message: "password reset token generated"}
	if s.cfg.EnableDevResetTokens {
		result.ResetToken = rawToken
	}
	return result, nil
}

// ResetPassword accepts the raw token, re-hashes it for lookup, and rejects
// when no matching non-expired record exists.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" || newPassword == "" {
		return utils.NewValidationError("reset token and password are required")
	}
	if len(newPassword) < s.cfg.PasswordMinLen {
		return utils.NewValidationError(fmt.Sprintf("password must be at least %d characters", s.cfg.PasswordMinLen))
	}

	user, err := s.users.GetByResetTokenHash(ctx, hashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return utils.NewValidationError("reset token is invalid or expired")
		}
		return utils.NewInternalError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.NewInternalError()
	}
	// UpdatePassword clears the token fields, making the token single-use.
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return utils.NewInternalError()
	}
	return nil
}

func (s *AuthService) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return utils.NewNotFoundError("user not found")
		}
		return utils.NewInternalError()
	}
	return nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
