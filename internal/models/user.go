package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"lead-management-server/internal/utils"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

type User struct {
	ID                   string     `json:"id"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	LastLogin            *time.Time `json:"last_login"`
	ForgotPasswordToken  *string    `json:"-"`
	ForgotPasswordExpiry *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// RegisterInput carries the raw registration payload before validation.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// ProfileUpdateInput is a partial update; nil fields are left untouched.
type ProfileUpdateInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

// Validate normalizes the input in place and reports the first rule violated.
func (in *RegisterInput) Validate(minPasswordLen int) error {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return utils.NewValidationError("first_name, last_name, email, and password are required")
	}

	first, err := normalizeName("first_name", in.FirstName)
	if err != nil {
		return err
	}
	last, err := normalizeName("last_name", in.LastName)
	if err != nil {
		return err
	}
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return err
	}
	if len(in.Password) < minPasswordLen {
		return utils.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	in.FirstName = first
	in.LastName = last
	in.Email = email
	return nil
}

func (in *ProfileUpdateInput) Validate() error {
	if in.FirstName != nil {
		first, err := normalizeName("first_name", *in.FirstName)
		if err != nil {
			return err
		}
		in.FirstName = &first
	}
	if in.LastName != nil {
		last, err := normalizeName("last_name", *in.LastName)
		if err != nil {
			return err
		}
		in.LastName = &last
	}
	if in.Email != nil {
		email, err := NormalizeEmail(*in.Email)
		if err != nil {
			return err
		}
		in.Email = &email
	}
	return nil
}

// NormalizeEmail lowercases and trims, then checks the address shape.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(normalized) {
		return "", utils.NewValidationError("please enter a valid email")
	}
	return normalized, nil
}

func normalizeName(field, value string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if len(normalized) < 2 || len(normalized) > 60 {
		return "", utils.NewValidationError(fmt.Sprintf("%s must be between 2 and 60 characters", field))
	}
	return normalized, nil
}
