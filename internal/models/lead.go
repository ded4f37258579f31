package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"lead-management-server/internal/utils"
)

const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusLost      = "lost"
	StatusWon       = "won"
)

const (
	SourceWebsite     = "website"
	SourceFacebookAds = "facebook_ads"
	SourceGoogleAds   = "google_ads"
	SourceReferral    = "referral"
	SourceEvents      = "events"
	SourceOther       = "other"
)

var (
	LeadStatuses = []string{StatusNew, StatusContacted, StatusQualified, StatusLost, StatusWon}
	LeadSources  = []string{SourceWebsite, SourceFacebookAds, SourceGoogleAds, SourceReferral, SourceEvents, SourceOther}

	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

type Lead struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	Company        *string    `json:"company,omitempty"`
	City           *string    `json:"city,omitempty"`
	State          *string    `json:"state,omitempty"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	Score          int        `json:"score"`
	LeadValue      float64    `json:"lead_value"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	IsQualified    bool       `json:"is_qualified"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LeadCreateInput is the raw create payload; Validate normalizes it and
// applies the documented defaults.
type LeadCreateInput struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Phone       *string  `json:"phone"`
	Company     *string  `json:"company"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	Source      string   `json:"source"`
	Status      *string  `json:"status"`
	Score       *int     `json:"score"`
	LeadValue   *float64 `json:"lead_value"`
	IsQualified *bool    `json:"is_qualified"`
}

// LeadUpdateInput is a partial update; nil fields are left untouched.
type LeadUpdateInput struct {
	FirstName   *string  `json:"first_name"`
	LastName    *string  `json:"last_name"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	Company     *string  `json:"company"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	Source      *string  `json:"source"`
	Status      *string  `json:"status"`
	Score       *int     `json:"score"`
	LeadValue   *float64 `json:"lead_value"`
	IsQualified *bool    `json:"is_qualified"`
}

// Validate normalizes the input in place and returns the first rule violated.
// It runs before any store write so the rules stay independent of the storage
// layer.
func (in *LeadCreateInput) Validate() error {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Source == "" {
		return utils.NewValidationError("first_name, last_name, email, and source are required")
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
	if !validSource(in.Source) {
		return utils.NewValidationError(enumMessage("source", LeadSources))
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return utils.NewValidationError(enumMessage("status", LeadStatuses))
	}
	if err := validateOptional(in.Phone, in.Company, in.City, in.State); err != nil {
		return err
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return utils.NewValidationError("score must be between 0 and 100")
	}
	if in.LeadValue != nil && *in.LeadValue < 0 {
		return utils.NewValidationError("lead_value must not be negative")
	}

	in.FirstName = first
	in.LastName = last
	in.Email = email
	return nil
}

// Lead builds a Lead with defaults applied; call after Validate.
func (in *LeadCreateInput) Lead() *Lead {
	lead := &Lead{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
		City:      in.City,
		State:     in.State,
		Source:    in.Source,
		Status:    StatusNew,
	}
	if in.Status != nil {
		lead.Status = *in.Status
	}
	if in.Score != nil {
		lead.Score = *in.Score
	}
	if in.LeadValue != nil {
		lead.LeadValue = *in.LeadValue
	}
	if in.IsQualified != nil {
		lead.IsQualified = *in.IsQualified
	}
	return lead
}

func (in *LeadUpdateInput) Validate() error {
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
	if in.Source != nil && !validSource(*in.Source) {
		return utils.NewValidationError(enumMessage("source", LeadSources))
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return utils.NewValidationError(enumMessage("status", LeadStatuses))
	}
	if err := validateOptional(in.Phone, in.Company, in.City, in.State); err != nil {
		return err
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return utils.NewValidationError("score must be between 0 and 100")
	}
	if in.LeadValue != nil && *in.LeadValue < 0 {
		return utils.NewValidationError("lead_value must not be negative")
	}
	return nil
}

// Apply merges the update into the lead, setting last_activity_at when the
// status actually changes. It reports whether the status changed.
func (in *LeadUpdateInput) Apply(lead *Lead, now time.Time) bool {
	if in.FirstName != nil {
		lead.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		lead.LastName = *in.LastName
	}
	if in.Email != nil {
		lead.Email = *in.Email
	}
	if in.Phone != nil {
		lead.Phone = in.Phone
	}
	if in.Company != nil {
		lead.Company = in.Company
	}
	if in.City != nil {
		lead.City = in.City
	}
	if in.State != nil {
		lead.State = in.State
	}
	if in.Source != nil {
		lead.Source = *in.Source
	}

	statusChanged := false
	if in.Status != nil && *in.Status != lead.Status {
		lead.Status = *in.Status
		lead.LastActivityAt = &now
		statusChanged = true
	}
	if in.Score != nil {
		lead.Score = *in.Score
	}
	if in.LeadValue != nil {
		lead.LeadValue = *in.LeadValue
	}
	if in.IsQualified != nil {
		lead.IsQualified = *in.IsQualified
	}
	return statusChanged
}

func validateOptional(phone, company, city, state *string) error {
	if phone != nil {
		trimmed := strings.TrimSpace(*phone)
		if trimmed != "" && !phonePattern.MatchString(trimmed) {
			return utils.NewValidationError("please enter a valid phone number")
		}
		*phone = trimmed
	}
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"company", company},
		{"city", city},
		{"state", state},
	} {
		if field.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*field.value)
		if len(trimmed) > 100 {
			return utils.NewValidationError(fmt.Sprintf("%s must not exceed 100 characters", field.name))
		}
		*field.value = trimmed
	}
	return nil
}

func validStatus(status string) bool {
	return contains(LeadStatuses, status)
}

func validSource(source string) bool {
	return contains(LeadSources, source)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func enumMessage(field string, values []string) string {
	return fmt.Sprintf("%s must be one of: %s", field, strings.Join(values, ", "))
}
