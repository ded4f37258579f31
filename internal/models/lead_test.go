package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadCreateInputValidate(t *testing.T) {
	t.Run("normalizes names and email", func(t *testing.T) {
		input := LeadCreateInput{
			FirstName: "  Ravi ",
			LastName:  "Sharma",
			Email:     "Ravi.Sharma@Example.COM",
			Source:    SourceReferral,
		}
		require.NoError(t, input.Validate())
		assert.Equal(t, "ravi", input.FirstName)
		assert.Equal(t, "sharma", input.LastName)
		assert.Equal(t, "ravi.sharma@example.com", input.Email)
	})

	t.Run("rejects bad phone", func(t *testing.T) {
		phone := "not-a-phone"
		input := LeadCreateInput{
			FirstName: "ravi", LastName: "sharma",
			Email: "r@example.com", Source: SourceOther, Phone: &phone,
		}
		require.Error(t, input.Validate())
	})

	t.Run("accepts international phone", func(t *testing.T) {
		phone := "+919876543210"
		input := LeadCreateInput{
			FirstName: "ravi", LastName: "sharma",
			Email: "r@example.com", Source: SourceOther, Phone: &phone,
		}
		require.NoError(t, input.Validate())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		input := LeadCreateInput{
			FirstName: "ravi", LastName: "sharma",
			Email: "not-an-email", Source: SourceOther,
		}
		require.Error(t, input.Validate())
	})
}

func TestLeadCreateInputDefaults(t *testing.T) {
	input := LeadCreateInput{
		FirstName: "ravi", LastName: "sharma",
		Email: "r@example.com", Source: SourceEvents,
	}
	require.NoError(t, input.Validate())

	lead := input.Lead()
	assert.Equal(t, StatusNew, lead.Status)
	assert.Equal(t, 0, lead.Score)
	assert.Equal(t, 0.0, lead.LeadValue)
	assert.False(t, lead.IsQualified)
}

func TestLeadUpdateInputApply(t *testing.T) {
	now := time.Now()
	lead := &Lead{Status: StatusNew, Score: 10}

	t.Run("status change stamps last activity", func(t *testing.T) {
		status := StatusQualified
		changed := (&LeadUpdateInput{Status: &status}).Apply(lead, now)
		assert.True(t, changed)
		require.NotNil(t, lead.LastActivityAt)
		assert.True(t, lead.LastActivityAt.Equal(now))
	})

	t.Run("same status does not restamp", func(t *testing.T) {
		later := now.Add(time.Hour)
		status := StatusQualified
		score := 55
		changed := (&LeadUpdateInput{Status: &status, Score: &score}).Apply(lead, later)
		assert.False(t, changed)
		assert.Equal(t, 55, lead.Score)
		assert.True(t, lead.LastActivityAt.Equal(now))
	})
}
