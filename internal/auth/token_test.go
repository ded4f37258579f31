package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lead-management-server/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:        "user-1",
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane.doe@example.com",
	}
}

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, err := tm.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane.doe@example.com", claims.Email)
	assert.Equal(t, "jane", claims.FirstName)
	assert.Equal(t, "doe", claims.LastName)
}

func TestVerifyExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", -time.Minute)

	token, err := tm.Issue(testUser())
	require.NoError(t, err)

	_, err = tm.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret", time.Hour)
	verifier := NewTokenManager("other-secret", time.Hour)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyGarbage(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	_, err := tm.Verify("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
