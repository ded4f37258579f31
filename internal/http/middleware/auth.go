package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"lead-management-server/internal/auth"
	"lead-management-server/internal/repo"
	"lead-management-server/internal/utils"
)

const (
	// ContextUserKey holds the resolved *models.User for downstream handlers.
	ContextUserKey = "current_user"
	// ContextUserIDKey holds the authenticated user id.
	ContextUserIDKey = "user_id"
)

// AuthRequired extracts the session token from the cookie or the
// Authorization header (cookie wins when both are present), verifies it, and
// resolves the user it names. A token for a deleted account is rejected even
// though its signature still verifies.
func AuthRequired(tokens *auth.TokenManager, users repo.UserStore, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c, cookieName)
		if tokenStr == "" {
			abort(c, "unauthenticated, please login")
			return
		}

		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abort(c, "token expired, please login again")
				return
			}
			abort(c, "invalid token")
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abort(c, "user not found")
			return
		}
		user.PasswordHash = ""

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func abort(c *gin.Context, message string) {
	utils.RespondError(c, utils.NewAuthError(message))
	c.Abort()
}
