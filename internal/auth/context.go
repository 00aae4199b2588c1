package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey  = "userID"
	isAdminKey = "isAdmin"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// IsAdmin reports whether the authenticated user carries the admin claim.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}
