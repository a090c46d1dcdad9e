package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
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

// GetActor returns the authenticated caller. The zero Actor means anonymous.
func GetActor(c *gin.Context) Actor {
	actor := Actor{ID: GetUserID(c)}
	if v, ok := c.Get(userRoleKey); ok {
		if r, ok := v.(Role); ok {
			actor.Role = r
		}
	}
	return actor
}

func setActor(c *gin.Context, actor Actor) {
	c.Set(userIDKey, actor.ID)
	c.Set(userRoleKey, actor.Role)
}
