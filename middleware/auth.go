package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"zyncchat-api/models"
	"zyncchat-api/services"
	"zyncchat-api/utils"
)

const (
	// SessionCookie mirrors the bearer token for browser clients.
	SessionCookie = "jwt"

	userKey   = "user"
	userIDKey = "user_id"
)

// SessionToken extracts the bearer token, falling back to the session cookie.
func SessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session and attaches the
// resolved user to the context.
func AuthMiddleware(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			abortUnauthorized(c, "Unauthorized: No token provided")
			return
		}

		user, _, err := sessions.Verify(c.Request.Context(), token)
		if err != nil {
			if appErr, ok := utils.AsAppError(err); ok && appErr.Kind == utils.KindUnauthorized {
				abortUnauthorized(c, appErr.Message)
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid session is presented and
// otherwise lets the request through anonymously.
func OptionalAuth(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := SessionToken(c); token != "" {
			if user, _, err := sessions.Verify(c.Request.Context(), token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
		Success: false,
		Message: message,
	})
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
	c.Set(userIDKey, user.ID)
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// OptionalUserID returns nil for anonymous requests.
func OptionalUserID(c *gin.Context) *string {
	if id := CurrentUserID(c); id != "" {
		return &id
	}
	return nil
}
