package middleware

import (
	"net/http"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CurrentUserKey = "current_user"

// RememberCookie carries the opaque refresh token for persistent login.
const RememberCookie = "remember_token"

const rememberCookieMaxAge = int(repository.TokenTTL / time.Second)

// LoadUser resolves the acting user from the session and sets it on the
// context. When the session is empty it tries to revive it from a valid
// remember token, rotating the token on use. A user id that no longer
// resolves leaves the request anonymous.
func LoadUser(users *repository.Users, tokens *repository.RefreshTokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")

		if userID == nil {
			if id, ok := reviveFromToken(c, tokens); ok {
				session.Set("user_id", id)
				session.Save()
				userID = id
			}
		}

		if id, ok := userID.(uint); ok {
			user, err := users.GetByID(c.Request.Context(), id)
			if err == nil {
				c.Set(CurrentUserKey, user)
			} else {
				// Stale reference, drop back to anonymous
				session.Delete("user_id")
				session.Save()
			}
		}
		c.Next()
	}
}

func reviveFromToken(c *gin.Context, tokens *repository.RefreshTokens) (uint, bool) {
	value, err := c.Cookie(RememberCookie)
	if err != nil || value == "" {
		return 0, false
	}

	record, err := tokens.GetByToken(c.Request.Context(), value)
	if err != nil || !record.Usable(time.Now()) {
		c.SetCookie(RememberCookie, "", -1, "/", "", false, true)
		return 0, false
	}

	if err := tokens.Rotate(c.Request.Context(), record); err != nil {
		return 0, false
	}
	c.SetCookie(RememberCookie, record.Token, rememberCookieMaxAge, "/", "", false, true)
	return record.UserID, true
}

// AuthRequired rejects anonymous requests with 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CurrentUserKey); !exists {
			c.HTML(http.StatusUnauthorized, "error.html", gin.H{"Error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the acting user set by LoadUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CurrentUserKey); exists {
		return u.(*models.User)
	}
	return nil
}
