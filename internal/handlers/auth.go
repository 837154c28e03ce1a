package handlers

import (
	"net/http"

	"inkwell/internal/apperror"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users  *repository.Users
	tokens *repository.RefreshTokens
	logger *zap.Logger
}

func NewAuthHandler(users *repository.Users, tokens *repository.RefreshTokens, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	params := repository.CreateUserParams{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		Gender:   c.PostForm("gender"),
	}

	user, err := h.users.Create(c.Request.Context(), params)
	if err != nil {
		Render(c, apperror.Status(err), "auth/register.html", gin.H{
			"Error":    apperror.Message(err),
			"Username": params.Username,
			"Email":    params.Email,
		})
		return
	}

	h.logger.Info("user registered", zap.Uint("user_id", user.ID))
	Render(c, http.StatusCreated, "auth/login.html", gin.H{"Success": "Account created, please log in."})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

// Login accepts either username or email as identifier and establishes the
// session. With "remember me" checked it also issues a refresh token.
func (h *AuthHandler) Login(c *gin.Context) {
	identifier := c.PostForm("identifier")
	password := c.PostForm("password")

	user, err := auth.Authenticate(c.Request.Context(), h.users, identifier, password)
	if err != nil {
		Render(c, apperror.Status(err), "auth/login.html", gin.H{
			"Error":      "wrong credentials",
			"Identifier": identifier,
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	if c.PostForm("remember") == "on" {
		token, err := h.tokens.Create(c.Request.Context(), user.ID, c.Request.UserAgent(), c.ClientIP())
		if err == nil {
			c.SetCookie(middleware.RememberCookie, token.Token,
				int(repository.TokenTTL.Seconds()), "/", "", false, true)
		}
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the session and invalidates the remember token if present.
func (h *AuthHandler) Logout(c *gin.Context) {
	if value, err := c.Cookie(middleware.RememberCookie); err == nil && value != "" {
		if err := h.tokens.Invalidate(c.Request.Context(), value); err != nil {
			h.logger.Warn("failed to invalidate remember token", zap.Error(err))
		}
		c.SetCookie(middleware.RememberCookie, "", -1, "/", "", false, true)
	}

	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// Me renders the authenticated user's own record.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, user)
}
