package handlers

import (
	"net/http"

	"inkwell/internal/apperror"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	users    *repository.Users
	posts    *repository.Posts
	comments *repository.Comments
	avatars  *storage.AvatarStore
	logger   *zap.Logger
}

func NewUserHandler(users *repository.Users, posts *repository.Posts, comments *repository.Comments, avatars *storage.AvatarStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, posts: posts, comments: comments, avatars: avatars, logger: logger}
}

// Profile - public user page /u/:id
func (h *UserHandler) Profile(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		RenderError(c, err)
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}

	posts, err := h.posts.ListByUser(c.Request.Context(), user.ID, 50, 0)
	if err != nil {
		RenderError(c, err)
		return
	}

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":        user.Username,
		"User":         user,
		"Posts":        posts,
		"PostCount":    h.posts.CountByUser(c.Request.Context(), user.ID),
		"CommentCount": h.comments.CountByUser(c.Request.Context(), user.ID),
	})
}

func (h *UserHandler) ShowSettings(c *gin.Context) {
	Render(c, http.StatusOK, "user/settings.html", gin.H{
		"Title": "Settings",
		"User":  middleware.CurrentUser(c),
	})
}

// UpdateSettings applies profile changes. Empty form fields are left
// unchanged; an uploaded avatar replaces the old file, which is cleaned up
// best-effort by the repository.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var patch repository.UserPatch
	if username := c.PostForm("username"); username != "" {
		patch.Username = &username
	}
	if email := c.PostForm("email"); email != "" {
		patch.Email = &email
	}
	if gender := c.PostForm("gender"); gender != "" {
		patch.Gender = &gender
	}

	if file, header, err := c.Request.FormFile("avatar"); err == nil {
		defer file.Close()
		path, err := h.avatars.Save(file, header)
		if err != nil {
			Render(c, apperror.Status(err), "user/settings.html", gin.H{
				"Error": apperror.Message(err),
				"User":  actor,
			})
			return
		}
		patch.Avatar = &path
	}

	if _, err := h.users.Update(c.Request.Context(), actor.ID, patch); err != nil {
		Render(c, apperror.Status(err), "user/settings.html", gin.H{
			"Error": apperror.Message(err),
			"User":  actor,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/settings")
}

// UpdatePassword re-verifies the current password before changing it.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	err := h.users.UpdatePassword(
		c.Request.Context(),
		actor.ID,
		c.PostForm("current_password"),
		c.PostForm("new_password"),
		c.PostForm("confirm_password"),
	)
	if err != nil {
		Render(c, apperror.Status(err), "user/settings.html", gin.H{
			"Error": apperror.Message(err),
			"User":  actor,
		})
		return
	}

	h.logger.Info("password changed", zap.Uint("user_id", actor.ID))
	c.Redirect(http.StatusSeeOther, "/settings")
}

// DeleteAccount removes the acting user and everything they own, then ends
// the session.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	if _, err := h.users.Delete(c.Request.Context(), actor.ID); err != nil {
		RenderError(c, err)
		return
	}
	h.logger.Info("account deleted", zap.Uint("user_id", actor.ID))

	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusSeeOther, "/")
}
