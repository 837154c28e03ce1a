package handlers

import (
	"math"
	"net/http"

	"inkwell/internal/apperror"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const usersPerPage = 50

type AdminHandler struct {
	users  *repository.Users
	logger *zap.Logger
}

func NewAdminHandler(users *repository.Users, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, logger: logger}
}

// ListUsers shows the moderatable accounts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	if err := auth.RequireAdmin(middleware.CurrentUser(c)); err != nil {
		RenderError(c, err)
		return
	}

	page := pageParam(c)
	offset := (page - 1) * usersPerPage

	users, total, err := h.users.ListNonAdmin(c.Request.Context(), usersPerPage, offset)
	if err != nil {
		RenderError(c, err)
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(usersPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	Render(c, http.StatusOK, "admin/users.html", gin.H{
		"Title":       "User management",
		"Users":       users,
		"CurrentPage": page,
		"TotalPages":  totalPages,
	})
}

// DeleteUser removes a non-admin account with everything it owns.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := auth.RequireAdmin(actor); err != nil {
		RenderError(c, err)
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		RenderError(c, err)
		return
	}
	target, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	if target.IsAdmin() {
		RenderError(c, apperror.ErrForbidden)
		return
	}

	if _, err := h.users.Delete(c.Request.Context(), id); err != nil {
		RenderError(c, err)
		return
	}
	h.logger.Info("user removed by admin",
		zap.Uint("user_id", id), zap.Uint("admin_id", actor.ID))
	c.Redirect(http.StatusSeeOther, "/admin/users")
}
