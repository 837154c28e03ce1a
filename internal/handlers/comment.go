package handlers

import (
	"fmt"
	"net/http"

	"inkwell/internal/apperror"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *repository.Comments
	logger   *zap.Logger
}

func NewCommentHandler(comments *repository.Comments, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

func (h *CommentHandler) Create(c *gin.Context) {
	postID, err := idParam(c, "id")
	if err != nil {
		RenderError(c, err)
		return
	}

	actor := middleware.CurrentUser(c)
	_, err = h.comments.Create(c.Request.Context(), postID, actor.ID, c.PostForm("content"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/p/%d", postID))
}

// Update is allowed for the comment's author only, not the post owner.
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		RenderError(c, err)
		return
	}
	comment, err := h.comments.GetByID(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	if !auth.CanModify(middleware.CurrentUser(c), comment.UserID) {
		RenderError(c, apperror.ErrForbidden)
		return
	}

	var patch repository.CommentPatch
	if content, ok := c.GetPostForm("content"); ok {
		patch.Content = &content
	}
	if _, err := h.comments.Update(c.Request.Context(), id, patch); err != nil {
		RenderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/p/%d", comment.PostID))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		RenderError(c, err)
		return
	}
	comment, err := h.comments.GetByID(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	if !auth.CanModify(middleware.CurrentUser(c), comment.UserID) {
		RenderError(c, apperror.ErrForbidden)
		return
	}

	if _, err := h.comments.Delete(c.Request.Context(), id); err != nil {
		RenderError(c, err)
		return
	}
	h.logger.Info("comment deleted", zap.Uint("comment_id", id))
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/p/%d", comment.PostID))
}
