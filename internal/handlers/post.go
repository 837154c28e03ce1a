package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"inkwell/internal/apperror"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const postsPerPage = 30

type PostHandler struct {
	posts    *repository.Posts
	comments *repository.Comments
	logger   *zap.Logger
}

func NewPostHandler(posts *repository.Posts, comments *repository.Comments, logger *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, logger: logger}
}

func pageParam(c *gin.Context) int {
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	return page
}

func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad id: %w", apperror.ErrNotFound)
	}
	return uint(id), nil
}

func (h *PostHandler) List(c *gin.Context) {
	page := pageParam(c)
	offset := (page - 1) * postsPerPage

	posts, total, err := h.posts.List(c.Request.Context(), postsPerPage, offset)
	if err != nil {
		RenderError(c, err)
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(postsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Title":       "Latest posts",
		"Posts":       posts,
		"CurrentPage": page,
		"TotalPages":  totalPages,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		RenderError(c, err)
		return
	}

	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	comments, err := h.comments.ListByPost(c.Request.Context(), post.ID)
	if err != nil {
		RenderError(c, err)
		return
	}

	actor := middleware.CurrentUser(c)
	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Title":    post.Title,
		"Post":     post,
		"Content":  utils.RenderMarkdown(post.Content),
		"Comments": comments,
		"CanEdit":  auth.CanModify(actor, post.UserID),
		"IsAdmin":  actor != nil && actor.IsAdmin(),
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/create.html", nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	post, err := h.posts.Create(c.Request.Context(), actor.ID, c.PostForm("title"), c.PostForm("content"))
	if err != nil {
		Render(c, apperror.Status(err), "post/create.html", gin.H{
			"Error":   apperror.Message(err),
			"Title":   c.PostForm("title"),
			"Content": c.PostForm("content"),
		})
		return
	}

	h.logger.Info("post created", zap.Uint("post_id", post.ID), zap.Uint("user_id", actor.ID))
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/p/%d", post.ID))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		RenderError(c, err)
		return
	}
	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	if !auth.CanModify(middleware.CurrentUser(c), post.UserID) {
		RenderError(c, apperror.ErrForbidden)
		return
	}
	Render(c, http.StatusOK, "post/edit.html", gin.H{"Post": post})
}

// Update applies the submitted fields; omitted fields stay unchanged.
func (h *PostHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		RenderError(c, err)
		return
	}
	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	if !auth.CanModify(middleware.CurrentUser(c), post.UserID) {
		RenderError(c, apperror.ErrForbidden)
		return
	}

	var patch repository.PostPatch
	if title, ok := c.GetPostForm("title"); ok {
		patch.Title = &title
	}
	if content, ok := c.GetPostForm("content"); ok {
		patch.Content = &content
	}

	if _, err := h.posts.Update(c.Request.Context(), id, patch); err != nil {
		Render(c, apperror.Status(err), "post/edit.html", gin.H{
			"Error": apperror.Message(err),
			"Post":  post,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/p/%d", id))
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		RenderError(c, err)
		return
	}
	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	if !auth.CanModify(middleware.CurrentUser(c), post.UserID) {
		RenderError(c, apperror.ErrForbidden)
		return
	}

	if _, err := h.posts.Delete(c.Request.Context(), id); err != nil {
		RenderError(c, err)
		return
	}
	h.logger.Info("post deleted", zap.Uint("post_id", id))
	c.Redirect(http.StatusSeeOther, "/")
}
