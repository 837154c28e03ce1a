package handlers

import (
	"inkwell/internal/apperror"
	"inkwell/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like the current user
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, exists := c.Get(middleware.CurrentUserKey); exists {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError maps an error from the taxonomy to its status code and shows
// the error page with a short reason. Internal detail never reaches the page.
func RenderError(c *gin.Context, err error) {
	Render(c, apperror.Status(err), "error.html", gin.H{"Error": apperror.Message(err)})
}
