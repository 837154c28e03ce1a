package router

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/storage"
	"inkwell/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the process-scoped components constructed once at startup and
// handed to every handler. Nothing here is a package global.
type Deps struct {
	Users    *repository.Users
	Posts    *repository.Posts
	Comments *repository.Comments
	Tokens   *repository.RefreshTokens
	Avatars  *storage.AvatarStore
	Logger   *zap.Logger
}

// New assembles the engine: sessions, templates, static assets, middleware
// and all routes.
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions(cfg.SessionName, store))

	r.HTMLRender = loadTemplates(cfg.TemplatesDir)
	r.Static("/static", cfg.StaticDir)

	r.Use(middleware.LoadUser(deps.Users, deps.Tokens))

	// Handlers
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, deps.Logger)
	postHandler := handlers.NewPostHandler(deps.Posts, deps.Comments, deps.Logger)
	commentHandler := handlers.NewCommentHandler(deps.Comments, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Posts, deps.Comments, deps.Avatars, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Users, deps.Logger)

	// Public routes
	r.GET("/", postHandler.List)
	r.GET("/p/:id", postHandler.Detail)
	r.GET("/u/:id", userHandler.Profile)

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)

		authorized.GET("/submit", postHandler.ShowCreate)
		authorized.POST("/submit", postHandler.Create)
		authorized.GET("/p/:id/edit", postHandler.ShowEdit)
		authorized.POST("/p/:id/edit", postHandler.Update)
		authorized.POST("/p/:id/delete", postHandler.Delete)

		authorized.POST("/p/:id/comment", commentHandler.Create)
		authorized.POST("/comment/:id/edit", commentHandler.Update)
		authorized.POST("/comment/:id/delete", commentHandler.Delete)

		authorized.GET("/settings", userHandler.ShowSettings)
		authorized.POST("/settings", userHandler.UpdateSettings)
		authorized.POST("/settings/password", userHandler.UpdatePassword)
		authorized.POST("/settings/delete", userHandler.DeleteAccount)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:id/delete", adminHandler.DeleteUser)
	}

	return r
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+1)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"markdown": utils.RenderMarkdown,
		"timeAgo": func(t time.Time) string {
			duration := time.Since(t)
			seconds := int(duration.Seconds())

			switch {
			case seconds < 60:
				return fmt.Sprintf("%ds ago", seconds)
			case seconds < 3600:
				return fmt.Sprintf("%dm ago", seconds/60)
			case seconds < 86400:
				return fmt.Sprintf("%dh ago", seconds/3600)
			default:
				return fmt.Sprintf("%dd ago", seconds/86400)
			}
		},
	}

	views := []string{
		"auth/login.html",
		"auth/register.html",
		"post/list.html",
		"post/detail.html",
		"post/create.html",
		"post/edit.html",
		"user/profile.html",
		"user/settings.html",
		"admin/users.html",
		"error.html",
	}
	for _, view := range views {
		r.AddFromFilesFuncs(view, funcMap, assemble(templatesDir+"/views/"+view)...)
	}

	return r
}
