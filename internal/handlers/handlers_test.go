package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/router"
	"inkwell/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testApp struct {
	engine *gin.Engine
	users  *repository.Users
	posts  *repository.Posts
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")),
		&gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	logger := zap.NewNop()
	avatars, err := storage.NewAvatarStore(t.TempDir(), "/static/avatars", logger)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:           "test",
		SessionSecret: "test-secret",
		SessionName:   "inkwell_session",
		TemplatesDir:  "../../web/templates",
		StaticDir:     "../../web/static",
	}

	users := repository.NewUsers(conn, logger, avatars)
	posts := repository.NewPosts(conn, logger)
	engine := router.New(cfg, router.Deps{
		Users:    users,
		Posts:    posts,
		Comments: repository.NewComments(conn, logger),
		Tokens:   repository.NewRefreshTokens(conn, logger),
		Avatars:  avatars,
		Logger:   logger,
	})

	// seed an admin directly, registration only creates regular users
	hash, err := auth.HashPassword("adminpw1")
	require.NoError(t, err)
	require.NoError(t, conn.Create(&models.User{
		Username: "root",
		Email:    "root@x.com",
		Password: hash,
		Role:     models.RoleAdmin,
		Gender:   models.GenderUnspecified,
		Avatar:   models.DefaultAvatar,
	}).Error)

	return &testApp{engine: engine, users: users, posts: posts}
}

// browser replays cookies across requests, like a real client would.
type browser struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.app.engine.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
		} else {
			b.cookies[c.Name] = c
		}
	}
	return w
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil)
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, target, form)
}

func (b *browser) signup(username, email string) {
	b.t.Helper()
	w := b.post("/signup", url.Values{
		"username": {username},
		"email":    {email},
		"password": {"pw123456"},
	})
	require.Equal(b.t, http.StatusCreated, w.Code)
}

func (b *browser) login(identifier, password string) *httptest.ResponseRecorder {
	return b.post("/login", url.Values{
		"identifier": {identifier},
		"password":   {password},
	})
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	b.signup("alice", "alice@x.com")

	t.Run("login by email", func(t *testing.T) {
		w := b.login("alice@x.com", "pw123456")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		me := b.get("/me")
		assert.Equal(t, http.StatusOK, me.Code)
		assert.Contains(t, me.Body.String(), `"username":"alice"`)
		assert.NotContains(t, me.Body.String(), "pw123456")
	})

	t.Run("login by username", func(t *testing.T) {
		w := app.browser(t).login("alice", "pw123456")
		assert.Equal(t, http.StatusSeeOther, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := app.browser(t).login("alice", "wrongpw")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "wrong credentials")
	})

	t.Run("unknown identifier", func(t *testing.T) {
		w := app.browser(t).login("nobody", "pw123456")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := app.browser(t).post("/signup", url.Values{
			"username": {"alice2"},
			"email":    {"alice@x.com"},
			"password": {"pw123456"},
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	for _, target := range []string{"/me", "/submit", "/settings"} {
		w := b.get(target)
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}

func TestPostLifecycle(t *testing.T) {
	app := newTestApp(t)

	alice := app.browser(t)
	alice.signup("alice", "alice@x.com")
	alice.login("alice", "pw123456")

	w := alice.post("/submit", url.Values{
		"title":   {"hello world"},
		"content": {"original content"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/p/"))

	t.Run("detail is public", func(t *testing.T) {
		w := app.browser(t).get(location)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "hello world")
	})

	t.Run("another user cannot edit", func(t *testing.T) {
		bob := app.browser(t)
		bob.signup("bob", "bob@x.com")
		bob.login("bob", "pw123456")

		w := bob.post(location+"/edit", url.Values{"title": {"hijacked"}})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = bob.post(location+"/delete", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("title-only edit keeps content", func(t *testing.T) {
		w := alice.post(location+"/edit", url.Values{"title": {"new title"}})
		require.Equal(t, http.StatusSeeOther, w.Code)

		detail := alice.get(location)
		assert.Contains(t, detail.Body.String(), "new title")
		assert.Contains(t, detail.Body.String(), "original content")
	})

	t.Run("owner can delete", func(t *testing.T) {
		w := alice.post(location+"/delete", nil)
		require.Equal(t, http.StatusSeeOther, w.Code)

		gone := alice.get(location)
		assert.Equal(t, http.StatusNotFound, gone.Code)
	})
}

func TestComments(t *testing.T) {
	app := newTestApp(t)

	alice := app.browser(t)
	alice.signup("alice", "alice@x.com")
	alice.login("alice", "pw123456")
	w := alice.post("/submit", url.Values{"title": {"a post"}, "content": {"text"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")

	bob := app.browser(t)
	bob.signup("bob", "bob@x.com")
	bob.login("bob", "pw123456")

	w = bob.post(location+"/comment", url.Values{"content": {"great read"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	detail := app.browser(t).get(location)
	assert.Contains(t, detail.Body.String(), "great read")

	t.Run("only the author can edit", func(t *testing.T) {
		w := alice.post("/comment/1/edit", url.Values{"content": {"rewritten"}})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = bob.post("/comment/1/edit", url.Values{"content": {"rewritten"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
	})

	t.Run("commenting on a missing post", func(t *testing.T) {
		w := bob.post("/p/9999/comment", url.Values{"content": {"void"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminModeration(t *testing.T) {
	app := newTestApp(t)

	alice := app.browser(t)
	alice.signup("alice", "alice@x.com")
	alice.login("alice", "pw123456")
	w := alice.post("/submit", url.Values{"title": {"doomed"}, "content": {"text"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")

	t.Run("regular users are rejected", func(t *testing.T) {
		w := alice.get("/admin/users")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	admin := app.browser(t)
	require.Equal(t, http.StatusSeeOther, admin.login("root", "adminpw1").Code)

	t.Run("admin lists non-admin users", func(t *testing.T) {
		w := admin.get("/admin/users")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice")
		assert.NotContains(t, w.Body.String(), "root@x.com")
	})

	t.Run("admin removes a user and their posts", func(t *testing.T) {
		alice2, err := app.users.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)

		w := admin.post(fmt.Sprintf("/admin/users/%d/delete", alice2.ID), nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)

		gone := app.browser(t).get(location)
		assert.Equal(t, http.StatusNotFound, gone.Code)
	})

	t.Run("admins cannot remove admins", func(t *testing.T) {
		root, err := app.users.GetByUsername(context.Background(), "root")
		require.NoError(t, err)

		w := admin.post(fmt.Sprintf("/admin/users/%d/delete", root.ID), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRememberMe(t *testing.T) {
	app := newTestApp(t)

	b := app.browser(t)
	b.signup("alice", "alice@x.com")
	w := b.post("/login", url.Values{
		"identifier": {"alice"},
		"password":   {"pw123456"},
		"remember":   {"on"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)

	remember, ok := b.cookies["remember_token"]
	require.True(t, ok, "remember-me login sets the token cookie")

	t.Run("token revives a fresh session", func(t *testing.T) {
		fresh := app.browser(t)
		fresh.cookies["remember_token"] = remember

		w := fresh.get("/me")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"alice"`)

		rotated := fresh.cookies["remember_token"]
		require.NotNil(t, rotated)
		assert.NotEqual(t, remember.Value, rotated.Value, "token rotates on use")
	})

	t.Run("logout invalidates the current token", func(t *testing.T) {
		current := b.cookies["remember_token"]
		require.NotNil(t, current)

		w := b.get("/logout")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.NotContains(t, b.cookies, "remember_token")

		replayed := app.browser(t)
		replayed.cookies["remember_token"] = current
		assert.Equal(t, http.StatusUnauthorized, replayed.get("/me").Code)
	})
}

func TestSettings(t *testing.T) {
	app := newTestApp(t)

	b := app.browser(t)
	b.signup("alice", "alice@x.com")
	b.login("alice", "pw123456")

	t.Run("empty fields are left unchanged", func(t *testing.T) {
		w := b.post("/settings", url.Values{"gender": {models.GenderFemale}})
		require.Equal(t, http.StatusSeeOther, w.Code)

		user, err := app.users.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, models.GenderFemale, user.Gender)
		assert.Equal(t, "alice@x.com", user.Email)
	})

	t.Run("password change", func(t *testing.T) {
		w := b.post("/settings/password", url.Values{
			"current_password": {"pw123456"},
			"new_password":     {"changed12"},
			"confirm_password": {"changed12"},
		})
		require.Equal(t, http.StatusSeeOther, w.Code)

		assert.Equal(t, http.StatusUnauthorized, app.browser(t).login("alice", "pw123456").Code)
		assert.Equal(t, http.StatusSeeOther, app.browser(t).login("alice", "changed12").Code)
	})

	t.Run("account deletion ends the session", func(t *testing.T) {
		w := b.post("/settings/delete", nil)
		require.Equal(t, http.StatusSeeOther, w.Code)

		assert.Equal(t, http.StatusUnauthorized, b.get("/me").Code)
		assert.Equal(t, http.StatusNotFound, app.browser(t).login("alice", "changed12").Code)
	})
}
