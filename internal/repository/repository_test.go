package repository

import (
	"context"
	"path/filepath"
	"testing"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return conn
}

func newTestRepos(t *testing.T) (*Users, *Posts, *Comments, *RefreshTokens) {
	t.Helper()
	conn := newTestDB(t)
	logger := zap.NewNop()
	return NewUsers(conn, logger, nil),
		NewPosts(conn, logger),
		NewComments(conn, logger),
		NewRefreshTokens(conn, logger)
}

func mustCreateUser(t *testing.T, users *Users, username, email string) *models.User {
	t.Helper()
	user, err := users.Create(context.Background(), CreateUserParams{
		Username: username,
		Email:    email,
		Password: "pw123456",
	})
	require.NoError(t, err)
	return user
}

func mustCreatePost(t *testing.T, posts *Posts, userID uint, title string) *models.Post {
	t.Helper()
	post, err := posts.Create(context.Background(), userID, title, "some content")
	require.NoError(t, err)
	return post
}

// recordingRemover captures best-effort avatar cleanup calls.
type recordingRemover struct {
	removed []string
}

func (r *recordingRemover) Remove(path string) {
	r.removed = append(r.removed, path)
}
