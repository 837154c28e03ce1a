package repository

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/apperror"
	"inkwell/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Posts struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPosts(db *gorm.DB, logger *zap.Logger) *Posts {
	return &Posts{db: db, logger: logger}
}

// Create inserts a post owned by userID. The owner id always comes from the
// session, never from the request body; the timestamp is server-assigned.
func (r *Posts) Create(ctx context.Context, userID uint, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperror.ErrValidation)
	}

	post := models.Post{
		UserID:  userID,
		Title:   title,
		Content: content,
	}
	if err := r.db.WithContext(ctx).Create(&post).Error; err != nil {
		r.logger.Error("failed to create post", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &post, nil
}

func (r *Posts) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "post")
	}
	return &post, nil
}

// List returns posts newest first with their authors preloaded, plus the
// total count for pagination.
func (r *Posts) List(ctx context.Context, limit, offset int) ([]models.Post, int64, error) {
	var total int64
	r.db.WithContext(ctx).Model(&models.Post{}).Count(&total)

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	r.fillCommentCounts(ctx, posts)
	return posts, total, nil
}

func (r *Posts) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	r.fillCommentCounts(ctx, posts)
	return posts, nil
}

// PostPatch carries a partial update. A nil field means "leave unchanged".
// Owner id and timestamps are not patchable.
type PostPatch struct {
	Title   *string
	Content *string
}

func (r *Posts) Update(ctx context.Context, id uint, patch PostPatch) (*models.Post, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, fmt.Errorf("%w: title is required", apperror.ErrValidation)
		}
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if len(updates) == 0 {
		return post, nil
	}

	if err := r.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
		r.logger.Error("failed to update post", zap.Uint("post_id", id), zap.Error(err))
		return nil, err
	}
	return post, nil
}

// Delete removes the post and its comments in one transaction and returns the
// pre-deletion snapshot.
func (r *Posts) Delete(ctx context.Context, id uint) (*models.Post, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := *post

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		r.logger.Error("failed to delete post", zap.Uint("post_id", id), zap.Error(err))
		return nil, err
	}
	return &snapshot, nil
}

func (r *Posts) CountByUser(ctx context.Context, userID uint) int64 {
	var count int64
	r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&count)
	return count
}

// fillCommentCounts batch-fills the per-post comment counters.
func (r *Posts) fillCommentCounts(ctx context.Context, posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, res := range results {
		countMap[res.PostID] = res.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}
