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

type Comments struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewComments(db *gorm.DB, logger *zap.Logger) *Comments {
	return &Comments{db: db, logger: logger}
}

// Create attaches a comment to an existing post. The author id comes from the
// session. The post must exist at creation time.
func (r *Comments) Create(ctx context.Context, postID, userID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", apperror.ErrValidation)
	}

	var exists int64
	r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&exists)
	if exists == 0 {
		return nil, fmt.Errorf("post %w", apperror.ErrNotFound)
	}

	comment := models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := r.db.WithContext(ctx).Create(&comment).Error; err != nil {
		r.logger.Error("failed to create comment", zap.Uint("post_id", postID), zap.Error(err))
		return nil, err
	}
	return &comment, nil
}

func (r *Comments) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "comment")
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first with authors preloaded.
func (r *Comments) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CommentPatch carries a partial update; only the content is mutable.
type CommentPatch struct {
	Content *string
}

func (r *Comments) Update(ctx context.Context, id uint, patch CommentPatch) (*models.Comment, error) {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Content == nil {
		return comment, nil
	}
	if strings.TrimSpace(*patch.Content) == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", apperror.ErrValidation)
	}

	if err := r.db.WithContext(ctx).Model(comment).Update("content", *patch.Content).Error; err != nil {
		r.logger.Error("failed to update comment", zap.Uint("comment_id", id), zap.Error(err))
		return nil, err
	}
	return comment, nil
}

// Delete removes the comment and returns the pre-deletion snapshot.
func (r *Comments) Delete(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := *comment

	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		r.logger.Error("failed to delete comment", zap.Uint("comment_id", id), zap.Error(err))
		return nil, err
	}
	return &snapshot, nil
}

func (r *Comments) CountByUser(ctx context.Context, userID uint) int64 {
	var count int64
	r.db.WithContext(ctx).Model(&models.Comment{}).Where("user_id = ?", userID).Count(&count)
	return count
}
