package repository

import (
	"context"
	"time"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenTTL is how long a remember-me token stays usable without a login.
const TokenTTL = 30 * 24 * time.Hour

type RefreshTokens struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewRefreshTokens(db *gorm.DB, logger *zap.Logger) *RefreshTokens {
	return &RefreshTokens{db: db, logger: logger}
}

// Create issues a new opaque token for the user, recording the client
// metadata presented at login.
func (r *RefreshTokens) Create(ctx context.Context, userID uint, userAgent, ip string) (*models.RefreshToken, error) {
	token := models.RefreshToken{
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(TokenTTL),
		IsValid:   true,
		UserAgent: userAgent,
		IPAddress: ip,
	}
	if err := r.db.WithContext(ctx).Create(&token).Error; err != nil {
		r.logger.Error("failed to create refresh token", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &token, nil
}

func (r *RefreshTokens) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&record).Error; err != nil {
		return nil, notFoundOr(err, "token")
	}
	return &record, nil
}

// Rotate replaces the opaque token string and extends the expiry, writing the
// new values back into record. The caller must have checked Usable first.
func (r *RefreshTokens) Rotate(ctx context.Context, record *models.RefreshToken) error {
	newToken := uuid.NewString()
	newExpiry := time.Now().Add(TokenTTL)
	err := r.db.WithContext(ctx).Model(record).Updates(map[string]interface{}{
		"token":      newToken,
		"expires_at": newExpiry,
	}).Error
	if err != nil {
		r.logger.Error("failed to rotate refresh token", zap.Uint("token_id", record.ID), zap.Error(err))
		return err
	}
	record.Token = newToken
	record.ExpiresAt = newExpiry
	return nil
}

// Invalidate clears the validity flag; the row is kept for audit.
func (r *RefreshTokens) Invalidate(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("is_valid", false).Error
}

// DeleteExpired prunes tokens past their expiry.
func (r *RefreshTokens) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
