package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/apperror"
	"inkwell/internal/auth"
	"inkwell/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AvatarRemover deletes a previously uploaded avatar file. Removal is
// best-effort: implementations log failures instead of returning them.
type AvatarRemover interface {
	Remove(publicPath string)
}

type Users struct {
	db      *gorm.DB
	logger  *zap.Logger
	avatars AvatarRemover
}

// NewUsers creates the user repository. avatars may be nil when no file
// cleanup is wanted (e.g. in tests).
func NewUsers(db *gorm.DB, logger *zap.Logger, avatars AvatarRemover) *Users {
	return &Users{db: db, logger: logger, avatars: avatars}
}

type CreateUserParams struct {
	Username string
	Email    string
	Password string // plaintext, hashed here and discarded
	Gender   string
}

var validGenders = map[string]bool{
	models.GenderUnspecified: true,
	models.GenderMale:        true,
	models.GenderFemale:      true,
}

// Create registers a new user. Username and email are checked for conflicts
// before the insert; the unique indexes catch the race where two requests
// pass the pre-check concurrently.
func (r *Users) Create(ctx context.Context, p CreateUserParams) (*models.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	if p.Username == "" || p.Email == "" || !strings.Contains(p.Email, "@") {
		return nil, fmt.Errorf("%w: username and a valid email are required", apperror.ErrValidation)
	}
	if len(p.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", apperror.ErrValidation)
	}
	if p.Gender == "" {
		p.Gender = models.GenderUnspecified
	}
	if !validGenders[p.Gender] {
		return nil, fmt.Errorf("%w: unknown gender", apperror.ErrValidation)
	}

	if err := r.checkConflict(ctx, p.Username, p.Email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		r.logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	user := models.User{
		Username: p.Username,
		Email:    p.Email,
		Password: hash,
		Role:     models.RoleUser,
		Gender:   p.Gender,
		Avatar:   models.DefaultAvatar,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("username or email %w", apperror.ErrConflict)
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *Users) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (r *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// ListNonAdmin returns the moderatable accounts, newest first.
func (r *Users) ListNonAdmin(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	var total int64
	r.db.WithContext(ctx).Model(&models.User{}).Where("role <> ?", models.RoleAdmin).Count(&total)

	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role <> ?", models.RoleAdmin).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UserPatch carries profile changes. A nil field means "leave unchanged".
type UserPatch struct {
	Username *string
	Email    *string
	Gender   *string
	Avatar   *string
}

// Update applies the patch. Username/email changes are rejected when another
// user already holds the value. When the avatar path changes, the previous
// file is removed best-effort unless it is the shared default.
func (r *Users) Update(ctx context.Context, id uint, patch UserPatch) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if patch.Username != nil && *patch.Username != user.Username {
		if strings.TrimSpace(*patch.Username) == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", apperror.ErrValidation)
		}
		updates["username"] = *patch.Username
	}
	if patch.Email != nil && *patch.Email != user.Email {
		if !strings.Contains(*patch.Email, "@") {
			return nil, fmt.Errorf("%w: invalid email", apperror.ErrValidation)
		}
		updates["email"] = *patch.Email
	}
	if patch.Gender != nil && *patch.Gender != user.Gender {
		if !validGenders[*patch.Gender] {
			return nil, fmt.Errorf("%w: unknown gender", apperror.ErrValidation)
		}
		updates["gender"] = *patch.Gender
	}

	oldAvatar := user.Avatar
	if patch.Avatar != nil && *patch.Avatar != user.Avatar {
		updates["avatar"] = *patch.Avatar
	}

	if len(updates) == 0 {
		return user, nil
	}

	username, email := user.Username, user.Email
	if v, ok := updates["username"].(string); ok {
		username = v
	}
	if v, ok := updates["email"].(string); ok {
		email = v
	}
	if err := r.checkConflict(ctx, username, email, user.ID); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("username or email %w", apperror.ErrConflict)
		}
		r.logger.Error("failed to update user", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}

	if _, changed := updates["avatar"]; changed && oldAvatar != models.DefaultAvatar && r.avatars != nil {
		r.avatars.Remove(oldAvatar)
	}
	return user, nil
}

// UpdatePassword re-verifies the current password and applies the new one.
// All checks run before any write.
func (r *Users) UpdatePassword(ctx context.Context, id uint, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return fmt.Errorf("%w: passwords do not match", apperror.ErrValidation)
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", apperror.ErrValidation)
	}

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(current, user.Password) {
		return fmt.Errorf("current password is wrong: %w", apperror.ErrUnauthenticated)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(user).Update("password", hash).Error
}

// Delete removes the user and everything they own in one transaction:
// comments on their posts, their own comments, their posts and their refresh
// tokens. The pre-deletion snapshot is returned.
func (r *Users) Delete(ctx context.Context, id uint) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := *user

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id IN (?)",
			tx.Model(&models.Post{}).Select("id").Where("user_id = ?", id),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		r.logger.Error("failed to delete user", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}

	if snapshot.Avatar != models.DefaultAvatar && r.avatars != nil {
		r.avatars.Remove(snapshot.Avatar)
	}
	return &snapshot, nil
}

// checkConflict fails when a different user already holds the username or
// email. excludeID is 0 on registration.
func (r *Users) checkConflict(ctx context.Context, username, email string, excludeID uint) error {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("username or email %w", apperror.ErrConflict)
	}
	return nil
}
