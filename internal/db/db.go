package db

import (
	"fmt"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to the database, runs migrations and seeds the initial admin
// account. The returned handle is passed to every component that needs it;
// there is no package-level connection.
func Open(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	logger.Info("database ready")

	if err := SeedAdmin(conn, logger); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates the schema. The unique indexes on username/email
// and the cascade constraints on owning relations back up the checks done in
// repository code.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.RefreshToken{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// SeedAdmin creates the initial admin account if no admin exists yet.
func SeedAdmin(conn *gorm.DB, logger *zap.Logger) error {
	var count int64
	conn.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("admin")
	if err != nil {
		return err
	}
	admin := models.User{
		Username: "admin",
		Email:    "admin@localhost",
		Password: hash,
		Role:     models.RoleAdmin,
		Avatar:   models.DefaultAvatar,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("seeded initial admin user", zap.String("email", admin.Email))
	return nil
}
