package main

import (
	"log"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/repository"
	"inkwell/internal/router"
	"inkwell/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	conn, err := db.Open(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	avatars, err := storage.NewAvatarStore(cfg.AvatarDir, cfg.AvatarPrefix, logger)
	if err != nil {
		logger.Fatal("failed to set up avatar storage", zap.Error(err))
	}

	deps := router.Deps{
		Users:    repository.NewUsers(conn, logger, avatars),
		Posts:    repository.NewPosts(conn, logger),
		Comments: repository.NewComments(conn, logger),
		Tokens:   repository.NewRefreshTokens(conn, logger),
		Avatars:  avatars,
		Logger:   logger,
	}

	r := router.New(cfg, deps)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
