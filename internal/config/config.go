package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	Port          string
	DatabaseURL   string
	SessionSecret string
	SessionName   string
	TemplatesDir  string
	StaticDir     string
	AvatarDir     string
	AvatarPrefix  string
}

// Load reads configuration from environment variables, with a .env file as
// optional source for local development.
func Load() *Config {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	return &Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable"),
		SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		SessionName:   getEnv("SESSION_NAME", "inkwell_session"),
		TemplatesDir:  getEnv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:     getEnv("STATIC_DIR", "./web/static"),
		AvatarDir:     getEnv("AVATAR_DIR", "./web/static/avatars"),
		AvatarPrefix:  getEnv("AVATAR_PREFIX", "/static/avatars"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
