package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPass      string
	DBName      string
	DBPort      string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string
	JWTTTL    time.Duration

	CloudinaryUploadFolder string
	MaxFileSize            int64
	AllowedFileTypes       []string

	RateLimitAuth time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "3007"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      getEnv("DB_NAME", "vocalstudio"),
		DBPort:      getEnv("DB_PORT", "5432"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: getEnv("JWT_SECRET", "default-secret-key-change-in-production"),

		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "vocalstudio"),
		AllowedFileTypes:       splitList(getEnv("ALLOWED_FILE_TYPES", "image/jpeg,image/png,image/svg+xml")),
	}

	var err error
	cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "8760h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.RateLimitAuth, err = time.ParseDuration(getEnv("RATE_LIMIT_AUTH", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_AUTH: %w", err)
	}
	cfg.MaxFileSize, err = strconv.ParseInt(getEnv("MAX_FILE_SIZE", "10485760"), 10, 64)
	if err != nil || cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("invalid MAX_FILE_SIZE %q", os.Getenv("MAX_FILE_SIZE"))
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
