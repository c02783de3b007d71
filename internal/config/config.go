package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	DB     DatabaseConfig
	Auth   AuthConfig
	Media  MediaConfig
	Upload UploadConfig
	Admin  AdminConfig
	CORS   CORSConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	PoolSize      int
	MigrationsURL string
}

// AuthConfig contains token signing parameters.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// MediaConfig selects and configures the image host.
type MediaConfig struct {
	Driver      string // "cloudinary" or "s3"
	PingTimeout time.Duration
	Cloudinary  CloudinaryConfig
	S3          S3Config
}

// CloudinaryConfig contains Cloudinary credentials. URL, when set, wins over
// the individual fields.
type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
}

// S3Config contains AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// UploadConfig bounds product image uploads.
type UploadConfig struct {
	Folder   string
	MaxFiles int
	MaxBytes int64
	Timeout  time.Duration
}

// AdminConfig holds the bootstrap admin account created at startup.
type AdminConfig struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Enabled reports whether enough fields are set to bootstrap an admin.
func (a AdminConfig) Enabled() bool {
	return a.Username != "" && a.Email != "" && a.Password != ""
}

// CORSConfig lists allowed browser origins. A single "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// Server
	cfg.Port = getEnv("PORT", "5000")
	cfg.Env = getEnv("ENV", "development")

	// Database
	cfg.DB = DatabaseConfig{
		Host:          getEnv("DB_HOST", ""),
		Port:          getEnv("DB_PORT", "5432"),
		User:          getEnv("DB_USER", ""),
		Password:      getEnv("DB_PASSWORD", ""),
		Name:          getEnv("DB_NAME", ""),
		SSLMode:       getEnv("DB_SSLMODE", "disable"),
		MigrationsURL: getEnv("DB_MIGRATIONS", "file://migrations"),
	}
	if cfg.DB.PoolSize, err = parseIntEnv("DB_POOL_SIZE", 10); err != nil {
		return nil, fmt.Errorf("invalid DB_POOL_SIZE: %w", err)
	}

	// Auth
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	if cfg.Auth.TokenTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	// Media store
	cfg.Media = MediaConfig{
		Driver: strings.ToLower(getEnv("MEDIA_STORE", "cloudinary")),
		Cloudinary: CloudinaryConfig{
			URL:       getEnv("CLOUDINARY_URL", ""),
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
	}
	if cfg.Media.PingTimeout, err = parseDurationEnv("MEDIA_PING_TIMEOUT", "10s"); err != nil {
		return nil, fmt.Errorf("invalid MEDIA_PING_TIMEOUT: %w", err)
	}

	// Uploads
	cfg.Upload.Folder = getEnv("UPLOAD_FOLDER", "espumas_plasticos_productos")
	if cfg.Upload.MaxFiles, err = parseIntEnv("UPLOAD_MAX_FILES", 5); err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_FILES: %w", err)
	}
	maxBytes, err := parseIntEnv("UPLOAD_MAX_BYTES", 5*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES: %w", err)
	}
	cfg.Upload.MaxBytes = int64(maxBytes)
	if cfg.Upload.Timeout, err = parseDurationEnv("UPLOAD_TIMEOUT", "25s"); err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_TIMEOUT: %w", err)
	}

	// Admin bootstrap
	cfg.Admin = AdminConfig{
		Username: getEnv("ADMIN_USERNAME", ""),
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Role:     getEnv("ADMIN_ROLE", "admin"),
	}

	cfg.CORS.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}
	if cfg.Media.Driver != "cloudinary" && cfg.Media.Driver != "s3" {
		return nil, fmt.Errorf("unsupported MEDIA_STORE %q: use cloudinary or s3", cfg.Media.Driver)
	}
	if cfg.Upload.MaxFiles <= 0 || cfg.Upload.MaxBytes <= 0 {
		return nil, errors.New("UPLOAD_MAX_FILES and UPLOAD_MAX_BYTES must be positive")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseIntEnv reads an integer variable, falling back to def when unset.
func parseIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
