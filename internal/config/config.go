package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Content   ContentConfig
	Redis     RedisConfig
	MongoDB   MongoDBConfig
	Upload    UploadConfig
	MinIO     MinIOConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	CORSOrigin   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// IsProduction reports whether cookies should carry the Secure flag.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// AuthConfig is the operator secret and token policy handed to the token service.
type AuthConfig struct {
	OperatorPassword string
	JWTSecret        string
	Issuer           string
	TTL              time.Duration
	CookieName       string
	RevokeOnLogout   bool
}

type ContentConfig struct {
	Backend    string // file | memory | redis | mongo
	Path       string
	Key        string
	Collection string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type UploadConfig struct {
	Backend  string // local | minio
	Dir      string
	MaxBytes int64
}

type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "3001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("CORS_ALLOWED_ORIGIN", "*")
	v.SetDefault("JWT_TTL_MINUTES", 60)
	v.SetDefault("JWT_ISSUER", "cms-api")
	v.SetDefault("CMS_AUTH_COOKIE_NAME", "cms_session")
	v.SetDefault("CMS_AUTH_REVOKE_ON_LOGOUT", false)
	v.SetDefault("CMS_CONTENT_BACKEND", "file")
	v.SetDefault("CMS_CONTENT_PATH", "data/content.json")
	v.SetDefault("CMS_CONTENT_KEY", "site-content")
	v.SetDefault("CMS_CONTENT_COLLECTION", "content")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("MONGODB_DATABASE", "cms")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("CMS_UPLOAD_BACKEND", "local")
	v.SetDefault("CMS_UPLOAD_DIR", "public/uploads")
	v.SetDefault("CMS_UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("MINIO_BUCKET", "cms-uploads")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 0.2)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			CORSOrigin:   v.GetString("CORS_ALLOWED_ORIGIN"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			// secrets are read directly so they never end up in viper's key dump
			OperatorPassword: os.Getenv("CMS_ADMIN_PASSWORD"),
			JWTSecret:        os.Getenv("JWT_SECRET"),
			Issuer:           v.GetString("JWT_ISSUER"),
			TTL:              time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute,
			CookieName:       v.GetString("CMS_AUTH_COOKIE_NAME"),
			RevokeOnLogout:   v.GetBool("CMS_AUTH_REVOKE_ON_LOGOUT"),
		},
		Content: ContentConfig{
			Backend:    strings.ToLower(v.GetString("CMS_CONTENT_BACKEND")),
			Path:       v.GetString("CMS_CONTENT_PATH"),
			Key:        v.GetString("CMS_CONTENT_KEY"),
			Collection: v.GetString("CMS_CONTENT_COLLECTION"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Upload: UploadConfig{
			Backend:  strings.ToLower(v.GetString("CMS_UPLOAD_BACKEND")),
			Dir:      v.GetString("CMS_UPLOAD_DIR"),
			MaxBytes: v.GetInt64("CMS_UPLOAD_MAX_BYTES"),
		},
		MinIO: MinIOConfig{
			Endpoint:      v.GetString("MINIO_ENDPOINT"),
			AccessKey:     v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:     os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:        v.GetBool("MINIO_USE_SSL"),
			Bucket:        v.GetString("MINIO_BUCKET"),
			PublicBaseURL: v.GetString("CMS_UPLOAD_PUBLIC_BASE_URL"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}

// Warnings lists configuration problems worth logging at startup. Most leave
// the service running but degraded; an unknown content backend is fatal. Missing secrets are enforced by the token service, which refuses
// to issue or verify credentials without them.
func (c *Config) Warnings() []string {
	var out []string
	if c.Auth.OperatorPassword == "" {
		out = append(out, "CMS_ADMIN_PASSWORD is not set; login is disabled")
	}
	if c.Auth.JWTSecret == "" {
		out = append(out, "JWT_SECRET is not set; login and content writes are disabled")
	} else if len(c.Auth.JWTSecret) < 32 {
		out = append(out, "JWT_SECRET is shorter than 32 bytes; use a longer value in production")
	}
	if c.Auth.TTL <= 0 {
		out = append(out, "JWT_TTL_MINUTES must be positive; falling back to 60")
	}
	switch c.Content.Backend {
	case "", "file", "memory", "redis", "mongo":
	default:
		out = append(out, "unknown CMS_CONTENT_BACKEND "+c.Content.Backend+"; startup will fail (use file, memory, redis or mongo)")
	}
	return out
}
