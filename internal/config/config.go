package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Google    GoogleConfig
	Cookie    CookieConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Storage   StorageConfig
	AI        AIConfig
	Mail      MailConfig
	Bootstrap BootstrapConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret          string
	RefreshSecret   string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// GoogleConfig configures Google sign-in for the admin dashboard.
type GoogleConfig struct {
	AdminClientID  string
	Issuer         string
	InsecureTokens bool
}

type CookieConfig struct {
	Domain string
	Secure bool
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
	LoginMax      int
	LoginWindow   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// AIConfig selects the chat provider. Provider is one of upstream, gemini or echo.
type AIConfig struct {
	Provider     string
	UpstreamURL  string
	GeminiAPIKey string
	Model        string
	Timeout      time.Duration
}

type MailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	Concurrency int
}

type BootstrapConfig struct {
	AdminEmails []string
}

// IsProduction reports whether NODE_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("NODE_ENV", "development")
	v.SetDefault("MONGODB_DATABASE", "founders_portal")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ISSUER", "founders-portal")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	v.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	v.SetDefault("GOOGLE_ISSUER", "https://accounts.google.com")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("LOGIN_RATE_LIMIT_MAX", 5)
	v.SetDefault("LOGIN_RATE_LIMIT_WINDOW_MINUTES", 15)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("MINIO_BUCKET", "founders-portal")
	v.SetDefault("AI_PROVIDER", "echo")
	v.SetDefault("AI_MODEL", "gemini-2.0-flash")
	v.SetDefault("AI_TIMEOUT_SECONDS", 120)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "no-reply@founders-portal.local")
	v.SetDefault("MAIL_CONCURRENCY", 4)

	env := v.GetString("NODE_ENV")
	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("HOST"),
			Environment:  env,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 0, // chat streams stay open longer than any fixed write deadline
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:          os.Getenv("JWT_SECRET"),
			RefreshSecret:   os.Getenv("REFRESH_TOKEN_SECRET"),
			Issuer:          v.GetString("JWT_ISSUER"),
			AccessTokenTTL:  time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(v.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		Google: GoogleConfig{
			AdminClientID:  v.GetString("ADMIN_GOOGLE_CLIENT_ID"),
			Issuer:         v.GetString("GOOGLE_ISSUER"),
			InsecureTokens: v.GetBool("GOOGLE_INSECURE_TOKENS") && !strings.EqualFold(env, "production"),
		},
		Cookie: CookieConfig{
			Domain: v.GetString("COOKIE_DOMAIN"),
			Secure: strings.EqualFold(env, "production"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			LoginMax:      v.GetInt("LOGIN_RATE_LIMIT_MAX"),
			LoginWindow:   time.Duration(v.GetInt("LOGIN_RATE_LIMIT_WINDOW_MINUTES")) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		AI: AIConfig{
			Provider:     strings.ToLower(v.GetString("AI_PROVIDER")),
			UpstreamURL:  v.GetString("AI_UPSTREAM_URL"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			Model:        v.GetString("AI_MODEL"),
			Timeout:      time.Duration(v.GetInt("AI_TIMEOUT_SECONDS")) * time.Second,
		},
		Mail: MailConfig{
			Host:        v.GetString("SMTP_HOST"),
			Port:        v.GetInt("SMTP_PORT"),
			Username:    v.GetString("SMTP_USER"),
			Password:    os.Getenv("SMTP_PASSWORD"),
			From:        v.GetString("MAIL_FROM"),
			Concurrency: v.GetInt("MAIL_CONCURRENCY"),
		},
		Bootstrap: BootstrapConfig{
			AdminEmails: splitList(strings.ToLower(v.GetString("ADMIN_EMAILS"))),
		},
	}

	if cfg.IsProduction() {
		if cfg.JWT.Secret == "" {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		if cfg.JWT.RefreshSecret == "" {
			return nil, errors.New("REFRESH_TOKEN_SECRET is required in production")
		}
	}
	if cfg.JWT.RefreshSecret == "" {
		cfg.JWT.RefreshSecret = cfg.JWT.Secret
	}
	if cfg.Mail.Concurrency <= 0 {
		cfg.Mail.Concurrency = 1
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
