package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Cloudinary CloudinaryConfig
	PayPal     PayPalConfig
	CORS       CORSConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// PayPalConfig configures inbound webhook verification. WebhookID is the
// per-integration id assigned by PayPal when the webhook is registered; the
// two API bases are the only origins a transmitted certificate URL may have.
type PayPalConfig struct {
	WebhookID      string
	LiveAPIBase    string
	SandboxAPIBase string
	// AllowSandboxBypass accepts sandbox-origin webhooks whose signature
	// failed to verify (flagged with a warning). Never enable in production.
	AllowSandboxBypass bool
	CertFetchTimeout   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8088"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "photohunt:photohunt@tcp(localhost:3306)/photohunt?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "photohunt",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
		PayPal: PayPalConfig{
			WebhookID:          os.Getenv("PAYPAL_WEBHOOK_ID"),
			LiveAPIBase:        getenv("PAYPAL_API_BASE", "https://api.paypal.com/"),
			SandboxAPIBase:     getenv("PAYPAL_SANDBOX_API_BASE", "https://api.sandbox.paypal.com/"),
			AllowSandboxBypass: getenvBool("PAYPAL_ALLOW_SANDBOX_BYPASS", false),
			CertFetchTimeout:   10 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{getenv("CORS_ALLOWED_ORIGIN", "http://localhost:5173")},
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
