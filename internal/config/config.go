package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const placeholderJWTSecret = "change-this-in-production"

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Tokens    TokenConfig
	App       AppConfig
	Email     EmailConfig
	Paystack  PaystackConfig
	Pricing   PricingConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	RequestTimeout time.Duration
}

// IsProduction reports whether the server runs with production settings
func (c ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Migrate  bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// TokenConfig holds lifetimes of the emailed single-use tokens
type TokenConfig struct {
	VerificationExpiry time.Duration
	ResetExpiry        time.Duration
	SweepInterval      time.Duration
	Retention          time.Duration
}

// AppConfig holds public-facing application settings
type AppConfig struct {
	Name string
	URL  string
}

// EmailConfig holds SMTP settings
type EmailConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	From            string
	DispatchTimeout time.Duration
}

// Enabled reports whether an SMTP relay is configured
func (c EmailConfig) Enabled() bool {
	return c.Host != ""
}

// PaystackConfig holds payment gateway settings
type PaystackConfig struct {
	SecretKey     string
	BaseURL       string
	CallbackURL   string
	ClientBaseURL string
}

// PricingConfig holds package prices in major currency units
type PricingConfig struct {
	PackagePrice      int64
	FirstPackagePrice int64
}

// RateLimitConfig holds request throttling settings
type RateLimitConfig struct {
	AuthRPS            float64
	AuthBurst          int
	EmailRequestLimit  int
	EmailRequestWindow time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	clientBaseURL := getEnv("CLIENT_BASE_URL", "http://localhost:3000")
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "parcelhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Migrate:  getEnvAsBool("DB_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", placeholderJWTSecret),
			ExpiresIn: getEnvAsDuration("JWT_EXPIRES_IN", 24*time.Hour),
		},
		Tokens: TokenConfig{
			VerificationExpiry: time.Duration(getEnvAsInt("EMAIL_VERIFICATION_EXPIRY", 24)) * time.Hour,
			ResetExpiry:        time.Duration(getEnvAsInt("PASSWORD_RESET_EXPIRY", 60)) * time.Minute,
			SweepInterval:      getEnvAsDuration("TOKEN_SWEEP_INTERVAL", time.Hour),
			Retention:          getEnvAsDuration("TOKEN_RETENTION", 7*24*time.Hour),
		},
		App: AppConfig{
			Name: getEnv("APP_NAME", "ParcelHub"),
			URL:  strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		},
		Email: EmailConfig{
			Host:            getEnv("EMAIL_HOST", ""),
			Port:            getEnvAsInt("EMAIL_PORT", 587),
			User:            getEnv("EMAIL_USER", ""),
			Password:        getEnv("EMAIL_PASSWORD", ""),
			From:            getEnv("EMAIL_FROM", "no-reply@parcelhub.local"),
			DispatchTimeout: getEnvAsDuration("EMAIL_DISPATCH_TIMEOUT", 15*time.Second),
		},
		Paystack: PaystackConfig{
			SecretKey:     getEnv("PAYSTACK_SECRET_KEY", ""),
			BaseURL:       strings.TrimRight(getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"), "/"),
			ClientBaseURL: strings.TrimRight(clientBaseURL, "/"),
			CallbackURL:   strings.TrimRight(clientBaseURL, "/") + "/payment/callback",
		},
		Pricing: PricingConfig{
			PackagePrice:      int64(getEnvAsInt("PACKAGE_PRICE", 7000)),
			FirstPackagePrice: int64(getEnvAsInt("PACKAGE_FIRST_PRICE", 4500)),
		},
		RateLimit: RateLimitConfig{
			AuthRPS:            getEnvAsFloat("AUTH_RATE_LIMIT_RPS", 5),
			AuthBurst:          getEnvAsInt("AUTH_RATE_LIMIT_BURST", 10),
			EmailRequestLimit:  getEnvAsInt("EMAIL_REQUEST_LIMIT", 5),
			EmailRequestWindow: getEnvAsDuration("EMAIL_REQUEST_WINDOW", time.Hour),
		},
	}
}

// Validate rejects configurations the server must not start with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.Server.IsProduction() && c.JWT.Secret == placeholderJWTSecret {
		return errors.New("JWT_SECRET must be changed in production")
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.Tokens.VerificationExpiry <= 0 || c.Tokens.ResetExpiry <= 0 {
		return errors.New("token expiry settings must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
