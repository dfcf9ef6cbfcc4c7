package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQL  = "sql"
	BackendFile = "file"
)

// Config holds the application configuration. It is built once at startup
// and passed by pointer; nothing mutates it afterwards.
type Config struct {
	Port      int
	GinMode   string
	BaseURL   string
	BrandName string
	LogLevel  string

	StoreBackend string
	DatabaseURL  string
	DataDir      string

	StripeSecretKey     string
	StripePriceID       string
	StripeWebhookSecret string

	PayPalClientID     string
	PayPalClientSecret string
	PayPalPlanID       string
	PayPalAPIBase      string

	ProviderTimeout time.Duration

	SMTP SMTP

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string

	DefaultRole  string
	DefaultColor string

	RedisURL           string
	RateLimitPerMinute int
}

// SMTP holds outbound mail settings.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseSSL   bool
}

// Load reads configuration from the environment, after applying a .env file
// if one exists in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	smtpSSL, err := strconv.ParseBool(getEnv("SMTP_SSL", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_SSL: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	backend := strings.ToLower(getEnv("STORE_BACKEND", BackendSQL))
	if backend != BackendSQL && backend != BackendFile {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: use %q or %q", backend, BackendSQL, BackendFile)
	}

	brand := getEnv("BRAND_NAME", "Betty Bots")

	return &Config{
		Port:      port,
		GinMode:   getEnv("GIN_MODE", "release"),
		BaseURL:   strings.TrimRight(getEnv("BASE_URL", "http://localhost:5000"), "/"),
		BrandName: brand,
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		StoreBackend: backend,
		DatabaseURL:  getEnv("DATABASE_URL", "payments.sqlite3"),
		DataDir:      getEnv("DATA_DIR", "data"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripePriceID:       os.Getenv("STRIPE_PRICE_ID"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalPlanID:       os.Getenv("PAYPAL_PLAN_ID"),
		PayPalAPIBase:      strings.TrimRight(getEnv("PAYPAL_API_BASE", "https://api-m.paypal.com"), "/"),

		ProviderTimeout: timeout,

		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", os.Getenv("SMTP_USER")),
			FromName: getEnv("SMTP_FROM_NAME", brand),
			UseSSL:   smtpSSL,
		},

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: strings.TrimRight(os.Getenv("OPENAI_BASE_URL"), "/"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		DefaultRole:  getEnv("DEFAULT_ROLE", "psychologue"),
		DefaultColor: getEnv("DEFAULT_COLOR", "#2563eb"),

		RedisURL:           os.Getenv("REDIS_URL"),
		RateLimitPerMinute: rateLimit,
	}, nil
}

// StripeConfigured reports whether checkout sessions can be created.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != "" && c.StripePriceID != ""
}

// PayPalConfigured reports whether the PayPal OAuth credentials are present.
func (c *Config) PayPalConfigured() bool {
	return c.PayPalClientID != "" && c.PayPalClientSecret != ""
}

// IsDebug reports whether Gin runs in debug mode.
func (c *Config) IsDebug() bool {
	return c.GinMode == "debug"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
