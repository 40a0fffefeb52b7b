package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port   string
	Env    string
	APIURL string // externally reachable base, used for OAuth redirect URIs

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Token-at-rest encryption; falls back to JWTSecret
	TokenEncryptionKey string

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	MSClientID         string
	MSClientSecret     string
	MSTenantID         string

	// LLM
	LLMProvider   string
	OpenAIAPIBase string
	OpenAIAPIKey  string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	LLMMaxRetries int

	// SMTP
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	ResendAPIKey string

	// Slack
	SlackBotToken string

	// Recap scheduling
	RecapSchedulerEnabled bool
	RecapHour             int
	WorkerCount           int

	// Frontend
	FrontendURL string
	PublicURL   string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		DatabaseURL:        mustGetEnv("DATABASE_URL"),
		RedisURL:           getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:          mustGetEnv("JWT_SECRET"),
		GoogleClientID:     mustGetEnv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: mustGetEnv("GOOGLE_CLIENT_SECRET"),
		MSClientID:         getEnvOrDefault("MS_CLIENT_ID", ""),
		MSClientSecret:     getEnvOrDefault("MS_CLIENT_SECRET", ""),
		MSTenantID:         getEnvOrDefault("MS_TENANT_ID", "common"),
		LLMProvider:        strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "openai")),
		OpenAIAPIBase:      strings.TrimRight(getEnvOrDefault("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
		OpenAIAPIKey:       getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMMaxRetries:      getEnvAsIntOrDefault("LLM_MAX_RETRIES", 2),
		SMTPHost:           getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:           getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:           getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:           getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:           getEnvOrDefault("SMTP_FROM", "DayBrief <noreply@daybrief.com>"),
		ResendAPIKey:       getEnvOrDefault("RESEND_API_KEY", ""),
		SlackBotToken:      getEnvOrDefault("SLACK_BOT_TOKEN", ""),
		RecapHour:          getEnvAsIntOrDefault("RECAP_HOUR", 18),
		WorkerCount:        getEnvAsIntOrDefault("WORKER_COUNT", 3),
		FrontendURL:        strings.TrimRight(getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"), "/"),
	}
	cfg.APIURL = strings.TrimRight(getEnvOrDefault("API_URL", "http://localhost:"+cfg.Port), "/")
	cfg.PublicURL = strings.TrimRight(getEnvOrDefault("PUBLIC_URL", cfg.FrontendURL), "/")
	cfg.TokenEncryptionKey = getEnvOrDefault("TOKEN_ENCRYPTION_KEY", cfg.JWTSecret)
	cfg.RecapSchedulerEnabled = getEnvAsBoolOrDefault("RECAP_SCHEDULER_ENABLED", true)

	if cfg.RecapHour < 0 || cfg.RecapHour > 23 {
		cfg.RecapHour = 18
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}

	return cfg
}

// OAuthRedirectURL is the callback registered with the provider.
func (c *Config) OAuthRedirectURL(provider string) string {
	return c.APIURL + "/api/v1/auth/" + provider + "/callback"
}

// SettingsURL is the link placed in recap footers.
func (c *Config) SettingsURL() string {
	return c.PublicURL + "/settings"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
