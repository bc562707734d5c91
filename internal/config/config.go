package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Chat engine
	ChatMode      string // "scripted" or "smart"
	TypingDelay   bool
	DedupeWindow  time.Duration
	SessionTTL    time.Duration
	SupportEmail  string
	CompanyName   string
	AllowedOrigin []string

	// Collaborators
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	// Generative completion
	LLMProvider  string // "openai", "gemini" or "" (disabled)
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	// Email
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ChatMode:      strings.ToLower(strings.TrimSpace(getEnv("CHAT_MODE", "scripted"))),
		TypingDelay:   getEnvAsBool("CHAT_TYPING_DELAY", true),
		DedupeWindow:  getEnvAsDuration("CHAT_DEDUPE_WINDOW", 2*time.Second),
		SessionTTL:    getEnvAsDuration("CHAT_SESSION_TTL", 24*time.Hour),
		SupportEmail:  getEnv("SUPPORT_EMAIL", "suporte@helptech.com"),
		CompanyName:   getEnv("COMPANY_NAME", "HelpTech"),
		AllowedOrigin: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		LLMProvider:  strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", ""))),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "HelpTech Suporte"),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
