package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey       string
	DatabasePath       string
	HTTPPort           string
	LogLevel           string
	LogFormat          string // "console" or "json"
	WidgetTokenSecret  string // empty disables the widget token check
	RateLimitPerMinute int
	DefaultTopics      []string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
}

// Load reads configuration from the environment, with .env as a convenience
// for local runs. GEMINI_API_KEY is the only hard requirement.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		DatabasePath:       getEnv("DATABASE_PATH", "qrm_catalog.db"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		WidgetTokenSecret:  getEnv("WIDGET_TOKEN_SECRET", ""),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		DefaultTopics:      splitTopics(getEnv("DEFAULT_SEARCH_TOPICS", "soundproofing acoustic insulation barrier")),
		LLMModel:           getEnv("LLM_MODEL", "gemini-1.5-flash-latest"),
		LLMTemperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 500),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}

	return cfg, nil
}

func splitTopics(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	return fields
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}
