package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	ProviderOpenAICompat = "openai_compat"
	ProviderGemini       = "gemini"
)

var (
	ErrMissingGeminiKey  = errors.New("GEMINI_API_KEY is required when PROVIDER=gemini")
	ErrMissingLLMBaseURL = errors.New("LLM_BASE_URL is required when PROVIDER=openai_compat")
)

type Config struct {
	ModelName string
	AIModel   string
	Port      string

	Provider       string
	LLMBaseURL     string
	LLMAPIKey      string
	GeminiAPIKey   string
	LLMTimeout     time.Duration
	LLMMaxRetries  int
	LLMBackoffBase time.Duration

	DatabaseURL string
	LogLevel    string
}

func Load() (*Config, error) {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}

	cfg := &Config{
		ModelName: getEnv("MODEL_NAME", "gpt2"),
		AIModel:   getEnv("AI_MODEL", "wromgpt"),
		Port:      getEnv("PORT", "8000"),

		Provider:       strings.ToLower(getEnv("PROVIDER", ProviderOpenAICompat)),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "http://127.0.0.1:8081/v1"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMaxRetries:  getEnvAsInt("LLM_MAX_RETRIES", 2),
		LLMBackoffBase: getEnvAsDuration("LLM_BACKOFF_BASE", 400*time.Millisecond),

		DatabaseURL: getEnv("DATABASE_URL", "wromgpt.db"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, ErrMissingGeminiKey
		}
	case ProviderOpenAICompat:
		if cfg.LLMBaseURL == "" {
			return nil, ErrMissingLLMBaseURL
		}
	default:
		return nil, fmt.Errorf("unsupported PROVIDER %q", cfg.Provider)
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
