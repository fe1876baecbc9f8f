package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "gpt2", cfg.ModelName)
	require.Equal(t, "wromgpt", cfg.AIModel)
	require.Equal(t, "8000", cfg.Port)
	require.Equal(t, ProviderOpenAICompat, cfg.Provider)
	require.Equal(t, "http://127.0.0.1:8081/v1", cfg.LLMBaseURL)
	require.Equal(t, 60*time.Second, cfg.LLMTimeout)
	require.Equal(t, 2, cfg.LLMMaxRetries)
	require.Equal(t, "wromgpt.db", cfg.DatabaseURL)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODEL_NAME", "distilgpt2")
	t.Setenv("AI_MODEL", "wromgpt-staging")
	t.Setenv("PORT", "9000")
	t.Setenv("LLM_BASE_URL", "http://llm.internal:8000/v1")
	t.Setenv("LLM_TIMEOUT", "90s")
	t.Setenv("LLM_MAX_RETRIES", "5")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "distilgpt2", cfg.ModelName)
	require.Equal(t, "wromgpt-staging", cfg.AIModel)
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, "http://llm.internal:8000/v1", cfg.LLMBaseURL)
	require.Equal(t, 90*time.Second, cfg.LLMTimeout)
	require.Equal(t, 5, cfg.LLMMaxRetries)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadGeminiRequiresAPIKey(t *testing.T) {
	t.Setenv("PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingGeminiKey)

	t.Setenv("GEMINI_API_KEY", "test-key")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderGemini, cfg.Provider)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("PROVIDER", "transformers")

	_, err := Load()
	require.Error(t, err)
}
