package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wromgpt/internal/api"
	"wromgpt/internal/config"
	"wromgpt/internal/core"
	"wromgpt/internal/llm"
	"wromgpt/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setupLogger(cfg.LogLevel)
	log.Info().
		Str("model", cfg.ModelName).
		Str("ai_model", cfg.AIModel).
		Str("provider", cfg.Provider).
		Msg("starting wromgpt")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	auditStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize audit store")
	}
	defer auditStore.Close()

	provider, err := llm.Build(ctx, llm.BuildOptions{
		Kind:         cfg.Provider,
		Model:        cfg.ModelName,
		BaseURL:      cfg.LLMBaseURL,
		APIKey:       cfg.LLMAPIKey,
		GeminiAPIKey: cfg.GeminiAPIKey,
		Timeout:      cfg.LLMTimeout,
		MaxRetries:   cfg.LLMMaxRetries,
		BackoffBase:  cfg.LLMBackoffBase,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build generation provider")
	}
	if closer, ok := provider.(io.Closer); ok {
		defer closer.Close()
	}

	instructions := core.NewInstructionStore()
	chatService := core.NewChatService(provider, instructions, auditStore, cfg.ModelName)

	// Readiness is confirmed in the background; /health reports
	// model_loaded=false until the backend answers.
	go chatService.WarmUp(ctx)

	apiHandler := api.NewAPIHandler(chatService, cfg.AIModel)
	router := api.NewRouter(apiHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	// Give active connections time to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting gracefully")
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLogLevel(level))
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
