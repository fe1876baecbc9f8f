package core

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"wromgpt/internal/llm"
	"wromgpt/internal/metrics"
	"wromgpt/internal/store"
)

// FallbackResponse is returned whenever the generation backend fails. The
// chat endpoint stays available instead of surfacing a 5xx.
const FallbackResponse = "I'm sorry, I encountered an error while processing your request."

const assistantMarker = "Assistant:"

type ChatService struct {
	provider     llm.Provider
	instructions *InstructionStore
	auditStore   *store.SQLiteStore // optional
	metrics      *metrics.Metrics
	modelName    string
	loaded       atomic.Bool
}

func NewChatService(provider llm.Provider, instructions *InstructionStore, audit *store.SQLiteStore, modelName string) *ChatService {
	return &ChatService{
		provider:     provider,
		instructions: instructions,
		auditStore:   audit,
		metrics:      metrics.Global(),
		modelName:    modelName,
	}
}

type ChatParams struct {
	Message            string
	MaxLength          int
	Temperature        float64
	CustomInstructions string
}

// ChatResult distinguishes a real completion from the canned fallback so
// callers and tests can tell them apart. The HTTP layer returns 200 for both.
type ChatResult struct {
	Response  string
	ModelUsed string
	Fallback  bool
}

// Chat composes the final prompt from the current system instructions (or the
// per-request override) and the user message, then asks the backend for a
// completion. Any backend failure degrades to the fallback response.
func (s *ChatService) Chat(ctx context.Context, p ChatParams) ChatResult {
	s.metrics.ChatRequests.Inc()

	instructions := p.CustomInstructions
	if instructions == "" {
		instructions = s.instructions.Get()
	}
	prompt := BuildPrompt(instructions, p.Message)

	result := ChatResult{ModelUsed: s.modelName}
	text, err := s.provider.Generate(ctx, llm.GenerateRequest{
		Model:       s.modelName,
		Prompt:      prompt,
		MaxLength:   p.MaxLength,
		Temperature: p.Temperature,
	})
	if err != nil {
		log.Error().Err(err).Msg("generation failed, returning fallback response")
		s.metrics.ChatFallbacks.Inc()
		result.Response = FallbackResponse
		result.Fallback = true
	} else {
		result.Response = StripPromptEcho(text)
	}

	s.logExchange(p.Message, result)
	return result
}

// BuildPrompt joins instructions and the user message with the fixed
// conversation markers the backend was prompted with.
func BuildPrompt(instructions, message string) string {
	return fmt.Sprintf("%s\n\nUser: %s\n\nAssistant:", instructions, message)
}

// StripPromptEcho drops everything up to and including the last "Assistant:"
// marker. Raw completion models echo the whole prompt before their answer.
func StripPromptEcho(text string) string {
	if idx := strings.LastIndex(text, assistantMarker); idx >= 0 {
		text = text[idx+len(assistantMarker):]
	}
	return strings.TrimSpace(text)
}

func (s *ChatService) Instructions() string {
	return s.instructions.Get()
}

// UpdateInstructions replaces the system instructions and records the
// revision in the audit log.
func (s *ChatService) UpdateInstructions(instructions string) string {
	updated := s.instructions.Set(instructions)
	s.metrics.InstructionUpdates.Inc()

	if s.auditStore != nil {
		if _, err := s.auditStore.CreateInstructionRevision(updated); err != nil {
			log.Error().Err(err).Msg("failed to record instruction revision")
		}
	}
	return updated
}

func (s *ChatService) InstructionHistory(limit int) ([]store.InstructionRevision, error) {
	if s.auditStore == nil {
		return nil, nil
	}
	return s.auditStore.ListInstructionRevisions(limit)
}

func (s *ChatService) ModelName() string {
	return s.modelName
}

// ModelLoaded reports whether the generation backend has been confirmed
// reachable since startup.
func (s *ChatService) ModelLoaded() bool {
	return s.loaded.Load()
}

// WarmUp pings the backend until it answers, then marks the model loaded.
// Meant to run in its own goroutine; returns when the model is ready or the
// context is cancelled.
func (s *ChatService) WarmUp(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		if err := s.provider.Ping(ctx); err == nil {
			s.loaded.Store(true)
			log.Info().Str("model", s.modelName).Msg("model backend ready")
			return
		} else if ctx.Err() == nil {
			log.Warn().Err(err).Str("model", s.modelName).Msg("model backend not ready yet")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *ChatService) logExchange(message string, result ChatResult) {
	if s.auditStore == nil {
		return
	}
	err := s.auditStore.LogChat(&store.ChatExchange{
		Message:  message,
		Response: result.Response,
		Model:    result.ModelUsed,
		Fallback: result.Fallback,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to record chat exchange")
	}
}
