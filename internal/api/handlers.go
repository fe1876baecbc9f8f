package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"wromgpt/internal/core"
)

const (
	serviceName    = "WromGPT API"
	serviceVersion = "1.0.0"

	defaultMaxLength   = 200
	defaultTemperature = 0.7

	historyLimit = 50
)

type APIHandler struct {
	chatService *core.ChatService
	aiModel     string
}

func NewAPIHandler(cs *core.ChatService, aiModel string) *APIHandler {
	return &APIHandler{chatService: cs, aiModel: aiModel}
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"version": serviceVersion,
		"status":  "running",
		"model":   h.chatService.ModelName(),
		"endpoints": map[string]string{
			"chat":         "/api/chat",
			"instructions": "/api/instructions",
			"health":       "/health",
		},
	})
}

func (h *APIHandler) ModelInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ai_model":   h.aiModel,
		"model_name": h.chatService.ModelName(),
	})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	loaded := h.chatService.ModelLoaded()
	status := "healthy"
	if !loaded {
		status = "unhealthy"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"model_loaded": loaded,
		"model_name":   h.chatService.ModelName(),
	})
}

type ChatRequest struct {
	Message            string   `json:"message"`
	MaxLength          *int     `json:"max_length,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
	CustomInstructions string   `json:"custom_instructions,omitempty"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	ModelUsed string `json:"model_used"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "Message cannot be empty", http.StatusBadRequest)
		return
	}

	params := core.ChatParams{
		Message:            req.Message,
		MaxLength:          defaultMaxLength,
		Temperature:        defaultTemperature,
		CustomInstructions: req.CustomInstructions,
	}
	if req.MaxLength != nil {
		params.MaxLength = *req.MaxLength
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}

	result := h.chatService.Chat(r.Context(), params)
	writeJSON(w, http.StatusOK, ChatResponse{
		Response:  result.Response,
		ModelUsed: result.ModelUsed,
	})
}

func (h *APIHandler) GetInstructionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"instructions": h.chatService.Instructions(),
	})
}

type UpdateInstructionsRequest struct {
	Instructions string `json:"instructions"`
}

func (h *APIHandler) UpdateInstructionsHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateInstructionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Instructions) == "" {
		http.Error(w, "Instructions cannot be empty", http.StatusBadRequest)
		return
	}

	updated := h.chatService.UpdateInstructions(req.Instructions)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "success",
		"message":      "System instructions updated",
		"instructions": updated,
	})
}

func (h *APIHandler) InstructionHistoryHandler(w http.ResponseWriter, r *http.Request) {
	revisions, err := h.chatService.InstructionHistory(historyLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list instruction revisions")
		http.Error(w, "Failed to list instruction revisions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"revisions": revisions,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}
