package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/chat"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/llm"
)

// ChatHandler serves the OpenAI-compatible chat completion surface.
type ChatHandler struct {
	service *chat.Service
	log     *slog.Logger
}

func NewChatHandler(service *chat.Service, log *slog.Logger) *ChatHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ChatHandler{service: service, log: log}
}

// chatCompletionRequest mirrors the OpenAI chat completion request body.
// Fields the engine does not act on (tool_choice, stream) are decoded so
// their presence can be validated, then dropped.
type chatCompletionRequest struct {
	Model       string         `json:"model"`
	Messages    []llm.Message  `json:"messages"`
	Temperature float32        `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Tools       []llm.ToolSpec `json:"tools,omitempty"`
	ToolChoice  any            `json:"tool_choice,omitempty"`
	Stream      bool           `json:"stream,omitempty"`
}

// openAIError is the error envelope OpenAI clients expect on this surface.
type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func writeOpenAIError(w http.ResponseWriter, status int, errType, message string) {
	var body openAIError
	body.Error.Message = message
	body.Error.Type = errType
	writeJSON(w, status, body)
}

func (h *ChatHandler) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOpenAIError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeOpenAIError(w, http.StatusBadRequest, "invalid_request_error", "messages is required")
		return
	}
	if req.Stream {
		writeOpenAIError(w, http.StatusBadRequest, "invalid_request_error", "streaming is not supported")
		return
	}

	completion, err := h.service.Complete(r.Context(), chat.Request{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Tools:       req.Tools,
		ClientTools: len(req.Tools) > 0,
	})
	if err != nil {
		h.log.Error("chat completion failed", "error", err)
		writeOpenAIError(w, http.StatusBadGateway, "api_error", "upstream completion failed")
		return
	}

	writeJSON(w, http.StatusOK, completion)
}
