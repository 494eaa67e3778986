// Package llm — LLMProvider interface.
// Adapters (vLLM/OpenAI-compatible, etc.) implement this interface so the
// application is never coupled to a specific LLM vendor.
package llm

import "context"

// Provider is the model-agnostic interface for chat-completion operations.
type Provider interface {
	// ChatCompletion performs a non-streaming chat completion. Tool
	// schemas in the request are advertised to the model; whether the
	// model honors them is up to the upstream.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable and operational.
	HealthCheck(ctx context.Context) error
}
