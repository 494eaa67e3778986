// Package llm defines the model-agnostic chat-completion abstraction.
// All types here are shared between the provider interface and adapters.
package llm

// Message represents a single turn in a conversation.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant" | "tool"
	Content string `json:"content"`

	// ToolCalls is set on assistant turns that request tool execution.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID and Name correlate a "tool" turn with the assistant
	// call that requested it.
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ToolCall is a machine-readable tool invocation emitted by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // always "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall names the tool and carries its arguments as serialized JSON,
// matching the OpenAI wire format.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolSpec advertises one tool to the model. Function holds the exported
// function schema (name, description, JSON-Schema parameters).
type ToolSpec struct {
	Type     string `json:"type"` // always "function"
	Function any    `json:"function"`
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int

	// Tools offered for this completion; nil means plain text chat.
	Tools []ToolSpec

	// ToolChoice is "auto", "none", or a forced
	// {"type":"function","function":{"name":...}} object.
	ToolChoice any
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string     // Assistant message text ("" when tool calls are present).
	ToolCalls  []ToolCall // Structured tool invocations, if the model emitted any.
	StopReason string     // "stop" | "length" | "tool_calls" | "error"
	Tokens     int        // Total tokens consumed (prompt + completion).
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID        string // e.g. "openai/gpt-oss-20b"
	Provider  string // e.g. "vllm"
	Version   string
	MaxTokens int // Maximum context window size.
}
