// Package synth packages tool outcomes back into model-consumable shapes:
// either a pair of conversation turns (assistant tool call + tool reply) for
// a follow-up completion, or a full OpenAI-style chat.completion envelope
// for callers that expect to observe a structured tool call on the wire.
package synth

import (
	"encoding/json"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/routing"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/llm"
	"github.com/matiasleandrokruk/toolbridge/pkg/uuid"
)

// Synthesizer builds tool turns and completion envelopes. Output is
// deterministic for a given (decision, result) pair apart from the opaque
// call/completion ids and the created timestamp.
type Synthesizer struct {
	// now and newID are swappable for tests.
	now   func() time.Time
	newID func() uuid.UUID
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{now: time.Now, newID: uuid.NewV7}
}

// Turn is one completed tool exchange: the assistant turn that requested the
// call and the tool turn that answers it, correlated by CallID.
type Turn struct {
	CallID    string
	Assistant llm.Message
	Tool      llm.Message
}

// ToolTurn renders a dispatch outcome as conversation turns for a follow-up
// model call. Error and timeout text is carried verbatim in the tool turn so
// the model can explain or recover; it is never swallowed here.
func (s *Synthesizer) ToolTurn(d routing.Decision, r tool.Result) Turn {
	callID := "call_" + s.newID().ShortHex(8)
	return Turn{
		CallID:    callID,
		Assistant: s.assistantCall(d, callID),
		Tool: llm.Message{
			Role:       "tool",
			Content:    r.String(),
			ToolCallID: callID,
			Name:       d.ToolName,
		},
	}
}

// Completion is the OpenAI-compatible chat.completion envelope.
type Completion struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int         `json:"index"`
	Message      llm.Message `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion reports a locally synthesized tool invocation as if the model
// had emitted it: one choice whose assistant message carries the tool call,
// finish_reason "tool_calls". Token counts are estimates; no upstream
// completion was consumed for this envelope.
func (s *Synthesizer) Completion(d routing.Decision, model string) Completion {
	callID := "call_" + s.newID().ShortHex(8)
	return Completion{
		ID:      "chatcmpl-" + s.newID().Hex(),
		Object:  "chat.completion",
		Created: s.now().Unix(),
		Model:   model,
		Choices: []Choice{{
			Index:        0,
			Message:      s.assistantCall(d, callID),
			FinishReason: "tool_calls",
		}},
		Usage: Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}
}

// TextCompletion wraps a plain assistant answer in the same envelope shape,
// finish_reason "stop". Used when no tool was invoked or for the final
// natural-language answer after a tool exchange.
func (s *Synthesizer) TextCompletion(content, model string, tokens int) Completion {
	usage := Usage{TotalTokens: tokens}
	return Completion{
		ID:      "chatcmpl-" + s.newID().Hex(),
		Object:  "chat.completion",
		Created: s.now().Unix(),
		Model:   model,
		Choices: []Choice{{
			Index:        0,
			Message:      llm.Message{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
		Usage: usage,
	}
}

// assistantCall builds the assistant message carrying the structured call.
// Arguments are serialized to JSON; a decision whose parameters cannot be
// marshalled would have failed validation long before reaching synthesis, so
// the fallback here is an empty object.
func (s *Synthesizer) assistantCall(d routing.Decision, callID string) llm.Message {
	args := "{}"
	if len(d.Parameters) > 0 {
		if raw, err := json.Marshal(d.Parameters); err == nil {
			args = string(raw)
		}
	}
	return llm.Message{
		Role: "assistant",
		ToolCalls: []llm.ToolCall{{
			ID:   callID,
			Type: "function",
			Function: llm.FunctionCall{
				Name:      d.ToolName,
				Arguments: args,
			},
		}},
	}
}
