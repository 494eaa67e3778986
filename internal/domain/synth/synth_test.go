package synth

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/routing"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
	"github.com/matiasleandrokruk/toolbridge/pkg/uuid"
)

func fixedSynthesizer() *Synthesizer {
	s := NewSynthesizer()
	s.now = func() time.Time { return time.Unix(1750000000, 0) }
	s.newID = func() uuid.UUID {
		return uuid.UUID{0xab, 0x12, 0xcd, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	}
	return s
}

func calcDecision() routing.Decision {
	return routing.Decision{
		ShouldInvoke:   true,
		ToolName:       "calculator",
		Parameters:     map[string]any{"expression": "25 * 4"},
		StrategySource: "pattern",
	}
}

func TestToolTurn_CorrelatesByCallID(t *testing.T) {
	t.Parallel()

	s := fixedSynthesizer()
	turn := s.ToolTurn(calcDecision(), tool.Success(map[string]any{"result": 100.0}))

	if !regexp.MustCompile(`^call_[0-9a-f]{8}$`).MatchString(turn.CallID) {
		t.Fatalf("expected call_<hex8> id, got %q", turn.CallID)
	}
	if len(turn.Assistant.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call on the assistant turn, got %d", len(turn.Assistant.ToolCalls))
	}
	if turn.Assistant.ToolCalls[0].ID != turn.CallID {
		t.Errorf("assistant call id %q != turn id %q", turn.Assistant.ToolCalls[0].ID, turn.CallID)
	}
	if turn.Tool.ToolCallID != turn.CallID {
		t.Errorf("tool turn correlation id %q != turn id %q", turn.Tool.ToolCallID, turn.CallID)
	}
	if turn.Tool.Role != "tool" || turn.Tool.Name != "calculator" {
		t.Errorf("unexpected tool turn: %+v", turn.Tool)
	}
}

func TestToolTurn_SerializesArguments(t *testing.T) {
	t.Parallel()

	s := fixedSynthesizer()
	turn := s.ToolTurn(calcDecision(), tool.Success("100"))

	var args map[string]any
	if err := json.Unmarshal([]byte(turn.Assistant.ToolCalls[0].Function.Arguments), &args); err != nil {
		t.Fatalf("arguments are not valid JSON: %v", err)
	}
	if args["expression"] != "25 * 4" {
		t.Errorf("expected expression argument, got %v", args)
	}
}

func TestToolTurn_ErrorTextCarriedVerbatim(t *testing.T) {
	t.Parallel()

	s := fixedSynthesizer()

	turn := s.ToolTurn(calcDecision(), tool.Errorf("division by zero"))
	if !strings.Contains(turn.Tool.Content, "division by zero") {
		t.Errorf("error text swallowed: %q", turn.Tool.Content)
	}

	timeout := tool.Result{Status: tool.StatusTimeout, Error: "tool execution timed out after 5s"}
	turn = s.ToolTurn(calcDecision(), timeout)
	if !strings.Contains(turn.Tool.Content, "timed out after 5s") {
		t.Errorf("timeout text swallowed: %q", turn.Tool.Content)
	}
}

func TestToolTurn_DeterministicApartFromID(t *testing.T) {
	t.Parallel()

	s := fixedSynthesizer()
	a := s.ToolTurn(calcDecision(), tool.Success("100"))
	b := s.ToolTurn(calcDecision(), tool.Success("100"))

	if a.Tool.Content != b.Tool.Content {
		t.Errorf("tool content differs across identical inputs: %q vs %q", a.Tool.Content, b.Tool.Content)
	}
	if a.Assistant.ToolCalls[0].Function != b.Assistant.ToolCalls[0].Function {
		t.Errorf("function payload differs across identical inputs")
	}
}

func TestCompletion_Envelope(t *testing.T) {
	t.Parallel()

	s := fixedSynthesizer()
	c := s.Completion(calcDecision(), "openai/gpt-oss-20b")

	if !strings.HasPrefix(c.ID, "chatcmpl-") || len(c.ID) != len("chatcmpl-")+32 {
		t.Errorf("expected chatcmpl-<hex32> id, got %q", c.ID)
	}
	if c.Object != "chat.completion" {
		t.Errorf("expected object chat.completion, got %q", c.Object)
	}
	if c.Created != 1750000000 {
		t.Errorf("expected fixed created timestamp, got %d", c.Created)
	}
	if c.Model != "openai/gpt-oss-20b" {
		t.Errorf("unexpected model %q", c.Model)
	}
	if len(c.Choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(c.Choices))
	}
	choice := c.Choices[0]
	if choice.FinishReason != "tool_calls" {
		t.Errorf("expected finish_reason tool_calls, got %q", choice.FinishReason)
	}
	if len(choice.Message.ToolCalls) != 1 || choice.Message.ToolCalls[0].Function.Name != "calculator" {
		t.Errorf("unexpected assistant message: %+v", choice.Message)
	}
}

func TestCompletion_JSONShape(t *testing.T) {
	t.Parallel()

	s := fixedSynthesizer()
	raw, err := json.Marshal(s.Completion(calcDecision(), "test-model"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, key := range []string{`"id"`, `"object"`, `"created"`, `"model"`, `"choices"`, `"usage"`, `"tool_calls"`, `"finish_reason"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("envelope missing %s: %s", key, raw)
		}
	}
}

func TestTextCompletion(t *testing.T) {
	t.Parallel()

	s := fixedSynthesizer()
	c := s.TextCompletion("calculated: 100", "test-model", 42)

	if c.Choices[0].FinishReason != "stop" {
		t.Errorf("expected finish_reason stop, got %q", c.Choices[0].FinishReason)
	}
	if c.Choices[0].Message.Content != "calculated: 100" {
		t.Errorf("unexpected content %q", c.Choices[0].Message.Content)
	}
	if c.Usage.TotalTokens != 42 {
		t.Errorf("expected 42 tokens, got %d", c.Usage.TotalTokens)
	}
}
