// Package chat orchestrates one chat-completion request end to end: upstream
// completion with the tool catalog attached, routing, safe dispatch, a
// synthesized tool turn, and a follow-up completion for the final
// natural-language answer. When no tool applies the upstream answer passes
// through untouched.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/audit"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/routing"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/synth"
	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/eventbus"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/llm"
)

// Service glues provider, router, registry and synthesizer together.
type Service struct {
	provider     llm.Provider
	registry     *tool.Registry
	router       *routing.Router
	synth        *synth.Synthesizer
	bus          eventbus.EventBus
	defaultModel string
	log          *slog.Logger
}

func NewService(
	provider llm.Provider,
	registry *tool.Registry,
	router *routing.Router,
	syn *synth.Synthesizer,
	bus eventbus.EventBus,
	defaultModel string,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		provider:     provider,
		registry:     registry,
		router:       router,
		synth:        syn,
		bus:          bus,
		defaultModel: defaultModel,
		log:          log,
	}
}

// Request is one inbound chat completion.
type Request struct {
	Model       string
	Messages    []llm.Message
	Temperature float32
	MaxTokens   int

	// Tools is the caller's own tool list, forwarded upstream verbatim
	// when ClientTools is set.
	Tools []llm.ToolSpec

	// ClientTools is set when the caller supplied its own tools list and
	// will execute tool calls itself. The service then advertises the
	// caller's tools, routes only among them, and reports the synthesized
	// tool call instead of dispatching.
	ClientTools bool
}

// Complete runs the full turn. Ordering within a turn is strict: routing
// completes before dispatch, dispatch completes before synthesis.
func (s *Service) Complete(ctx context.Context, req Request) (synth.Completion, error) {
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	specs := s.toolSpecs()
	var offered []tool.FunctionSchema
	if req.ClientTools {
		// The caller brings its own tools: advertise those upstream and
		// route only among them, never the registry catalog.
		specs = req.Tools
		offered = offeredSchemas(req.Tools)
	}
	if len(specs) == 0 {
		return s.passthrough(ctx, req, model, nil)
	}

	resp, err := s.provider.ChatCompletion(ctx, llm.ChatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Tools:       specs,
		ToolChoice:  "auto",
	})
	if err != nil {
		return synth.Completion{}, fmt.Errorf("chat: upstream completion: %w", err)
	}

	decision := s.router.Route(ctx, routing.Input{
		UserText:   lastUserText(req.Messages),
		NativeCall: nativeCall(resp),
		Offered:    offered,
	})
	if !decision.ShouldInvoke {
		return s.synth.TextCompletion(resp.Content, model, resp.Tokens), nil
	}

	if req.ClientTools {
		// The caller executes tools itself: report the call, don't run it.
		return s.synth.Completion(decision, model), nil
	}

	result := s.dispatch(ctx, decision)
	turn := s.synth.ToolTurn(decision, result)

	followUp := make([]llm.Message, 0, len(req.Messages)+2)
	followUp = append(followUp, req.Messages...)
	followUp = append(followUp, turn.Assistant, turn.Tool)

	final, err := s.provider.ChatCompletion(ctx, llm.ChatRequest{
		Model:       model,
		Messages:    followUp,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return synth.Completion{}, fmt.Errorf("chat: follow-up completion: %w", err)
	}
	return s.synth.TextCompletion(final.Content, model, resp.Tokens+final.Tokens), nil
}

// passthrough forwards the request unchanged (no tools registered).
func (s *Service) passthrough(ctx context.Context, req Request, model string, specs []llm.ToolSpec) (synth.Completion, error) {
	resp, err := s.provider.ChatCompletion(ctx, llm.ChatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Tools:       specs,
	})
	if err != nil {
		return synth.Completion{}, fmt.Errorf("chat: upstream completion: %w", err)
	}
	return s.synth.TextCompletion(resp.Content, model, resp.Tokens), nil
}

// dispatch executes the selected tool and publishes the audit event.
func (s *Service) dispatch(ctx context.Context, d routing.Decision) tool.Result {
	start := time.Now()
	result := s.registry.Execute(ctx, d.ToolName, d.Parameters)
	elapsed := time.Since(start)

	s.log.Info("tool dispatched",
		"tool", d.ToolName,
		"source", d.StrategySource,
		"status", string(result.Status),
		"duration", elapsed)

	if s.bus != nil {
		category, _ := s.registry.CategoryOf(d.ToolName)
		s.bus.Publish(audit.TopicInvocation, audit.InvocationEvent{
			ToolName: d.ToolName,
			Category: category,
			Source:   d.StrategySource,
			Status:   string(result.Status),
			Params:   d.Parameters,
			Error:    result.Error,
			Duration: elapsed,
		})
	}
	return result
}

// offeredSchemas converts the caller's tool specs into routing schemas.
// A spec whose function object is malformed or unnamed is skipped: routing
// can only honor tools it can identify.
func offeredSchemas(specs []llm.ToolSpec) []tool.FunctionSchema {
	out := make([]tool.FunctionSchema, 0, len(specs))
	for _, sp := range specs {
		raw, err := json.Marshal(sp.Function)
		if err != nil {
			continue
		}
		var fn tool.FunctionSchema
		if err := json.Unmarshal(raw, &fn); err != nil || fn.Name == "" {
			continue
		}
		out = append(out, fn)
	}
	return out
}

func (s *Service) toolSpecs() []llm.ToolSpec {
	schemas := s.registry.Schemas("")
	specs := make([]llm.ToolSpec, 0, len(schemas))
	for _, sc := range schemas {
		specs = append(specs, llm.ToolSpec{Type: "function", Function: sc})
	}
	return specs
}

func lastUserText(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func nativeCall(resp *llm.ChatResponse) *routing.NativeCall {
	if resp == nil || len(resp.ToolCalls) == 0 {
		return nil
	}
	call := resp.ToolCalls[0]
	return &routing.NativeCall{
		Name:      call.Function.Name,
		Arguments: call.Function.Arguments,
	}
}
