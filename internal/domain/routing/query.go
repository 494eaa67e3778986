package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
	"github.com/matiasleandrokruk/toolbridge/internal/infra/llm"
)

// DefaultQueryTimeout bounds the secondary routing call to the model. It is
// deliberately shorter than typical tool timeouts: a slow router is worse
// than no router, since the pattern tier can still fire.
const DefaultQueryTimeout = 10 * time.Second

// QueryStrategy asks the model itself whether a tool applies, in a narrowly
// scoped secondary request that must answer with a single JSON object.
// Any model error, timeout or unparsable answer is a miss, never fatal.
type QueryStrategy struct {
	catalog  Catalog
	provider llm.Provider
	timeout  time.Duration
}

func NewQueryStrategy(catalog Catalog, provider llm.Provider, timeout time.Duration) *QueryStrategy {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &QueryStrategy{catalog: catalog, provider: provider, timeout: timeout}
}

func (s *QueryStrategy) Name() string { return "query" }

func (s *QueryStrategy) Route(ctx context.Context, in Input) (Decision, bool) {
	if s.provider == nil || strings.TrimSpace(in.UserText) == "" {
		return Decision{}, false
	}
	schemas := in.schemas(s.catalog)
	if len(schemas) == 0 {
		return Decision{}, false
	}

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.ChatCompletion(qctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "user", Content: routingPrompt(schemas, in.UserText)},
		},
		Temperature: 0,
		MaxTokens:   150,
	})
	if err != nil {
		return Decision{}, false
	}

	var routed struct {
		ToolName   *string        `json:"tool_name"`
		Parameters map[string]any `json:"parameters"`
	}
	content := strings.TrimSpace(resp.Content)
	if err := json.Unmarshal([]byte(content), &routed); err != nil {
		return Decision{}, false
	}
	if routed.ToolName == nil || *routed.ToolName == "" || *routed.ToolName == "null" {
		return Decision{}, false
	}
	if !knownTools(schemas)[*routed.ToolName] {
		return Decision{}, false
	}
	params := routed.Parameters
	if params == nil {
		params = map[string]any{}
	}
	return Decision{
		ShouldInvoke:   true,
		ToolName:       *routed.ToolName,
		Parameters:     params,
		StrategySource: s.Name(),
	}, true
}

// routingPrompt builds the constrained instruction: tool list plus the user
// request, with the answer forced into a single JSON object.
func routingPrompt(schemas []tool.FunctionSchema, userText string) string {
	var b strings.Builder
	b.WriteString("You are a tool router. Given the user's request, decide if any tool should be used.\n\n")
	b.WriteString("Available tools:\n")
	for _, s := range schemas {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
	}
	b.WriteString("\nUser request: ")
	b.WriteString(userText)
	b.WriteString("\n\nIf a tool should be used, output ONLY a JSON object like this:\n")
	b.WriteString(`{"tool_name": "tool_name", "parameters": {"param": "value"}}`)
	b.WriteString("\n\nIf no tool is needed, output ONLY:\n")
	b.WriteString(`{"tool_name": null}`)
	b.WriteString("\n\nOutput ONLY the JSON, no other text.")
	return b.String()
}
