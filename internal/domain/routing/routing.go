// Package routing decides whether a user turn should invoke a tool, and
// which one. A fixed chain of strategies is tried in priority order; the
// first strategy that produces a decision wins and later strategies are
// skipped. If every strategy misses, the outcome is "no tool needed" —
// that is a valid result, not an error.
package routing

import (
	"context"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

// Catalog is the read-only view of the tool registry that routing needs.
// It deliberately excludes dispatch: routing selects tools, it never runs them.
type Catalog interface {
	// Schemas returns the exported function schemas, optionally filtered by
	// category (empty string = all).
	Schemas(category string) []tool.FunctionSchema
}

// NativeCall is a structured tool invocation already produced by the model.
type NativeCall struct {
	Name      string
	Arguments string // raw JSON object
}

// Input is one routing attempt: the user's latest text plus whatever
// structured call the upstream model may have emitted.
type Input struct {
	UserText   string
	NativeCall *NativeCall

	// Offered restricts this attempt to the caller's own tool list, for
	// requests where the client executes tool calls itself. Nil means the
	// full catalog; empty but non-nil means no tool may be selected.
	Offered []tool.FunctionSchema
}

// schemas resolves the candidate set for one attempt: the offered tools when
// the caller supplied them, the catalog otherwise.
func (in Input) schemas(c Catalog) []tool.FunctionSchema {
	if in.Offered != nil {
		return in.Offered
	}
	return c.Schemas("")
}

// Decision is the outcome of a routing attempt. ToolName and Parameters are
// meaningful only when ShouldInvoke is true. StrategySource names the
// strategy that produced the decision ("native", "query", "pattern") or
// "none" when the chain was exhausted.
type Decision struct {
	ShouldInvoke   bool           `json:"shouldInvoke"`
	ToolName       string         `json:"toolName,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	StrategySource string         `json:"strategySource"`
}

// SourceNone is the StrategySource reported when no strategy fired.
const SourceNone = "none"

// Strategy is one tier of the routing chain.
type Strategy interface {
	// Name identifies the strategy in Decision.StrategySource.
	Name() string
	// Route attempts a decision. ok=false means the strategy missed and the
	// chain should fall through; a miss is never an error.
	Route(ctx context.Context, in Input) (Decision, bool)
}

// knownTools builds a name set from a schema list.
func knownTools(schemas []tool.FunctionSchema) map[string]bool {
	names := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		names[s.Name] = true
	}
	return names
}
