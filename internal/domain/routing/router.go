package routing

import (
	"context"
	"log/slog"
)

// Router runs the strategy chain. Strategies are evaluated in the order
// given; the first one that yields a decision short-circuits the rest.
// A decision is always the product of exactly one strategy, never a blend.
type Router struct {
	strategies []Strategy
	log        *slog.Logger
}

// NewRouter builds a router over an explicit strategy order.
func NewRouter(log *slog.Logger, strategies ...Strategy) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{strategies: strategies, log: log}
}

// NewDefaultRouter wires the normative chain: native → query → pattern.
// The query tier is skipped entirely when provider is nil (offline mode).
func NewDefaultRouter(log *slog.Logger, catalog Catalog, query *QueryStrategy) *Router {
	strategies := []Strategy{NewNativeStrategy(catalog)}
	if query != nil {
		strategies = append(strategies, query)
	}
	strategies = append(strategies, NewPatternStrategy(catalog))
	return NewRouter(log, strategies...)
}

// Route produces exactly one Decision for the input. Exhausting the chain
// is a valid outcome: ShouldInvoke=false, StrategySource="none".
func (r *Router) Route(ctx context.Context, in Input) Decision {
	for _, s := range r.strategies {
		if ctx.Err() != nil {
			break
		}
		d, ok := s.Route(ctx, in)
		if !ok {
			continue
		}
		r.log.Debug("routing decision",
			"strategy", d.StrategySource,
			"tool", d.ToolName)
		return d
	}
	r.log.Debug("routing exhausted, no tool selected")
	return Decision{ShouldInvoke: false, StrategySource: SourceNone}
}
