package routing

import (
	"context"
	"encoding/json"
)

// NativeStrategy accepts a structured tool call the upstream model already
// produced. Malformed argument JSON or an unknown tool name makes the
// strategy miss so a later tier can still recover the intent.
type NativeStrategy struct {
	catalog Catalog
}

func NewNativeStrategy(catalog Catalog) *NativeStrategy {
	return &NativeStrategy{catalog: catalog}
}

func (s *NativeStrategy) Name() string { return "native" }

func (s *NativeStrategy) Route(_ context.Context, in Input) (Decision, bool) {
	call := in.NativeCall
	if call == nil || call.Name == "" {
		return Decision{}, false
	}
	if !knownTools(in.schemas(s.catalog))[call.Name] {
		return Decision{}, false
	}

	params := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &params); err != nil {
			return Decision{}, false
		}
	}
	return Decision{
		ShouldInvoke:   true,
		ToolName:       call.Name,
		Parameters:     params,
		StrategySource: s.Name(),
	}, true
}
