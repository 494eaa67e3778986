// Package tool implements the tool invocation engine: the contract every
// executable tool satisfies, the tagged result type, and the registry that
// catalogs tools and performs safe dispatch with validation, timeout
// enforcement and usage accounting.
package tool

import (
	"context"
	"sort"
	"time"
)

// ParamType enumerates the primitive parameter types a tool may declare.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// Param declares a single named parameter of a tool schema.
type Param struct {
	Type        ParamType
	Description string
	Enum        []string
	Required    bool
}

// Schema describes a tool to callers and to the language model.
type Schema struct {
	Name        string
	Description string
	Params      map[string]Param
}

// Tool is the contract every executable capability implements.
// Execute must not panic across the boundary; the registry recovers and
// converts any escaped panic into an error result, but well-behaved tools
// return Error/Partial themselves. Implementations must honor ctx
// cancellation so the registry can enforce timeouts.
type Tool interface {
	Schema() Schema

	Execute(ctx context.Context, params map[string]any) Result

	// Timeout returns the per-tool execution bound. Zero means the
	// registry default applies.
	Timeout() time.Duration
}

// FunctionSchema is the structured-output-compatible export shape presented
// to language models and HTTP listing endpoints.
type FunctionSchema struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  ParametersSchema `json:"parameters"`
}

// ParametersSchema is the JSON-Schema-like parameter object of a function.
type ParametersSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// PropertySchema declares one named property of a ParametersSchema.
type PropertySchema struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Function converts the schema into its export shape. The required list is
// sorted so the export is deterministic regardless of map iteration order.
func (s Schema) Function() FunctionSchema {
	props := make(map[string]PropertySchema, len(s.Params))
	required := make([]string, 0, len(s.Params))
	for name, p := range s.Params {
		props[name] = PropertySchema{
			Type:        string(p.Type),
			Description: p.Description,
			Enum:        p.Enum,
		}
		if p.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return FunctionSchema{
		Name:        s.Name,
		Description: s.Description,
		Parameters: ParametersSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}
