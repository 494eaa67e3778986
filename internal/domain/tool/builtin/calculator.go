package builtin

import (
	"context"
	"time"

	"github.com/matiasleandrokruk/toolbridge/internal/domain/tool"
)

// Calculator evaluates arithmetic expressions. It is pure computation, so it
// carries a short timeout.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

func (c *Calculator) Schema() tool.Schema {
	return tool.Schema{
		Name:        "calculator",
		Description: "Perform mathematical calculations on an arithmetic expression",
		Params: map[string]tool.Param{
			"expression": {
				Type:        tool.TypeString,
				Description: "Arithmetic expression, e.g. \"2 + 2 * 3\"",
				Required:    true,
			},
		},
	}
}

func (c *Calculator) Timeout() time.Duration { return 5 * time.Second }

type calculatorRequest struct {
	Expression string `json:"expression"`
}

func (c *Calculator) Execute(_ context.Context, params map[string]any) tool.Result {
	var req calculatorRequest
	if err := decodeParams(params, &req); err != nil {
		return tool.Errorf("invalid calculator params: %v", err)
	}

	value, err := evalExpression(req.Expression)
	if err != nil {
		return tool.Errorf("cannot evaluate %q: %v", req.Expression, err)
	}

	return tool.Success(map[string]any{
		"expression": req.Expression,
		"result":     value,
	})
}
