package toolhost

import (
	"context"
	"fmt"
	"math"

	"github.com/mcpjungle/mathtools/internal"
	"github.com/mcpjungle/mathtools/pkg/types"
)

const MultiplyToolName = "multiply"

// MultiplyDescriptor describes the multiply tool.
func MultiplyDescriptor() types.ToolDescriptor {
	return types.ToolDescriptor{
		Name:        MultiplyToolName,
		Description: "Multiply two numbers and return the product.",
		Params: []types.Param{
			{Name: "a", Type: types.ParamNumber, Description: "first factor"},
			{Name: "b", Type: types.ParamNumber, Description: "second factor"},
		},
		OutputType: "object",
	}
}

// Multiply computes the product of a and b.
func Multiply(_ context.Context, args map[string]any) (any, error) {
	a, _ := types.ToFloat64(args["a"])
	b, _ := types.ToFloat64(args["b"])

	product := a * b
	if math.IsInf(product, 0) || math.IsNaN(product) {
		return nil, types.NewToolError(
			types.ErrorKindInvalidArguments,
			fmt.Sprintf("product of %s and %s is not a finite number", internal.FormatNumber(a), internal.FormatNumber(b)),
		)
	}

	return &types.MultiplyResult{
		A:       a,
		B:       b,
		Product: product,
		Summary: internal.MultiplySummary(a, b, product),
	}, nil
}

// RegisterBuiltinTools registers every tool that ships with mathtools.
func RegisterBuiltinTools(r *Registry) error {
	if err := r.Register(MultiplyDescriptor(), Multiply); err != nil {
		return fmt.Errorf("failed to register %s: %w", MultiplyToolName, err)
	}
	return nil
}
