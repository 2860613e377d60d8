package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ParamType is the JSON schema type of a single tool parameter.
type ParamType string

const (
	ParamNumber  ParamType = "number"
	ParamInteger ParamType = "integer"
	ParamString  ParamType = "string"
	ParamBoolean ParamType = "boolean"
)

// ValidateParamType returns an error if t is not one of the supported parameter types.
func ValidateParamType(t ParamType) error {
	switch t {
	case ParamNumber, ParamInteger, ParamString, ParamBoolean:
		return nil
	}
	return fmt.Errorf("unsupported parameter type '%s'", t)
}

// Param describes one positional parameter of a tool.
type Param struct {
	Name        string    `json:"name" yaml:"name"`
	Type        ParamType `json:"type" yaml:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// ToolDescriptor describes a tool exposed by a Tool Host.
// The order of Params is significant: positional arguments bind to params in this order.
type ToolDescriptor struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Params      []Param `json:"params" yaml:"params"`
	OutputType  string  `json:"output_type,omitempty" yaml:"output_type,omitempty"`
}

// Validate checks that the descriptor itself is well-formed.
func (d *ToolDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("tool %s: parameter name must not be empty", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %s: duplicate parameter '%s'", d.Name, p.Name)
		}
		seen[p.Name] = true
		if err := ValidateParamType(p.Type); err != nil {
			return fmt.Errorf("tool %s: parameter %s: %w", d.Name, p.Name, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the descriptor.
func (d ToolDescriptor) Clone() ToolDescriptor {
	c := d
	c.Params = append([]Param(nil), d.Params...)
	return c
}

// BindArguments merges positional and keyword arguments into a single keyword map.
// Positional arguments bind to params in declaration order.
// It fails if there are more positional arguments than params, or if a param is given both ways.
func (d *ToolDescriptor) BindArguments(positional []any, keyword map[string]any) (map[string]any, error) {
	if len(positional) > len(d.Params) {
		return nil, NewToolError(
			ErrorKindInvalidArguments,
			fmt.Sprintf("tool %s takes %d arguments, %d given", d.Name, len(d.Params), len(positional)),
		)
	}

	bound := make(map[string]any, len(d.Params))
	for i, v := range positional {
		bound[d.Params[i].Name] = v
	}
	for k, v := range keyword {
		if _, dup := bound[k]; dup {
			return nil, NewToolError(
				ErrorKindInvalidArguments,
				fmt.Sprintf("tool %s got multiple values for argument '%s'", d.Name, k),
			)
		}
		bound[k] = v
	}
	return bound, nil
}

// ValidateArguments performs the arity and type check of args against the descriptor.
// Every param is required and no extra arguments are accepted.
func (d *ToolDescriptor) ValidateArguments(args map[string]any) error {
	if len(args) != len(d.Params) {
		return NewToolError(
			ErrorKindInvalidArguments,
			fmt.Sprintf("tool %s takes %d arguments, %d given", d.Name, len(d.Params), len(args)),
		)
	}
	for _, p := range d.Params {
		v, ok := args[p.Name]
		if !ok {
			return NewToolError(
				ErrorKindInvalidArguments,
				fmt.Sprintf("tool %s: missing required argument '%s'", d.Name, p.Name),
			)
		}
		if err := checkParamValue(p, v); err != nil {
			return NewToolError(ErrorKindInvalidArguments, fmt.Sprintf("tool %s: %v", d.Name, err))
		}
	}
	return nil
}

func checkParamValue(p Param, v any) error {
	switch p.Type {
	case ParamNumber, ParamInteger:
		f, ok := ToFloat64(v)
		if !ok {
			return fmt.Errorf("argument '%s' must be a %s, got %T", p.Name, p.Type, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("argument '%s' must be a finite number", p.Name)
		}
		if p.Type == ParamInteger && f != math.Trunc(f) {
			return fmt.Errorf("argument '%s' must be an integer, got %v", p.Name, f)
		}
	case ParamString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("argument '%s' must be a string, got %T", p.Name, v)
		}
	case ParamBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("argument '%s' must be a boolean, got %T", p.Name, v)
		}
	}
	return nil
}

// ToFloat64 converts any Go or JSON numeric value to float64.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// InvokeRequest asks a Tool Host to execute a named tool.
type InvokeRequest struct {
	Name   string         `json:"name"`
	Args   []any          `json:"args,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

// InvokeResult is the successful outcome of a tool invocation.
// Result holds the JSON encoding of whatever the tool returned.
type InvokeResult struct {
	Tool   string          `json:"tool"`
	Result json.RawMessage `json:"result"`
}

// Decode unmarshals the tool's result into v.
func (r *InvokeResult) Decode(v any) error {
	if len(r.Result) == 0 {
		return fmt.Errorf("tool %s returned an empty result", r.Tool)
	}
	return json.Unmarshal(r.Result, v)
}

// MultiplyResult is the result returned by the multiply tool.
type MultiplyResult struct {
	A       float64 `json:"a"`
	B       float64 `json:"b"`
	Product float64 `json:"product"`
	Summary string  `json:"summary"`
}
