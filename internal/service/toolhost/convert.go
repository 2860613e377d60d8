package toolhost

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/mathtools/pkg/types"
)

func boolPtr(b bool) *bool {
	return &b
}

// ConvertDescriptorToMcpObject converts a tool descriptor into the mcp.Tool advertised to MCP clients.
// Every param is required, and the Required list preserves the param order so that
// clients can rebuild the positional signature.
func ConvertDescriptorToMcpObject(d types.ToolDescriptor) mcp.Tool {
	props := make(map[string]any, len(d.Params))
	required := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		prop := map[string]any{"type": string(p.Type)}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
		required = append(required, p.Name)
	}

	return mcp.Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
		Annotations: mcp.ToolAnnotation{
			ReadOnlyHint:   boolPtr(true),
			IdempotentHint: boolPtr(true),
		},
	}
}

// ConvertMcpObjectToDescriptor rebuilds a tool descriptor from a discovered mcp.Tool.
// Params listed in Required come first in that order, the remaining properties follow sorted by name.
func ConvertMcpObjectToDescriptor(t mcp.Tool) types.ToolDescriptor {
	d := types.ToolDescriptor{
		Name:        t.Name,
		Description: t.Description,
	}

	seen := make(map[string]bool, len(t.InputSchema.Properties))
	for _, name := range t.InputSchema.Required {
		if _, ok := t.InputSchema.Properties[name]; !ok || seen[name] {
			continue
		}
		seen[name] = true
		d.Params = append(d.Params, paramFromProperty(name, t.InputSchema.Properties[name]))
	}

	var rest []string
	for name := range t.InputSchema.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		d.Params = append(d.Params, paramFromProperty(name, t.InputSchema.Properties[name]))
	}

	return d
}

func paramFromProperty(name string, prop any) types.Param {
	p := types.Param{Name: name}
	m, ok := prop.(map[string]any)
	if !ok {
		return p
	}
	if typ, ok := m["type"].(string); ok {
		p.Type = types.ParamType(typ)
	}
	if desc, ok := m["description"].(string); ok {
		p.Description = desc
	}
	return p
}
