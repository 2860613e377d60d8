// Package toolhost implements the Tool Host: a statically registered catalog of tools
// that can be discovered and invoked over MCP and the REST API.
package toolhost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mcpjungle/mathtools/pkg/types"
)

var (
	ErrDuplicateTool  = errors.New("tool is already registered")
	ErrRegistryFrozen = errors.New("registry is frozen, tools can only be registered before the host starts serving")
)

// Handler executes a tool. args has already been bound and validated against the tool's descriptor.
// Returning a *types.ToolError lets a handler report a structured failure to the caller.
type Handler func(ctx context.Context, args map[string]any) (any, error)

type registeredTool struct {
	descriptor types.ToolDescriptor
	handler    Handler
}

// Registry keeps track of the tools exposed by a host, keyed by their unique names.
type Registry struct {
	tools  map[string]*registeredTool
	frozen bool
	mu     sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*registeredTool),
	}
}

// Register binds a name to a handler.
// It fails if the descriptor is malformed, the name is taken, or the registry is frozen.
func (r *Registry) Register(d types.ToolDescriptor, h Handler) error {
	if h == nil {
		return fmt.Errorf("tool %s: handler must not be nil", d.Name)
	}
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("cannot register tool %s: %w", d.Name, ErrRegistryFrozen)
	}
	if _, exists := r.tools[d.Name]; exists {
		return fmt.Errorf("cannot register tool %s: %w", d.Name, ErrDuplicateTool)
	}
	r.tools[d.Name] = &registeredTool{descriptor: d.Clone(), handler: h}
	return nil
}

// Freeze makes the catalog immutable for the rest of the process lifetime.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Discover returns the full catalog sorted by name.
// The returned descriptors are copies, so callers cannot mutate the registry.
func (r *Registry) Discover() []types.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog := make([]types.ToolDescriptor, 0, len(r.tools))
	for _, t := range r.tools {
		catalog = append(catalog, t.descriptor.Clone())
	}
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].Name < catalog[j].Name })
	return catalog
}

// Lookup returns the descriptor of a registered tool.
func (r *Registry) Lookup(name string) (types.ToolDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return types.ToolDescriptor{}, false
	}
	return t.descriptor.Clone(), true
}

// Invoke validates the request against the tool's descriptor, runs the handler and returns its JSON result.
// The handler is never reached for an unknown tool or invalid arguments.
func (r *Registry) Invoke(ctx context.Context, req *types.InvokeRequest) (*types.InvokeResult, error) {
	r.mu.RLock()
	t, ok := r.tools[req.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, types.NewToolError(
			types.ErrorKindUnknownTool,
			fmt.Sprintf("tool '%s' is not registered", req.Name),
		)
	}

	args, err := t.descriptor.BindArguments(req.Args, req.Kwargs)
	if err != nil {
		return nil, err
	}
	if err := t.descriptor.ValidateArguments(args); err != nil {
		return nil, err
	}

	out, err := t.handler(ctx, args)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result of tool %s: %w", req.Name, err)
	}
	return &types.InvokeResult{Tool: req.Name, Result: raw}, nil
}
