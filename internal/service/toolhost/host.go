package toolhost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mcpjungle/mathtools/internal/service/history"
	"github.com/mcpjungle/mathtools/internal/telemetry"
	"github.com/mcpjungle/mathtools/pkg/types"
	"go.uber.org/zap"
)

// ServiceConfig holds the configuration parameters for initializing the ToolHostService.
type ServiceConfig struct {
	Registry  *Registry
	McpServer *server.MCPServer

	// History is optional. If nil, invocations are not recorded.
	History *history.HistoryService

	Metrics telemetry.CustomMetrics
	Logger  *zap.Logger
}

// ToolHostService is the Tool Host. It serves the registry's catalog over MCP and executes invocations.
// Once created, the catalog is frozen.
type ToolHostService struct {
	registry  *Registry
	mcpServer *server.MCPServer
	history   *history.HistoryService
	metrics   telemetry.CustomMetrics
	logger    *zap.Logger
}

// NewMCPServer creates the MCP server a ToolHostService mounts its tools on.
// It carries the hooks the service uses to account for calls rejected by the MCP layer itself.
func NewMCPServer(name, version string) *server.MCPServer {
	return server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(&server.Hooks{}),
	)
}

// NewToolHostService freezes the registry and adds every registered tool to the MCP server.
// If the MCP server was created with hooks, calls naming an unregistered tool are recorded too.
func NewToolHostService(c *ServiceConfig) (*ToolHostService, error) {
	if c.Registry == nil {
		return nil, errors.New("tool registry must not be nil")
	}
	if c.McpServer == nil {
		return nil, errors.New("MCP server must not be nil")
	}

	s := &ToolHostService{
		registry:  c.Registry,
		mcpServer: c.McpServer,
		history:   c.History,
		metrics:   c.Metrics,
		logger:    c.Logger,
	}
	if s.metrics == nil {
		s.metrics = telemetry.NewNoopCustomMetrics()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	s.registry.Freeze()
	for _, d := range s.registry.Discover() {
		s.mcpServer.AddTool(ConvertDescriptorToMcpObject(d), s.MCPToolCallHandler)
		s.logger.Debug("tool registered", zap.String("tool", d.Name), zap.Int("params", len(d.Params)))
	}
	if hooks := s.mcpServer.GetHooks(); hooks != nil {
		hooks.AddOnError(s.onMCPError)
	}
	return s, nil
}

// Discover returns the host's full tool catalog.
func (s *ToolHostService) Discover() []types.ToolDescriptor {
	return s.registry.Discover()
}

// GetTool returns the descriptor of a single tool, or an UnknownTool error.
func (s *ToolHostService) GetTool(name string) (*types.ToolDescriptor, error) {
	d, ok := s.registry.Lookup(name)
	if !ok {
		return nil, types.NewToolError(types.ErrorKindUnknownTool, fmt.Sprintf("tool '%s' is not registered", name))
	}
	return &d, nil
}

// Invoke executes a tool and records the call in metrics and history.
func (s *ToolHostService) Invoke(ctx context.Context, req *types.InvokeRequest) (*types.InvokeResult, error) {
	started := time.Now()
	res, err := s.registry.Invoke(ctx, req)
	elapsed := time.Since(started)

	outcome := telemetry.ToolCallOutcomeSuccess
	if err != nil {
		outcome = telemetry.ToolCallOutcomeError
	}
	s.metrics.RecordToolCall(ctx, req.Name, outcome, elapsed)

	if err != nil {
		s.logger.Warn(
			"tool invocation failed",
			zap.String("tool", req.Name),
			zap.String("kind", string(types.KindOf(err))),
			zap.Error(err),
		)
	} else {
		s.logger.Info("tool invoked", zap.String("tool", req.Name), zap.Duration("elapsed", elapsed))
	}

	if s.history != nil {
		entry := history.Entry{
			Tool:      req.Name,
			Arguments: s.recordedArguments(req),
			Err:       err,
			Elapsed:   elapsed,
		}
		if _, herr := s.history.Record(entry); herr != nil {
			// the call itself has already completed, so only log the failure
			s.logger.Error("failed to record invocation", zap.String("tool", req.Name), zap.Error(herr))
		}
	}

	return res, err
}

// recordedArguments returns the bound arguments if they can be bound, otherwise the raw keyword arguments.
func (s *ToolHostService) recordedArguments(req *types.InvokeRequest) map[string]any {
	if d, ok := s.registry.Lookup(req.Name); ok {
		if bound, err := d.BindArguments(req.Args, req.Kwargs); err == nil {
			return bound
		}
	}
	return req.Kwargs
}

// MCPToolCallHandler serves tools/call requests arriving over MCP.
// Structured tool errors are returned as an isError result rather than a protocol error,
// so the client can recover the error kind.
func (s *ToolHostService) MCPToolCallHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := &types.InvokeRequest{
		Name:   request.Params.Name,
		Kwargs: request.GetArguments(),
	}

	res, err := s.Invoke(ctx, req)
	if err != nil {
		var te *types.ToolError
		if errors.As(err, &te) {
			return toolErrorResult(te), nil
		}
		return nil, err
	}

	var structured any
	if err := json.Unmarshal(res.Result, &structured); err != nil {
		return nil, fmt.Errorf("failed to decode result of tool %s: %w", req.Name, err)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{mcp.NewTextContent(string(res.Result))},
		StructuredContent: structured,
	}, nil
}

// onMCPError handles tools/call requests that mcp-go rejects before they reach MCPToolCallHandler.
// Such a call names a tool mcp-go does not know, and the registry rejects it with UnknownTool,
// which records it in metrics and history like any other failed call.
func (s *ToolHostService) onMCPError(ctx context.Context, _ any, method mcp.MCPMethod, message any, err error) {
	if method != mcp.MethodToolsCall || !errors.Is(err, server.ErrToolNotFound) {
		return
	}
	req, ok := message.(*mcp.CallToolRequest)
	if !ok {
		return
	}
	_, _ = s.Invoke(ctx, &types.InvokeRequest{Name: req.Params.Name, Kwargs: req.GetArguments()})
}

func toolErrorResult(te *types.ToolError) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError:           true,
		Content:           []mcp.Content{mcp.NewTextContent(te.Error())},
		StructuredContent: &types.ErrorResponse{Error: te},
	}
}
