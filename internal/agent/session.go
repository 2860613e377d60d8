package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"syscall"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mcpjungle/mathtools/internal/api"
	"github.com/mcpjungle/mathtools/internal/service/toolhost"
	"github.com/mcpjungle/mathtools/pkg/types"
	"github.com/mcpjungle/mathtools/pkg/version"
	"go.uber.org/zap"
)

// State is the lifecycle stage of a Session.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateDiscovered
	StateInvoking
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateDiscovered:
		return "discovered"
	case StateInvoking:
		return "invoking"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	ErrNotConnected         = errors.New("session is not connected to a tool host")
	ErrNotDiscovered        = errors.New("tools have not been discovered yet")
	ErrSessionClosed        = errors.New("session is closed")
	ErrInvocationInProgress = errors.New("another invocation is in progress")
)

// SessionConfig configures a new Session.
type SessionConfig struct {
	// Host is the host to talk to. If the host was spawned, the session owns it and stops it on Close.
	Host *LaunchedHost

	Logger *zap.Logger
}

// Session is one client's conversation with a Tool Host over MCP.
// Discover must succeed before Invoke is allowed.
type Session struct {
	mu sync.Mutex

	host      *LaunchedHost
	mcpClient *mcpclient.Client
	state     State

	serverInfo mcp.Implementation
	tools      []types.ToolDescriptor
	catalog    map[string]types.ToolDescriptor

	logger *zap.Logger
}

func NewSession(c SessionConfig) (*Session, error) {
	if c.Host == nil {
		return nil, errors.New("tool host must not be nil")
	}
	s := &Session{
		host:   c.Host,
		state:  StateDisconnected,
		logger: c.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ServerInfo returns the name and version the host reported during initialization.
func (s *Session) ServerInfo() mcp.Implementation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverInfo
}

// Connect opens the MCP session with the host. Connecting an already connected session is a no-op.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return ErrSessionClosed
	case StateDisconnected:
	default:
		return nil
	}

	url := strings.TrimRight(s.host.BaseURL, "/") + api.McpPath
	c, err := mcpclient.NewStreamableHttpClient(url)
	if err != nil {
		return fmt.Errorf("failed to create streamable HTTP client for %s: %w", url, err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "mathtools client",
		Version: version.GetVersion(),
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	res, err := c.Initialize(ctx, initRequest)
	if err != nil {
		_ = c.Close()
		return types.NewToolError(
			types.ErrorKindHostUnreachable,
			fmt.Sprintf("failed to initialize MCP session with %s: %v", url, err),
		)
	}

	s.mcpClient = c
	s.serverInfo = res.ServerInfo
	s.state = StateConnected
	s.logger.Info(
		"connected to tool host",
		zap.String("url", url),
		zap.String("server", res.ServerInfo.Name),
		zap.String("protocol", res.ProtocolVersion),
	)
	return nil
}

// Discover fetches the host's catalog. The catalog is fixed for the host's lifetime,
// so it is fetched once and served from the cache afterwards.
func (s *Session) Discover(ctx context.Context) ([]types.ToolDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return nil, ErrSessionClosed
	case StateDisconnected:
		return nil, ErrNotConnected
	case StateDiscovered, StateInvoking:
		return cloneCatalog(s.tools), nil
	}

	resp, err := s.mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("failed to list tools: %w", err))
	}

	tools := make([]types.ToolDescriptor, 0, len(resp.Tools))
	catalog := make(map[string]types.ToolDescriptor, len(resp.Tools))
	for _, t := range resp.Tools {
		d := toolhost.ConvertMcpObjectToDescriptor(t)
		tools = append(tools, d)
		catalog[d.Name] = d
	}

	s.tools = tools
	s.catalog = catalog
	s.state = StateDiscovered
	s.logger.Debug("discovered tools", zap.Int("count", len(tools)))
	return cloneCatalog(tools), nil
}

// Invoke calls a tool with positional arguments bound in the tool's parameter order.
func (s *Session) Invoke(ctx context.Context, name string, args ...any) (*types.InvokeResult, error) {
	return s.Call(ctx, &types.InvokeRequest{Name: name, Args: args})
}

// Call invokes a tool. Unknown names and arguments that cannot be bound are rejected
// locally without contacting the host.
func (s *Session) Call(ctx context.Context, req *types.InvokeRequest) (*types.InvokeResult, error) {
	d, c, err := s.beginInvocation(req.Name)
	if err != nil {
		return nil, err
	}
	defer s.endInvocation()

	args, err := d.BindArguments(req.Args, req.Kwargs)
	if err != nil {
		return nil, err
	}

	callToolReq := mcp.CallToolRequest{}
	callToolReq.Params.Name = req.Name
	callToolReq.Params.Arguments = args

	resp, err := c.CallTool(ctx, callToolReq)
	if err != nil {
		return nil, toolCallError(req.Name, err)
	}
	if resp.IsError {
		return nil, toolErrorFromResult(req.Name, resp)
	}
	return resultFromCallTool(req.Name, resp)
}

func (s *Session) beginInvocation(name string) (types.ToolDescriptor, *mcpclient.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return types.ToolDescriptor{}, nil, ErrSessionClosed
	case StateDisconnected:
		return types.ToolDescriptor{}, nil, ErrNotConnected
	case StateConnected:
		return types.ToolDescriptor{}, nil, ErrNotDiscovered
	case StateInvoking:
		return types.ToolDescriptor{}, nil, ErrInvocationInProgress
	}

	d, ok := s.catalog[name]
	if !ok {
		return types.ToolDescriptor{}, nil, types.NewToolError(
			types.ErrorKindUnknownTool,
			fmt.Sprintf("tool '%s' is not in the host's catalog", name),
		)
	}
	s.state = StateInvoking
	return d, s.mcpClient, nil
}

func (s *Session) endInvocation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateInvoking {
		s.state = StateDiscovered
	}
}

// Close ends the MCP session and stops the host if this client spawned it.
// It is safe to call Close more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed

	var errs []error
	if s.mcpClient != nil {
		if err := s.mcpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close MCP session: %w", err))
		}
		s.mcpClient = nil
	}
	if err := s.host.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func cloneCatalog(tools []types.ToolDescriptor) []types.ToolDescriptor {
	out := make([]types.ToolDescriptor, len(tools))
	for i, t := range tools {
		out[i] = t.Clone()
	}
	return out
}

// classifyTransportError marks connection failures as HostUnreachable.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w (%v)", types.NewToolError(types.ErrorKindHostUnreachable, "tool host is not reachable"), err)
	}
	return err
}

// toolCallError classifies an error returned by tools/call. The MCP layer rejects a tool
// it does not know with an invalid params error before any handler runs; that happens
// when the cached catalog is stale and is reported as UnknownTool.
func toolCallError(name string, err error) error {
	if errors.Is(err, mcp.ErrInvalidParams) && strings.Contains(err.Error(), server.ErrToolNotFound.Error()) {
		return types.NewToolError(types.ErrorKindUnknownTool, fmt.Sprintf("tool '%s' is not registered on the host", name))
	}
	return classifyTransportError(fmt.Errorf("failed to call tool %s: %w", name, err))
}

// toolErrorFromResult recovers the structured error the host attaches to a failed call.
func toolErrorFromResult(name string, resp *mcp.CallToolResult) error {
	if resp.StructuredContent != nil {
		raw, err := json.Marshal(resp.StructuredContent)
		if err == nil {
			var body types.ErrorResponse
			if err := json.Unmarshal(raw, &body); err == nil && body.Error != nil && body.Error.Kind != "" {
				return body.Error
			}
		}
	}
	return fmt.Errorf("tool %s failed: %s", name, contentText(resp))
}

func resultFromCallTool(name string, resp *mcp.CallToolResult) (*types.InvokeResult, error) {
	if resp.StructuredContent != nil {
		raw, err := json.Marshal(resp.StructuredContent)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result of tool %s: %w", name, err)
		}
		return &types.InvokeResult{Tool: name, Result: raw}, nil
	}

	text := contentText(resp)
	if json.Valid([]byte(text)) {
		return &types.InvokeResult{Tool: name, Result: json.RawMessage(text)}, nil
	}
	raw, err := json.Marshal(text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result of tool %s: %w", name, err)
	}
	return &types.InvokeResult{Tool: name, Result: raw}, nil
}

func contentText(resp *mcp.CallToolResult) string {
	var parts []string
	for _, c := range resp.Content {
		if t, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}
