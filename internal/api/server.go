// Package api provides the HTTP surface of the mathtools Tool Host.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mcpjungle/mathtools/internal/service/history"
	"github.com/mcpjungle/mathtools/internal/service/toolhost"
	"github.com/mcpjungle/mathtools/internal/telemetry"
	"github.com/mcpjungle/mathtools/pkg/types"
	"github.com/mcpjungle/mathtools/pkg/version"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	V0PathPrefix    = "/v0"
	V0ApiPathPrefix = "/api" + V0PathPrefix

	// McpPath is where the MCP streamable HTTP endpoint is mounted.
	McpPath = "/mcp"
)

const shutdownTimeout = 5 * time.Second

type ServerOptions struct {
	// Name is reported by the /metadata endpoint
	Name string

	// McpServer is the MCP server instance that the tool host has registered its tools with.
	McpServer *server.MCPServer

	ToolHost *toolhost.ToolHostService
	History  *history.HistoryService

	OtelProviders *telemetry.Providers
	Logger        *zap.Logger
}

// Server represents the Tool Host HTTP server that serves MCP and REST API requests
type Server struct {
	name   string
	router *gin.Engine

	mcpServer *server.MCPServer
	toolHost  *toolhost.ToolHostService
	history   *history.HistoryService

	otelProviders *telemetry.Providers
	logger        *zap.Logger
}

// NewServer initializes a new Gin server for the Tool Host
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts.McpServer == nil || opts.ToolHost == nil {
		return nil, errors.New("MCP server and tool host must not be nil")
	}

	s := &Server{
		name:          opts.Name,
		mcpServer:     opts.McpServer,
		toolHost:      opts.ToolHost,
		history:       opts.History,
		otelProviders: opts.OtelProviders,
		logger:        opts.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	// Set up the router after the server is fully initialized
	r, err := s.setupRouter()
	if err != nil {
		return nil, err
	}
	s.router = r

	return s, nil
}

// Handler returns the root HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the given address. Binding is separated from serving so that callers
// learn about an unavailable port before anything else happens.
func (s *Server) Listen(addr string) (net.Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return l, nil
}

// Serve serves requests on l until ctx is cancelled, then shuts down gracefully (blocking call)
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to run the server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down tool host")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server: %w", err)
	}
	return nil
}

// Start binds addr and serves until ctx is cancelled (blocking call)
func (s *Server) Start(ctx context.Context, addr string) error {
	l, err := s.Listen(addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// setupRouter sets up the Gin router with the MCP server and API endpoints.
func (s *Server) setupRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	// if otel is enabled, setup prometheus metrics endpoint
	if s.otelProviders.IsEnabled() {
		// instrument gin
		r.Use(otelgin.Middleware(s.otelProviders.ServiceName()))

		// expose prometheus metrics endpoint
		r.GET("/metrics", gin.WrapH(s.otelProviders.Handler()))
	}

	r.GET(
		"/health",
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		},
	)

	r.GET(
		"/metadata",
		func(c *gin.Context) {
			m := &types.ServerMetadata{
				Name:    s.name,
				Version: version.GetVersion(),
			}
			c.JSON(http.StatusOK, m)
		},
	)

	// Set up the MCP server on /mcp
	streamableHTTPServer := server.NewStreamableHTTPServer(s.mcpServer)
	r.Any(McpPath, gin.WrapH(streamableHTTPServer))

	// Setup /v0 API endpoints
	apiV0 := r.Group(V0ApiPathPrefix)
	{
		apiV0.GET("/tools", s.listToolsHandler())
		apiV0.GET("/tool", s.getToolHandler())
		apiV0.POST("/tools/invoke", s.invokeToolHandler())

		apiV0.GET("/invocations", s.listInvocationsHandler())
	}

	return r, nil
}

// requestLogger logs every request at debug level.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug(
			"request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
}
