package agent

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mcpjungle/mathtools/internal/api"
	"github.com/mcpjungle/mathtools/internal/service/toolhost"
	"github.com/stretchr/testify/require"
)

// newTestAPIServer builds a complete tool host without a history store.
func newTestAPIServer(tb testing.TB) *api.Server {
	tb.Helper()
	gin.SetMode(gin.TestMode)

	registry := toolhost.NewRegistry()
	require.NoError(tb, toolhost.RegisterBuiltinTools(registry))

	mcpServer := toolhost.NewMCPServer("mathtools-test", "0.0.1")
	host, err := toolhost.NewToolHostService(&toolhost.ServiceConfig{
		Registry:  registry,
		McpServer: mcpServer,
	})
	require.NoError(tb, err)

	s, err := api.NewServer(&api.ServerOptions{
		Name:      "mathtools-test",
		McpServer: mcpServer,
		ToolHost:  host,
	})
	require.NoError(tb, err)
	return s
}

// startTestHost serves a tool host on a local port and counts the MCP requests it receives.
func startTestHost(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	s := newTestAPIServer(t)

	var mcpRequests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == api.McpPath && r.Method == http.MethodPost {
			mcpRequests.Add(1)
		}
		s.Handler().ServeHTTP(w, r)
	})

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, &mcpRequests
}
