package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mcpjungle/mathtools/internal/service/history"
	"github.com/mcpjungle/mathtools/internal/service/toolhost"
	"github.com/mcpjungle/mathtools/internal/telemetry"
	"github.com/mcpjungle/mathtools/pkg/testhelpers"
	"github.com/mcpjungle/mathtools/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, telemetryEnabled bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	setup := testhelpers.SetupTestDB(t)
	t.Cleanup(setup.Cleanup)

	providers, err := telemetry.Init(context.Background(), &telemetry.Config{ServiceName: "mathtools-test", Enabled: telemetryEnabled})
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	metrics := telemetry.NewNoopCustomMetrics()
	if providers.IsEnabled() {
		metrics, err = telemetry.NewOtelCustomMetrics(providers.Meter)
		require.NoError(t, err)
	}

	registry := toolhost.NewRegistry()
	require.NoError(t, toolhost.RegisterBuiltinTools(registry))

	mcpServer := toolhost.NewMCPServer("mathtools-test", "0.0.1")
	hist := history.NewHistoryService(setup.DB)
	host, err := toolhost.NewToolHostService(&toolhost.ServiceConfig{
		Registry:  registry,
		McpServer: mcpServer,
		History:   hist,
		Metrics:   metrics,
	})
	require.NoError(t, err)

	s, err := NewServer(&ServerOptions{
		Name:          "mathtools-test",
		McpServer:     mcpServer,
		ToolHost:      host,
		History:       hist,
		OtelProviders: providers,
	})
	require.NoError(t, err)
	return s
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeToolError(t *testing.T, w *httptest.ResponseRecorder) *types.ToolError {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(&ServerOptions{})
	assert.Error(t, err)
}

func TestHealthAndMetadata(t *testing.T) {
	s := newTestServer(t, false)

	w := doRequest(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doRequest(t, s, http.MethodGet, "/metadata", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var m types.ServerMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "mathtools-test", m.Name)
	assert.NotEmpty(t, m.Version)
}

func TestListAndGetTools(t *testing.T) {
	s := newTestServer(t, false)

	w := doRequest(t, s, http.MethodGet, V0ApiPathPrefix+"/tools", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tools []types.ToolDescriptor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tools))
	require.Len(t, tools, 1)
	assert.Equal(t, toolhost.MultiplyDescriptor(), tools[0])

	w = doRequest(t, s, http.MethodGet, V0ApiPathPrefix+"/tool?name=multiply", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, s, http.MethodGet, V0ApiPathPrefix+"/tool?name=divide", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, types.ErrorKindUnknownTool, decodeToolError(t, w).Kind)

	w = doRequest(t, s, http.MethodGet, V0ApiPathPrefix+"/tool", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvokeTool(t *testing.T) {
	s := newTestServer(t, false)

	t.Run("positional arguments", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", &types.InvokeRequest{
			Name: "multiply",
			Args: []any{3, 4},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res types.InvokeResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		var m types.MultiplyResult
		require.NoError(t, res.Decode(&m))
		assert.Equal(t, 12.0, m.Product)
		assert.Equal(t, "3 × 4 = 12", m.Summary)
	})

	t.Run("unknown tool", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", &types.InvokeRequest{
			Name: "divide",
			Args: []any{3, 4},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, types.ErrorKindUnknownTool, decodeToolError(t, w).Kind)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		w := doRequest(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", &types.InvokeRequest{
			Name: "multiply",
			Args: []any{3},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, types.ErrorKindInvalidArguments, decodeToolError(t, w).Kind)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, V0ApiPathPrefix+"/tools/invoke", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListInvocations(t *testing.T) {
	s := newTestServer(t, false)

	doRequest(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", &types.InvokeRequest{Name: "multiply", Args: []any{3, 4}})
	doRequest(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", &types.InvokeRequest{Name: "multiply", Args: []any{0, 5}})
	doRequest(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", &types.InvokeRequest{Name: "divide"})

	w := doRequest(t, s, http.MethodGet, V0ApiPathPrefix+"/invocations?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var invocations []types.Invocation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invocations))
	require.Len(t, invocations, 2)
	assert.Equal(t, "divide", invocations[0].Tool)
	assert.Equal(t, types.InvocationOutcomeError, invocations[0].Outcome)
	assert.Equal(t, types.InvocationOutcomeSuccess, invocations[1].Outcome)
	assert.Equal(t, 0.0, invocations[1].Arguments["a"])

	w = doRequest(t, s, http.MethodGet, V0ApiPathPrefix+"/invocations?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(t, false)
		w := doRequest(t, s, http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		s := newTestServer(t, true)
		doRequest(t, s, http.MethodPost, V0ApiPathPrefix+"/tools/invoke", &types.InvokeRequest{Name: "multiply", Args: []any{3, 4}})

		w := doRequest(t, s, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "mathtools_tool_calls_total")
	})
}

func TestStartFailsWhenPortIsTaken(t *testing.T) {
	s := newTestServer(t, false)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = s.Start(ctx, l.Addr().String())
	assert.Error(t, err)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, false)

	l, err := s.Listen("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
