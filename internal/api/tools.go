package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mcpjungle/mathtools/internal/service/history"
	"github.com/mcpjungle/mathtools/pkg/types"
)

func (s *Server) listToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.toolHost.Discover())
	}
}

func (s *Server) getToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			c.JSON(
				http.StatusBadRequest,
				types.ErrorResponse{Error: types.NewToolError(types.ErrorKindInvalidArguments, "missing 'name' query parameter")},
			)
			return
		}

		d, err := s.toolHost.GetTool(name)
		if err != nil {
			writeToolError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func (s *Server) invokeToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.InvokeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(
				http.StatusBadRequest,
				types.ErrorResponse{Error: types.NewToolError(types.ErrorKindInvalidArguments, err.Error())},
			)
			return
		}
		if req.Name == "" {
			c.JSON(
				http.StatusBadRequest,
				types.ErrorResponse{Error: types.NewToolError(types.ErrorKindInvalidArguments, "missing tool name")},
			)
			return
		}

		res, err := s.toolHost.Invoke(c, &req)
		if err != nil {
			writeToolError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) listInvocationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.history == nil {
			c.JSON(http.StatusOK, []*types.Invocation{})
			return
		}

		limit := history.DefaultListLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		records, err := s.history.List(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		invocations := make([]*types.Invocation, len(records))
		for i := range records {
			invocations[i] = history.ToAPI(&records[i])
		}
		c.JSON(http.StatusOK, invocations)
	}
}

// writeToolError maps a tool error to its HTTP status and writes it in the ErrorResponse shape.
func writeToolError(c *gin.Context, err error) {
	var te *types.ToolError
	if !errors.As(err, &te) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch te.Kind {
	case types.ErrorKindUnknownTool:
		status = http.StatusNotFound
	case types.ErrorKindInvalidArguments:
		status = http.StatusBadRequest
	case types.ErrorKindHostUnreachable:
		status = http.StatusBadGateway
	}
	c.JSON(status, types.ErrorResponse{Error: te})
}
