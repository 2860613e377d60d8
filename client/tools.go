package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mcpjungle/mathtools/pkg/types"
)

// ListTools fetches the host's tool catalog
func (c *Client) ListTools() ([]types.ToolDescriptor, error) {
	u, _ := c.constructAPIEndpoint("/tools")

	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var tools []types.ToolDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&tools); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return tools, nil
}

// GetTool fetches the descriptor of a single tool
func (c *Client) GetTool(name string) (*types.ToolDescriptor, error) {
	u, _ := c.constructAPIEndpoint("/tool")

	req, err := c.newRequest(http.MethodGet, u+"?name="+url.QueryEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var tool types.ToolDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&tool); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &tool, nil
}

// InvokeTool asks the host to execute a tool
func (c *Client) InvokeTool(invokeReq *types.InvokeRequest) (*types.InvokeResult, error) {
	u, _ := c.constructAPIEndpoint("/tools/invoke")

	body, err := json.Marshal(invokeReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoke request: %w", err)
	}

	req, err := c.newRequest(http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var result types.InvokeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// ListInvocations fetches the most recent invocations recorded by the host, newest first.
// A limit of zero leaves the choice to the host.
func (c *Client) ListInvocations(limit int) ([]types.Invocation, error) {
	u, _ := c.constructAPIEndpoint("/invocations")
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}

	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var invocations []types.Invocation
	if err := json.NewDecoder(resp.Body).Decode(&invocations); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return invocations, nil
}
