// Package client provides a Go client for the REST API of a mathtools Tool Host.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcpjungle/mathtools/pkg/types"
)

const apiPathPrefix = "/api/v0"

// Client talks to a running Tool Host over its REST API.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a client for the host at baseURL. accessToken is optional and is
// sent as a bearer token when set.
func NewClient(baseURL string, accessToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  httpClient,
	}
}

// BaseURL returns the host URL this client is configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// constructAPIEndpoint returns the full URL of an API endpoint given its suffix path.
func (c *Client) constructAPIEndpoint(suffixPath string) (string, error) {
	return url.JoinPath(c.baseURL, apiPathPrefix, suffixPath)
}

func (c *Client) newRequest(method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	return req, nil
}

// do sends the request. Transport failures mean the host could not be reached.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to send request to %s: %w",
			req.URL, types.NewToolError(types.ErrorKindHostUnreachable, err.Error()),
		)
	}
	return resp, nil
}

// parseErrorResponse turns a non-2xx response into an error.
// Structured tool errors are returned as *types.ToolError so callers can match on the kind.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var toolErr types.ErrorResponse
	if err := json.Unmarshal(body, &toolErr); err == nil && toolErr.Error != nil && toolErr.Error.Kind != "" {
		return toolErr.Error
	}

	var plain struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &plain); err == nil && plain.Error != "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, plain.Error)
	}
	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// Health checks whether the host is up and serving.
func (c *Client) Health() error {
	u, err := url.JoinPath(c.baseURL, "/health")
	if err != nil {
		return fmt.Errorf("invalid base URL %s: %w", c.baseURL, err)
	}

	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", u, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}
	return nil
}

// GetMetadata returns the name and version of the host.
func (c *Client) GetMetadata() (*types.ServerMetadata, error) {
	u, err := url.JoinPath(c.baseURL, "/metadata")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %s: %w", c.baseURL, err)
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

	var m types.ServerMetadata
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &m, nil
}
