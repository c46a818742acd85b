package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradedesk/deskd/internal/domain"
	"github.com/tradedesk/deskd/pkg/ports"
)

// maxResponseBytes caps how much of a gateway response is read
const maxResponseBytes = 8 << 20

// Client implements ports.Gateway over HTTP/JSON
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// Config holds gateway client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a new gateway client
func NewClient(cfg *Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway base URL must be absolute: %s", cfg.BaseURL)
	}

	return &Client{
		base:   base,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: cfg.Logger,
	}, nil
}

// startResponse is the backend's reply to an execution start
type startResponse struct {
	ExecutionID string `json:"execution_id"`
}

// StartExecution establishes one logical execution against the backend
func (c *Client) StartExecution(ctx context.Context, req ports.StartRequest) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/executions", req)
	if err != nil {
		return "", err
	}

	var resp startResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &domain.GatewayError{Op: "start", Endpoint: "/api/executions", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if resp.ExecutionID == "" {
		return "", &domain.GatewayError{Op: "start", Endpoint: "/api/executions", Err: fmt.Errorf("backend returned no execution id")}
	}

	c.logger.Debug("execution started on backend",
		zap.String("execution_id", resp.ExecutionID))

	return resp.ExecutionID, nil
}

// FetchTab retrieves one tab's payload within an execution
func (c *Client) FetchTab(ctx context.Context, executionID, endpoint string) (json.RawMessage, error) {
	path := endpoint + "?execution_id=" + url.QueryEscape(executionID)
	return c.do(ctx, http.MethodGet, path, nil)
}

// Abort notifies the backend that an execution was abandoned
func (c *Client) Abort(ctx context.Context, executionID string) error {
	path := "/api/executions/" + url.PathEscape(executionID) + "/abort"
	_, err := c.do(ctx, http.MethodPost, path, nil)
	return err
}

// PostAction submits a validated action parameter set to the backend
func (c *Client) PostAction(ctx context.Context, endpoint string, params map[string]interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, endpoint, params)
}

// Ping checks backend reachability, used by the health prober
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// do performs one gateway request. Every fault, transport or HTTP-level,
// is returned as *domain.GatewayError.
func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}) (json.RawMessage, error) {
	op := strings.ToLower(method)

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &domain.GatewayError{Op: op, Endpoint: endpoint, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	target, err := c.base.Parse(endpoint)
	if err != nil {
		return nil, &domain.GatewayError{Op: op, Endpoint: endpoint, Err: fmt.Errorf("invalid endpoint: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
	if err != nil {
		return nil, &domain.GatewayError{Op: op, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.GatewayError{Op: op, Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.GatewayError{Op: op, Endpoint: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.GatewayError{Op: op, Endpoint: endpoint, Status: resp.StatusCode}
	}

	return body, nil
}
