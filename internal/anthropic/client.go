package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultModel is the default Claude model.
	DefaultModel = "claude-haiku-4-5-20251001"
	// DefaultEndpoint is the default Anthropic API base URL.
	DefaultEndpoint = "https://api.anthropic.com"
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 60 * time.Second

	apiVersion = "2023-06-01"
)

// Client is a minimal Anthropic API client covering the Messages and
// Message Batches endpoints.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// Config holds configuration for the Anthropic client.
type Config struct {
	APIKey   string
	Model    string // Default: claude-haiku-4-5-20251001
	Endpoint string // Default: https://api.anthropic.com
	Timeout  time.Duration
}

// NewClient creates a new Anthropic client.
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		apiKey:   config.APIKey,
		model:    config.Model,
		endpoint: config.Endpoint,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Model returns the model identifier used when a request leaves Model empty.
func (c *Client) Model() string {
	return c.model
}

// Messages sends a single non-streaming completion request.
func (c *Client) Messages(ctx context.Context, req MessagesRequest) (*MessagesResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	var resp MessagesResponse
	if err := c.post(ctx, "/v1/messages", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBatch submits a Message Batches request.
func (c *Client) CreateBatch(ctx context.Context, requests []BatchRequest) (*Batch, error) {
	body := struct {
		Requests []BatchRequest `json:"requests"`
	}{Requests: requests}
	var batch Batch
	if err := c.post(ctx, "/v1/messages/batches", body, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatch retrieves the current state of a batch.
func (c *Client) GetBatch(ctx context.Context, id string) (*Batch, error) {
	var batch Batch
	if err := c.get(ctx, "/v1/messages/batches/"+id, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// BatchResults streams the per-request results of an ended batch.
// The results endpoint returns one JSON object per line.
func (c *Client) BatchResults(ctx context.Context, batch *Batch) ([]BatchResult, error) {
	if batch.ResultsURL == "" {
		return nil, fmt.Errorf("batch %s has no results URL", batch.ID)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, batch.ResultsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()
	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var results []BatchResult
	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var result BatchResult
		if err := json.Unmarshal(line, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal batch result: %w", err)
		}
		results = append(results, result)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading results: %w", err)
	}
	return results, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)
	return c.do(httpReq, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)
	return c.do(httpReq, out)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
