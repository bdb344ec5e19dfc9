package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response from the planning API.
type APIError struct {
	HTTPStatus int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.HTTPStatus, e.Message)
}

// Client is a thin HTTP client for the planning API.
type Client struct {
	host       string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given host. An empty token sends no
// Authorization header.
func NewClient(host, token string) *Client {
	return &Client{
		host:       strings.TrimRight(host, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PlanRequest mirrors the POST /v1/splits request body.
type PlanRequest struct {
	Table string `json:"table"`
	Query *struct {
		SQL       string `json:"sql"`
		HasFilter bool   `json:"hasFilter"`
	} `json:"query,omitempty"`
	Pushdown          string `json:"pushdown"`
	SegmentsPerSplit  *int   `json:"segmentsPerSplit,omitempty"`
	ForbidSegmentScan *bool  `json:"forbidSegmentScan,omitempty"`
}

// PlanResponse mirrors the POST /v1/splits response body.
type PlanResponse struct {
	RequestID string `json:"requestId"`
	Splits    []struct {
		Type     string   `json:"type"`
		Query    string   `json:"query"`
		Host     string   `json:"host"`
		Segments []string `json:"segments"`
	} `json:"splits"`
}

// PlanSplits calls POST /v1/splits.
func (c *Client) PlanSplits(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	var resp PlanResponse
	if err := c.do(ctx, http.MethodPost, "/v1/splits", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RoutingTable calls GET /v1/tables/{table}/routing.
func (c *Client) RoutingTable(ctx context.Context, table string) (map[string]map[string][]string, error) {
	var resp map[string]map[string][]string
	if err := c.do(ctx, http.MethodGet, "/v1/tables/"+table+"/routing", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// TimeBoundary calls GET /v1/tables/{table}/timeBoundary.
func (c *Client) TimeBoundary(ctx context.Context, table string) (map[string]string, error) {
	var resp map[string]string
	if err := c.do(ctx, http.MethodGet, "/v1/tables/"+table+"/timeBoundary", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		msg := resp.Status
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return &APIError{HTTPStatus: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
