// Package cluster implements the control-plane client that serves routing
// snapshots and time boundaries from the storage cluster's debug endpoints.
package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"pinot-bridge/internal/domain"
)

var _ domain.ClusterMetadata = (*Client)(nil)

// Client fetches cluster metadata over HTTP. Outbound calls share a
// token-bucket rate limiter, and identical concurrent fetches are collapsed
// into one request. No retries happen here — failures surface immediately
// and the caller owns retry policy.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	limiter    *rate.Limiter
	group      singleflight.Group
	logger     *slog.Logger
}

// Options configures a Client.
type Options struct {
	// Timeout bounds each metadata request (default: 10s). The caller's
	// context deadline still applies when shorter.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls (default: 50).
	RequestsPerSecond float64
	// Burst is the limiter's burst capacity (default: 100).
	Burst int
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// NewClient creates a metadata client for the given controller base URL. An
// empty authToken disables the service-token header.
func NewClient(baseURL, authToken string, logger *slog.Logger, opts ...Options) *Client {
	options := Options{Timeout: 10 * time.Second, RequestsPerSecond: 50, Burst: 100}
	if len(opts) > 0 {
		if opts[0].Timeout > 0 {
			options.Timeout = opts[0].Timeout
		}
		if opts[0].RequestsPerSecond > 0 {
			options.RequestsPerSecond = opts[0].RequestsPerSecond
		}
		if opts[0].Burst > 0 {
			options.Burst = opts[0].Burst
		}
		options.HTTPClient = opts[0].HTTPClient
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(options.RequestsPerSecond), options.Burst),
		logger:     logger,
	}
}

// RoutingTable fetches the current segment placement for the logical table.
// A 404 or empty body means the table has no routable data and yields an
// empty (non-nil) table.
func (c *Client) RoutingTable(ctx context.Context, table string) (domain.RoutingTable, error) {
	v, err, _ := c.group.Do("routing:"+table, func() (interface{}, error) {
		body, found, err := c.get(ctx, "/debug/routingTable/"+table)
		if err != nil {
			return nil, err
		}
		routing := domain.RoutingTable{}
		if !found || len(body) == 0 {
			return routing, nil
		}
		if err := json.Unmarshal(body, &routing); err != nil {
			return nil, domain.ErrUnavailable(err, "decode routing table for %q", table)
		}
		return routing, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.RoutingTable), nil
}

// timeBoundaryResponse is the wire shape of the time-boundary endpoint.
type timeBoundaryResponse struct {
	TimeColumnName  string `json:"timeColumnName"`
	TimeColumnValue string `json:"timeColumnValue"`
}

// TimeBoundary fetches the hot/cold boundary for the logical table. Tables
// with no overlap concern report a zero boundary (both predicates empty).
func (c *Client) TimeBoundary(ctx context.Context, table string) (domain.TimeBoundary, error) {
	v, err, _ := c.group.Do("boundary:"+table, func() (interface{}, error) {
		body, found, err := c.get(ctx, "/debug/timeBoundary/"+table)
		if err != nil {
			return nil, err
		}
		if !found || len(body) == 0 {
			return domain.TimeBoundary{}, nil
		}
		var resp timeBoundaryResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, domain.ErrUnavailable(err, "decode time boundary for %q", table)
		}
		if resp.TimeColumnName == "" || resp.TimeColumnValue == "" {
			return domain.TimeBoundary{}, nil
		}
		return domain.TimeBoundary{
			Online:  fmt.Sprintf("%s >= %s", resp.TimeColumnName, resp.TimeColumnValue),
			Offline: fmt.Sprintf("%s < %s", resp.TimeColumnName, resp.TimeColumnValue),
		}, nil
	})
	if err != nil {
		return domain.TimeBoundary{}, err
	}
	return v.(domain.TimeBoundary), nil
}

// get performs a rate-limited GET. found is false on 404, which callers
// treat as an empty result rather than a fault.
func (c *Client) get(ctx context.Context, path string) (body []byte, found bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, domain.ErrUnavailable(err, "rate limit wait for %s", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, false, domain.ErrUnavailable(err, "create request for %s", path)
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("X-Service-Token", c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, domain.ErrUnavailable(err, "fetch %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, domain.ErrUnavailable(nil, "fetch %s: status %d", path, resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, domain.ErrUnavailable(err, "read %s", path)
	}
	return body, true, nil
}
