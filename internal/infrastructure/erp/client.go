package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

// maxResponseSize is the maximum allowed response size from the ERP (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ErrUpstream indicates the ERP responded with a server error
var ErrUpstream = shared.NewDomainError("ERP_UPSTREAM", "ERP service returned an error")

// Config holds the ERP connection settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Validate validates the ERP configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("erp: base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("erp: invalid base URL: %w", err)
	}
	return nil
}

// allowedPrefixes restricts which upstream resources the pass-through exposes
var allowedPrefixes = []string{
	"products",
	"documents",
	"warehouses",
	"partners",
	"search",
	"reports",
}

// Client is a pass-through HTTP client for the third-party ERP. The
// storefront does not model the ERP's resources: responses are forwarded
// as opaque JSON.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new ERP client
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// Result is a forwarded ERP response
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

// Forward relays a request to the ERP and returns the raw JSON response.
// Paths outside the allowed resource set are rejected with ErrNotFound.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, body io.Reader) (*Result, error) {
	path = strings.TrimPrefix(path, "/")
	if !pathAllowed(path) {
		return nil, shared.ErrNotFound
	}

	target := strings.TrimSuffix(c.config.BaseURL, "/") + "/" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("erp: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ERP request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("erp: failed to read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		c.logger.Warn("ERP returned server error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, ErrUpstream
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       raw,
	}, nil
}

func pathAllowed(path string) bool {
	for _, prefix := range allowedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
