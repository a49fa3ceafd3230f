package woo

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

	"farmstand/internal/config"

	"github.com/rs/zerolog"
)

// Client talks to the WooCommerce REST API (wp-json/wc/v3).
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         zerolog.Logger
}

// NewClient creates a new WooCommerce REST client.
func NewClient(cfg config.WooConfig, logger zerolog.Logger) *Client {
	// Normalise base URL - strip trailing slashes
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		baseURL:        baseURL,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger.With().Str("component", "woo-client").Logger(),
	}
}

// apiError is the WooCommerce error envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("consumer_key", c.consumerKey)
	query.Set("consumer_secret", c.consumerSecret)
	return fmt.Sprintf("%s/wp-json/wc/v3/%s?%s", c.baseURL, strings.TrimPrefix(path, "/"), query.Encode())
}

// get performs a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, out)
}

// post performs a POST request with a JSON body and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("woocommerce request failed")
		return fmt.Errorf("woocommerce request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read woocommerce response: %w", err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("woocommerce request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if jsonErr := json.Unmarshal(data, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return fmt.Errorf("woocommerce API error (status %d, code %s): %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("woocommerce API error: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode woocommerce response: %w", err)
	}

	return nil
}
