package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// MarketClient talks to the market-data API (quotes, fundamentals,
// earnings, macro snapshot, screener).
type MarketClient struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	HTTP      *http.Client
}

func NewMarketClient(baseURL string, apiKey string) *MarketClient {
	return &MarketClient{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		UserAgent: "fincoach/1.0",
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *MarketClient) getJSON(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	endpoint := c.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market API request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market API returned status %d for %s", resp.StatusCode, path)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode market API response: %v", err)
	}
	return out, nil
}

func (c *MarketClient) postJSON(ctx context.Context, path string, body any) (map[string]any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market API request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market API returned status %d for %s", resp.StatusCode, path)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode market API response: %v", err)
	}
	return out, nil
}

// Quote returns the current price snapshot for a symbol.
func (c *MarketClient) Quote(ctx context.Context, symbol string) (map[string]any, error) {
	return c.getJSON(ctx, "/v1/quote", url.Values{"symbol": {symbol}})
}

// Financials returns fundamentals (revenue, margins, ratios).
func (c *MarketClient) Financials(ctx context.Context, symbol string) (map[string]any, error) {
	return c.getJSON(ctx, "/v1/financials", url.Values{"symbol": {symbol}})
}

// Earnings returns past and upcoming earnings data.
func (c *MarketClient) Earnings(ctx context.Context, symbol string) (map[string]any, error) {
	return c.getJSON(ctx, "/v1/earnings", url.Values{"symbol": {symbol}})
}

// Snapshot returns the broad market overview: indices, rates, vol.
func (c *MarketClient) Snapshot(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, "/v1/market/overview", nil)
}

// Screen runs the asset screener with the given filters.
func (c *MarketClient) Screen(ctx context.Context, filters map[string]any) (map[string]any, error) {
	return c.postJSON(ctx, "/v1/screener", map[string]any{"filters": filters})
}
