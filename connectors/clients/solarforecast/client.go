package solarforecast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/bessim/auth"
	"github.com/kilianp07/bessim/connectors"
	"github.com/kilianp07/bessim/core/solar"
)

// Client downloads a CSV solar forecast. The provider answers
// GET <BaseURL>?start_date=..&end_date=.. with a CSV body.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	startDate time.Time
	endDate   time.Time
	column    string
}

// New returns a client for baseURL with a 30 second timeout.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch retrieves the forecast. authClient may be nil for public providers.
func (c *Client) Fetch(ctx context.Context, authClient *auth.ClientCred, opts ...connectors.Option) ([]float64, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid forecast url: %w", err)
	}
	q := u.Query()
	if !c.startDate.IsZero() {
		q.Set("start_date", c.startDate.Format(time.RFC3339))
	}
	if !c.endDate.IsZero() {
		q.Set("end_date", c.endDate.Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if authClient != nil {
		if err := authClient.SetAuthHeader(req); err != nil {
			return nil, fmt.Errorf("failed to set auth header: %w", err)
		}
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	series, err := solar.ReadCSV(resp.Body, c.column)
	if err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %w", err)
	}
	return series, nil
}
