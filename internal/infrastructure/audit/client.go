package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"IndicatorsQueue/internal/config"
	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/ports"
)

const maxPages = 10000

// Client talks to the audit API to list monitorings in progress.
type Client struct {
	baseURL string
	token   string
	limit   int
	http    *http.Client
}

var _ ports.AuditService = (*Client)(nil)

type page struct {
	Data     []domain.Monitoring `json:"data"`
	NextPage struct {
		Offset string `json:"offset"`
	} `json:"next_page"`
}

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.AuditConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := cfg.PageLimit
	if limit <= 0 {
		limit = 1000
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		limit:   limit,
		http:    &http.Client{Timeout: timeout},
	}
}

// ActiveMonitorings walks every page of active monitorings.
func (c *Client) ActiveMonitorings(ctx context.Context) ([]domain.Monitoring, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("audit api url is not configured")
	}

	var (
		result []domain.Monitoring
		offset string
	)
	for i := 0; i < maxPages; i++ {
		var p page
		if err := c.get(ctx, c.pageURL(offset), &p); err != nil {
			return nil, fmt.Errorf("monitorings page %d: %w", i, err)
		}
		result = append(result, p.Data...)

		if len(p.Data) == 0 || p.NextPage.Offset == "" || p.NextPage.Offset == offset {
			return result, nil
		}
		offset = p.NextPage.Offset
	}
	return nil, fmt.Errorf("monitorings pagination exceeded %d pages", maxPages)
}

func (c *Client) pageURL(offset string) string {
	q := url.Values{}
	q.Set("status", "active")
	q.Set("limit", strconv.Itoa(c.limit))
	if offset != "" {
		q.Set("offset", offset)
	}
	return c.baseURL + "/monitorings?" + q.Encode()
}

func (c *Client) get(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
