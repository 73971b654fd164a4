package identifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/imroc/req/v3"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
)

const (
	DefaultURL     = "https://httpbin.org/uuid"
	DefaultTimeout = 5 * time.Second
)

// Client fetches a random UUID from an httpbin-compatible endpoint
type Client struct {
	url    string
	client *req.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url: url,
		client: req.C().
			SetTimeout(timeout).
			SetUserAgent("insight-pipeline").
			SetCommonHeader("Accept", "application/json"),
	}
}

type uuidBody struct {
	UUID string `json:"uuid"`
}

// Fetch performs one GET, no retry.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	var body uuidBody
	resp, err := c.client.R().
		SetContext(ctx).
		SetSuccessResult(&body).
		Get(c.url)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", c.url, err)
	}
	if !resp.IsSuccessState() {
		return "", fmt.Errorf("get %s: unexpected status %d", c.url, resp.StatusCode)
	}

	id := strings.TrimSpace(body.UUID)
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrMalformedIdentifier, body.UUID)
	}
	return id, nil
}
