package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/ai/prompt"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 10 * time.Second
)

// Client is the SDK-backed analyzer
type Client struct {
	*openai.Client
	Model string
}

// NewClient builds a client with its own HTTP timeout. baseURL may be empty.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (c *Client) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.BuildAnalysisPrompt(text)},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return domain.Analysis{}, fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
		}
		return domain.Analysis{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Analysis{}, errors.New("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	return domain.Analysis{Text: content, Sentiment: domain.ClassifySentiment(content)}, nil
}

// ErrQuotaExceeded indicates the provider answered with HTTP 429.
var ErrQuotaExceeded = errors.New("ai quota exceeded")
