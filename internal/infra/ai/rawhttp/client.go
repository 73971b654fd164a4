package rawhttp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imroc/req/v3"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/ai/prompt"
)

const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultModel    = "gpt-4o-mini"
	DefaultTimeout  = 10 * time.Second
)

// Client talks to an OpenAI-compatible chat completions endpoint with a
// bearer token, without the SDK.
type Client struct {
	endpoint string
	model    string
	client   *req.Client
}

func NewClient(endpoint, token, model string, timeout time.Duration) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		model:    model,
		client: req.C().
			SetTimeout(timeout).
			SetUserAgent("insight-pipeline").
			SetCommonBearerAuthToken(token).
			SetCommonContentType("application/json"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *Client) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	var (
		out    chatResponse
		errOut errorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:    c.model,
			Messages: []chatMessage{{Role: "user", Content: prompt.BuildAnalysisPrompt(text)}},
		}).
		SetSuccessResult(&out).
		SetErrorResult(&errOut).
		Post(c.endpoint)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	if !resp.IsSuccessState() {
		msg := strings.TrimSpace(resp.String())
		if errOut.Error != nil && errOut.Error.Message != "" {
			msg = errOut.Error.Message
		}
		return domain.Analysis{}, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	if len(out.Choices) == 0 {
		return domain.Analysis{}, errors.New("chat completion returned no choices")
	}

	content := out.Choices[0].Message.Content
	return domain.Analysis{Text: content, Sentiment: domain.ClassifySentiment(content)}, nil
}
