package llm

import (
	"context"
	"log/slog"
	"strings"

	"resource-finder/internal/pkg/config"
	"resource-finder/internal/pkg/errs"
	"resource-finder/internal/usecase"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"
)

const maxLoggedBody = 2048

// Client calls an OpenAI-compatible chat completions endpoint once per prompt.
// It never retries; failures are reported to the caller as is.
type Client struct {
	http   *resty.Client
	url    string
	model  string
	apiKey string
	logger *slog.Logger
}

func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) *Client {
	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   rc,
		url:    cfg.URL,
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		logger: logger.With("component", "llm_client"),
	}
}

func (c *Client) Complete(ctx context.Context, prompt usecase.Prompt) (string, error) {
	body := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.url)
	if err != nil {
		return "", errs.New(c.redact("chat completion request: " + err.Error()))
	}

	raw := resp.Body()
	c.logger.DebugContext(ctx, "upstream responded",
		"status", resp.StatusCode(),
		"duration", resp.Time(),
		"body", truncate(string(raw), maxLoggedBody),
	)

	if !resp.IsSuccess() {
		return "", &usecase.UpstreamError{
			StatusCode: resp.StatusCode(),
			Body:       c.redact(string(raw)),
		}
	}

	content, err := ExtractContent(raw)
	if err != nil {
		return "", errs.Wrapf(err, "upstream responded %d", resp.StatusCode())
	}
	return content, nil
}

// redact keeps the API key out of anything surfaced to callers.
func (c *Client) redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.apiKey, "[REDACTED]")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
