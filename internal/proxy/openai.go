package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"codesight/internal/apperr"
	"codesight/internal/models"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

// OpenAICompleter talks to any OpenAI-compatible chat-completion API
// (Groq by default).
type OpenAICompleter struct {
	client openai.Client
	log    *zap.Logger
}

type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewOpenAICompleter(opts OpenAIOptions, log *zap.Logger) *OpenAICompleter {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
		option.WithMaxRetries(0),
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenAICompleter{client: openai.NewClient(reqOpts...), log: log}
}

func toOpenAIMessages(turns []models.Turn) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case models.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(t.Content))
		case models.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		default:
			msgs = append(msgs, openai.UserMessage(t.Content))
		}
	}
	return msgs
}

func (c *OpenAICompleter) Complete(ctx context.Context, cfg AgentConfig, turns []models.Turn) (string, error) {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       cfg.Model,
		Messages:    toOpenAIMessages(turns),
		Temperature: openai.Float(cfg.Temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.log.Error("completion API error",
				zap.String("agent", string(cfg.Agent)),
				zap.Int("status", apiErr.StatusCode),
				zap.Error(err))
			return "", apperr.Upstream(fmt.Sprintf("completion API error: %d", apiErr.StatusCode), err)
		}
		c.log.Error("completion request failed", zap.String("agent", string(cfg.Agent)), zap.Error(err))
		return "", apperr.Upstream("completion request failed", err)
	}

	c.log.Debug("completion usage",
		zap.String("model", cfg.Model),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens))

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
