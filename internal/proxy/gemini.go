package proxy

import (
	"context"
	"fmt"
	"strings"

	"codesight/internal/apperr"
	"codesight/internal/models"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiCompleter serves the same agents through the Gemini API. Agent
// model ids are used as-is, so a config selecting this provider is expected
// to override them with Gemini model names.
type GeminiCompleter struct {
	client *genai.Client
	log    *zap.Logger
}

func NewGeminiCompleter(ctx context.Context, apiKey, baseURL string, log *zap.Logger) (*GeminiCompleter, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GeminiCompleter{client: client, log: log}, nil
}

// toGeminiContents splits turns into the system instruction and the
// conversation contents.
func toGeminiContents(turns []models.Turn) (*genai.Content, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case models.RoleSystem:
			system = append(system, t.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser), contents
}

func (g *GeminiCompleter) Complete(ctx context.Context, cfg AgentConfig, turns []models.Turn) (string, error) {
	system, contents := toGeminiContents(turns)

	temp := float32(cfg.Temperature)
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	res, err := g.client.Models.GenerateContent(ctx, cfg.Model, contents, &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       &temp,
		MaxOutputTokens:   int32(maxTokens),
	})
	if err != nil {
		g.log.Error("gemini generate content failed", zap.String("agent", string(cfg.Agent)), zap.Error(err))
		return "", apperr.Upstream("completion request failed", err)
	}
	return res.Text(), nil
}
