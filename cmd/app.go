package cmd

import (
	"context"

	"codesight/internal/config"
	"codesight/internal/proxy"

	"go.uber.org/zap"
)

// newCompleter returns nil when no API key is configured. The handler then
// answers every valid request with a configuration error.
func newCompleter(ctx context.Context, cfg *config.Config, log *zap.Logger) (proxy.Completer, error) {
	if cfg.Proxy.APIKey == "" {
		log.Warn("no API key configured; chat requests will fail")
		return nil, nil
	}

	switch cfg.Proxy.Provider {
	case config.ProviderGemini:
		baseURL := cfg.Proxy.BaseURL
		if baseURL == proxy.DefaultBaseURL {
			baseURL = ""
		}
		g, err := proxy.NewGeminiCompleter(ctx, cfg.Proxy.APIKey, baseURL, log)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return proxy.NewOpenAICompleter(proxy.OpenAIOptions{
			APIKey:  cfg.Proxy.APIKey,
			BaseURL: cfg.Proxy.BaseURL,
			Timeout: cfg.ProxyTimeout(),
		}, log), nil
	}
}

func newHandler(ctx context.Context, cfg *config.Config, log *zap.Logger) (*proxy.Handler, error) {
	completer, err := newCompleter(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return proxy.NewHandler(cfg.AgentConfigs(), completer, log), nil
}
