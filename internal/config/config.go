package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codesight/internal/models"
	"codesight/internal/proxy"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var ValidProviders = []string{ProviderOpenAI, ProviderGemini}

type Config struct {
	Proxy   ProxyConfig   `yaml:"proxy"`
	Client  ClientConfig  `yaml:"client"`
	Logging LoggingConfig `yaml:"logging"`
}

// ProxyConfig configures `codesight serve` and the in-process proxy.
type ProxyConfig struct {
	Addr      string                  `yaml:"addr"`
	Provider  string                  `yaml:"provider"`
	BaseURL   string                  `yaml:"base_url"`
	APIKey    string                  `yaml:"api_key"`
	MaxTokens int64                   `yaml:"max_tokens"`
	Timeout   string                  `yaml:"timeout"`
	Agents    map[string]AgentSetting `yaml:"agents"`
}

type AgentSetting struct {
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
}

type ClientConfig struct {
	// ProxyURL selects a remote proxy. When empty the client calls the
	// completion API in-process with Proxy settings.
	ProxyURL string `yaml:"proxy_url"`
	DBPath   string `yaml:"db_path"`
	Timeout  string `yaml:"timeout"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func DefaultConfig() *Config {
	return &Config{
		Proxy: ProxyConfig{
			Addr:      ":8787",
			Provider:  ProviderOpenAI,
			BaseURL:   proxy.DefaultBaseURL,
			MaxTokens: proxy.DefaultMaxTokens,
			Timeout:   "60s",
		},
		Client: ClientConfig{
			Timeout: "90s",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// DefaultPath returns <user config dir>/codesight/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "codesight.yaml"
	}
	return filepath.Join(dir, "codesight", "config.yaml")
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.Proxy.APIKey = key
	}
	// wins over GROQ_API_KEY
	if key := os.Getenv("CODESIGHT_API_KEY"); key != "" {
		c.Proxy.APIKey = key
	}
	if p := os.Getenv("CODESIGHT_PROVIDER"); p != "" {
		c.Proxy.Provider = strings.ToLower(p)
	}
	if u := os.Getenv("CODESIGHT_BASE_URL"); u != "" {
		c.Proxy.BaseURL = u
	}
	if addr := os.Getenv("CODESIGHT_ADDR"); addr != "" {
		c.Proxy.Addr = addr
	}
	if u := os.Getenv("CODESIGHT_PROXY_URL"); u != "" {
		c.Client.ProxyURL = u
	}
	if path := os.Getenv("CODESIGHT_DB"); path != "" {
		c.Client.DBPath = path
	}
	if lvl := os.Getenv("CODESIGHT_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.Proxy.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid provider: %s (valid: %v)", c.Proxy.Provider, ValidProviders)
	}
	if c.Proxy.MaxTokens <= 0 {
		return fmt.Errorf("proxy.max_tokens must be positive, got %d", c.Proxy.MaxTokens)
	}
	for name := range c.Proxy.Agents {
		if _, ok := models.ParseAgent(name); !ok {
			return fmt.Errorf("proxy.agents: unknown agent %q", name)
		}
	}
	for _, s := range []struct{ field, v string }{
		{"proxy.timeout", c.Proxy.Timeout},
		{"client.timeout", c.Client.Timeout},
	} {
		if s.v == "" {
			continue
		}
		d, err := time.ParseDuration(s.v)
		if err != nil {
			return fmt.Errorf("%s: %w", s.field, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", s.field, s.v)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	return nil
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// ProxyTimeout is 0 (no limit) when unset or invalid.
func (c *Config) ProxyTimeout() time.Duration {
	return parseDuration(c.Proxy.Timeout)
}

func (c *Config) ClientTimeout() time.Duration {
	return parseDuration(c.Client.Timeout)
}

// AgentConfigs returns the built-in agents with model, temperature and
// max_tokens overrides applied.
func (c *Config) AgentConfigs() proxy.Agents {
	agents := proxy.DefaultAgents()
	for name, setting := range c.Proxy.Agents {
		agent, ok := models.ParseAgent(name)
		if !ok {
			continue
		}
		cfg := agents[agent]
		if setting.Model != "" {
			cfg.Model = setting.Model
		}
		if setting.Temperature != nil {
			cfg.Temperature = *setting.Temperature
		}
		agents[agent] = cfg
	}
	if c.Proxy.MaxTokens > 0 {
		for agent, cfg := range agents {
			cfg.MaxTokens = c.Proxy.MaxTokens
			agents[agent] = cfg
		}
	}
	return agents
}
