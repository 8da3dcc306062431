package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/leofalp/searchgpt/providers/tool/webpage"
	"github.com/leofalp/searchgpt/providers/tool/websearch"
	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config is the whole process configuration.
type Config struct {
	Provider  string          `mapstructure:"provider"`
	Model     string          `mapstructure:"model"`
	OpenAI    ProviderConfig  `mapstructure:"openai"`
	Gemini    ProviderConfig  `mapstructure:"gemini"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Search    SearchConfig    `mapstructure:"search"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// ProviderConfig holds the credentials of one model provider.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// AgentConfig tunes the answer loop and the model client.
type AgentConfig struct {
	MaxRounds    int           `mapstructure:"max_rounds"`
	ToolChoice   string        `mapstructure:"tool_choice"`
	ModelTimeout time.Duration `mapstructure:"model_timeout"`
	Retries      int           `mapstructure:"retries"`
	Temperature  float32       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	// RequestLog is the verbosity of per-round model logging: minimal, standard or verbose.
	RequestLog string `mapstructure:"request_log"`
}

type SearchConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Limit    int           `mapstructure:"limit"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type ExtractorConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	Format    string        `mapstructure:"format"`
	UserAgent string        `mapstructure:"user_agent"`
}

type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("model", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("agent.max_rounds", 10)
	v.SetDefault("agent.tool_choice", "auto")
	v.SetDefault("agent.model_timeout", 60*time.Second)
	v.SetDefault("agent.retries", 2)
	v.SetDefault("agent.temperature", 0)
	v.SetDefault("agent.max_tokens", 0)
	v.SetDefault("agent.request_log", "standard")
	v.SetDefault("search.endpoint", "https://search.neuranet-ai.com/search")
	v.SetDefault("search.limit", 5)
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("extractor.timeout", 5*time.Second)
	v.SetDefault("extractor.format", "text")
	v.SetDefault("extractor.user_agent", "searchgpt-webpage/1.0")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.request_timeout", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "compact")
}

// Load reads .env (when present), then the config file at path, or
// searchgpt.* in ., ./config and $HOME/.searchgpt when path is empty.
// Environment variables use the SEARCHGPT_ prefix with dots replaced by
// underscores (SEARCHGPT_AGENT_MAX_ROUNDS). Provider keys are also read from
// OPENAI_API_KEY / O_API_KEY and GEMINI_API_KEY / G_API_KEY.
//
// Load does not validate; call Validate before using the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("searchgpt")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".searchgpt"))
		}
	}

	v.SetEnvPrefix("SEARCHGPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range map[string][]string{
		"openai.api_key":  {"SEARCHGPT_OPENAI_API_KEY", "OPENAI_API_KEY", "O_API_KEY"},
		"openai.base_url": {"SEARCHGPT_OPENAI_BASE_URL", "OPENAI_API_BASE_URL"},
		"gemini.api_key":  {"SEARCHGPT_GEMINI_API_KEY", "GEMINI_API_KEY", "G_API_KEY"},
		"gemini.base_url": {"SEARCHGPT_GEMINI_BASE_URL", "GEMINI_API_BASE_URL"},
		"log.level":       {"SEARCHGPT_LOG_LEVEL", "LOG_LEVEL"},
		"log.format":      {"SEARCHGPT_LOG_FORMAT", "LOG_FORMAT"},
	} {
		if err := v.BindEnv(append([]string{key}, aliases...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return &cfg, nil
}

// Validate reports configuration errors that must stop the process at startup,
// most importantly a missing API key for the selected provider.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
		if strings.TrimSpace(c.ProviderSettings().APIKey) == "" {
			errs = append(errs, fmt.Errorf("%s.api_key is required (set %s)", c.Provider, apiKeyEnv(c.Provider)))
		}
	default:
		errs = append(errs, fmt.Errorf("provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.Provider))
	}

	if c.Agent.MaxRounds <= 0 {
		errs = append(errs, errors.New("agent.max_rounds must be greater than zero"))
	}
	switch c.Agent.ToolChoice {
	case "auto", "required", "any", "none":
	default:
		errs = append(errs, fmt.Errorf("agent.tool_choice must be auto, required or none, got %q", c.Agent.ToolChoice))
	}
	if c.Search.Limit <= 0 || c.Search.Limit > websearch.MaxResults {
		errs = append(errs, fmt.Errorf("search.limit must be between 1 and %d", websearch.MaxResults))
	}
	if c.Extractor.Timeout <= 0 {
		errs = append(errs, errors.New("extractor.timeout must be positive"))
	}
	if _, err := webpage.ParseFormat(c.Extractor.Format); err != nil {
		errs = append(errs, fmt.Errorf("extractor.format: %w", err))
	}

	return errors.Join(errs...)
}

// ProviderSettings returns the credentials of the selected provider.
func (c *Config) ProviderSettings() ProviderConfig {
	if c.Provider == ProviderGemini {
		return c.Gemini
	}
	return c.OpenAI
}

func apiKeyEnv(provider string) string {
	if provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}
