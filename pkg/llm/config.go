package llm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"advisor-api/pkg/confkit"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 2
	defaultLogLevel   = "info"
	defaultMaxTokens  = 1000

	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
	envTimeout      = "ADVISOR_LLM_TIMEOUT"
	envMaxRetries   = "ADVISOR_LLM_MAX_RETRIES"
)

// Provider type discriminators for the closed provider set.
const (
	ProviderTypeOpenAI    = "openai"
	ProviderTypeAnthropic = "anthropic"
)

// Config holds runtime settings for the provider gateway. Providers are
// attempted in list order: the first entry is the primary backend and the
// rest are fallbacks.
type Config struct {
	Timeout    time.Duration    `yaml:"-"`
	MaxRetries int              `yaml:"max_retries"`
	LogLevel   string           `yaml:"log_level"`
	Providers  []ProviderConfig `yaml:"providers"`

	timeoutRaw string
}

// ProviderConfig describes a single backend in the priority list.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LoadConfig reads gateway configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open llm config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	var raw struct {
		Timeout    string           `yaml:"timeout"`
		MaxRetries int              `yaml:"max_retries"`
		LogLevel   string           `yaml:"log_level"`
		Providers  []ProviderConfig `yaml:"providers"`
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read llm config: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal llm config: %w", err)
	}

	cfg := &Config{
		MaxRetries: raw.MaxRetries,
		LogLevel:   raw.LogLevel,
		Providers:  raw.Providers,
		timeoutRaw: raw.Timeout,
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := cfg.parseTimeout(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return errors.New("llm config: at least one provider is required")
	}
	if c.Timeout <= 0 {
		return errors.New("llm config: timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("llm config: max_retries cannot be negative")
	}
	seen := make(map[string]struct{}, len(c.Providers))
	for i := range c.Providers {
		p := &c.Providers[i]
		if strings.TrimSpace(p.Name) == "" {
			p.Name = p.Type
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("llm config: duplicate provider name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		switch p.Type {
		case ProviderTypeOpenAI, ProviderTypeAnthropic:
		default:
			return fmt.Errorf("llm config: unsupported provider type %q", p.Type)
		}
		if strings.TrimSpace(p.APIKey) == "" {
			return fmt.Errorf("llm config: provider %s has no api key", p.Name)
		}
		if strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("llm config: provider %s has no model", p.Name)
		}
	}
	return nil
}

// Clone returns a copy of the configuration safe to mutate.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Providers = make([]ProviderConfig, len(c.Providers))
	copy(cp.Providers, c.Providers)
	return &cp
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
}

func (c *Config) applyEnvOverrides() {
	for i := range c.Providers {
		p := &c.Providers[i]
		p.APIKey = os.ExpandEnv(p.APIKey)
		p.BaseURL = os.ExpandEnv(p.BaseURL)
		if p.APIKey != "" {
			continue
		}
		switch p.Type {
		case ProviderTypeOpenAI:
			p.APIKey = os.Getenv(envOpenAIKey)
		case ProviderTypeAnthropic:
			p.APIKey = os.Getenv(envAnthropicKey)
		}
	}

	if raw := os.Getenv(envTimeout); raw != "" {
		c.timeoutRaw = raw
	} else {
		c.timeoutRaw = os.ExpandEnv(c.timeoutRaw)
	}

	if raw := os.Getenv(envMaxRetries); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			c.MaxRetries = v
		}
	}
}

func (c *Config) parseTimeout() error {
	if strings.TrimSpace(c.timeoutRaw) == "" {
		c.Timeout = defaultTimeout
		return nil
	}

	d, err := time.ParseDuration(c.timeoutRaw)
	if err != nil {
		return fmt.Errorf("llm config: invalid timeout %q: %w", c.timeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("llm config: timeout must be positive, got %s", d)
	}
	c.Timeout = d
	return nil
}
