package llm

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleLLMConfigYAML = `
timeout: 45s
max_retries: 3
log_level: debug
providers:
  - name: openai-main
    type: openai
    api_key: sk-test
    model: gpt-4o
  - name: anthropic-fallback
    type: anthropic
    api_key: sk-ant-test
    model: claude-sonnet-4-0
`

func TestLoadConfigFromReader(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(sampleLLMConfigYAML))
	require.NoError(t, err)

	require.Equal(t, 45*time.Second, cfg.Timeout)
	require.Equal(t, 3, cfg.MaxRetries)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Providers, 2)
	require.Equal(t, "openai-main", cfg.Providers[0].Name)
	require.Equal(t, ProviderTypeOpenAI, cfg.Providers[0].Type)
	require.Equal(t, ProviderTypeAnthropic, cfg.Providers[1].Type)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(`
providers:
  - type: openai
    api_key: sk-test
    model: gpt-4o
`))
	require.NoError(t, err)
	require.Equal(t, defaultTimeout, cfg.Timeout)
	require.Equal(t, defaultMaxRetries, cfg.MaxRetries)
	require.Equal(t, defaultLogLevel, cfg.LogLevel)
	// Name defaults to the provider type.
	require.Equal(t, ProviderTypeOpenAI, cfg.Providers[0].Name)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv(envOpenAIKey, "sk-from-env")
	t.Setenv(envTimeout, "9s")
	t.Setenv(envMaxRetries, "7")

	cfg, err := LoadConfigFromReader(strings.NewReader(`
providers:
  - type: openai
    model: gpt-4o
`))
	require.NoError(t, err)
	require.Equal(t, "sk-from-env", cfg.Providers[0].APIKey)
	require.Equal(t, 9*time.Second, cfg.Timeout)
	require.Equal(t, 7, cfg.MaxRetries)
}

func TestLoadConfigExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-expanded")

	cfg, err := LoadConfigFromReader(strings.NewReader(`
providers:
  - type: anthropic
    api_key: ${TEST_LLM_KEY}
    model: claude-sonnet-4-0
`))
	require.NoError(t, err)
	require.Equal(t, "sk-expanded", cfg.Providers[0].APIKey)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no providers", `timeout: 5s`, "at least one provider"},
		{"unknown type", `
providers:
  - type: cohere
    api_key: k
    model: m
`, "unsupported provider type"},
		{"missing model", `
providers:
  - type: openai
    api_key: k
`, "no model"},
		{"duplicate names", `
providers:
  - name: same
    type: openai
    api_key: k
    model: m
  - name: same
    type: anthropic
    api_key: k
    model: m
`, "duplicate provider name"},
		{"bad timeout", `
timeout: never
providers:
  - type: openai
    api_key: k
    model: m
`, "invalid timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tc.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfigMissingAPIKey(t *testing.T) {
	// Guard against ambient keys leaking into the test.
	t.Setenv(envOpenAIKey, "")

	_, err := LoadConfigFromReader(strings.NewReader(`
providers:
  - type: openai
    model: gpt-4o
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no api key")
}

func TestConfigClone(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(sampleLLMConfigYAML))
	require.NoError(t, err)

	clone := cfg.Clone()
	clone.Providers[0].APIKey = "mutated"
	require.Equal(t, "sk-test", cfg.Providers[0].APIKey)
}
