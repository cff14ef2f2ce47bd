package llm

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/require"
)

// This test uses go-vcr to record/replay a real chat completion call.
// It skips by default if the cassette is absent and RECORD_CASSETTES != 1.
func TestOpenAIProvider_Complete_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "openai_completion.yaml")
	if _, err := os.Stat(cassette); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassette)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(cassette), 0o755))
	}

	r, err := recorder.New(cassette)
	require.NoError(t, err)
	require.NotNil(t, r)
	defer func() { _ = r.Stop() }()

	cfg := ProviderConfig{
		Name:  "openai-recorded",
		Type:  ProviderTypeOpenAI,
		Model: "gpt-4o-mini",
	}
	retry := NewRetryHandler(RetryConfig{MaxRetries: 0})
	provider := newOpenAIProvider(cfg, 30*time.Second, retry, NewLogger("error")).
		WithHTTPClient(&http.Client{Transport: r})

	result, err := provider.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a terse assistant."},
			{Role: RoleUser, Content: "Reply with the single word: pong"},
		},
		MaxTokens:   16,
		Temperature: 0,
		Category:    "recorded",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Text)
	require.Equal(t, "openai-recorded", result.Provider)
	require.NotEmpty(t, result.Model)
	require.Greater(t, result.Usage.TotalTokens, 0)
}
