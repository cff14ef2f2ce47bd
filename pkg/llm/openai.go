package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIProvider completes chat requests via the OpenAI SDK.
type openAIProvider struct {
	name   string
	model  string
	client *openai.Client
	retry  *RetryHandler
	logger Logger
}

func newOpenAIProvider(cfg ProviderConfig, timeout time.Duration, retry *RetryHandler, logger Logger) *openAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries are driven by the shared RetryHandler, not the SDK.
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	clientVal := openai.NewClient(opts...)
	return &openAIProvider{
		name:   cfg.Name,
		model:  cfg.Model,
		client: &clientVal,
		retry:  retry,
		logger: logger,
	}
}

// WithHTTPClient swaps the underlying transport, primarily for tests.
func (p *openAIProvider) WithHTTPClient(hc *http.Client) *openAIProvider {
	key := os.Getenv(envOpenAIKey)
	if key == "" {
		key = "test"
	}
	clientVal := openai.NewClient(
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
		option.WithHTTPClient(hc),
	)
	p.client = &clientVal
	return p
}

func (p *openAIProvider) Name() string  { return p.name }
func (p *openAIProvider) Model() string { return p.model }

func (p *openAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, errors.New("llm: request requires at least one message")
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	var completion *openai.ChatCompletion
	err := p.retry.Do(ctx, func() error {
		resp, callErr := p.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			p.logger.Error(ctx, fmt.Errorf("openai completion failed: %w", callErr), Fields{
				"provider": p.name,
				"model":    p.model,
				"category": req.Category,
			})
			return callErr
		}
		completion = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	text := ""
	if len(completion.Choices) > 0 {
		text = completion.Choices[0].Message.Content
	}
	return &CompletionResult{
		Text:     text,
		Provider: p.name,
		Model:    completion.Model,
		Usage: Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case RoleSystem:
			result = append(result, openai.SystemMessage(m.Content))
		case RoleAssistant:
			result = append(result, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			result = append(result, openai.UserMessage(m.Content))
		}
	}
	return result
}
