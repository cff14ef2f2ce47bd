package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicProvider completes chat requests via the Anthropic SDK. The
// Messages API takes the system prompt out of band and rejects consecutive
// same-role turns, so the message list is re-shaped before each call.
type anthropicProvider struct {
	name   string
	model  string
	client anthropic.Client
	retry  *RetryHandler
	logger Logger
}

func newAnthropicProvider(cfg ProviderConfig, timeout time.Duration, retry *RetryHandler, logger Logger) *anthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &anthropicProvider{
		name:   cfg.Name,
		model:  cfg.Model,
		client: anthropic.NewClient(opts...),
		retry:  retry,
		logger: logger,
	}
}

func (p *anthropicProvider) Name() string  { return p.name }
func (p *anthropicProvider) Model() string { return p.model }

func (p *anthropicProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, errors.New("llm: request requires at least one message")
	}

	system, turns := toAnthropicMessages(req.Messages)
	if len(turns) == 0 {
		return nil, errors.New("llm: request requires at least one user message")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages:  turns,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	var msg *anthropic.Message
	err := p.retry.Do(ctx, func() error {
		resp, callErr := p.client.Messages.New(ctx, params)
		if callErr != nil {
			p.logger.Error(ctx, fmt.Errorf("anthropic completion failed: %w", callErr), Fields{
				"provider": p.name,
				"model":    p.model,
				"category": req.Category,
			})
			return callErr
		}
		msg = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &CompletionResult{
		Text:     text.String(),
		Provider: p.name,
		Model:    string(msg.Model),
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

// toAnthropicMessages folds system messages into a single system prompt and
// converts the remaining turns to the Messages API shape.
func toAnthropicMessages(msgs []Message) (string, []anthropic.MessageParam) {
	var system []string
	turns := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return strings.Join(system, "\n\n"), turns
}
