package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrAllProvidersUnavailable reports that every configured backend failed
// for a single request. It is terminal: the gateway performs no
// cross-request retries.
var ErrAllProvidersUnavailable = errors.New("llm: all providers unavailable")

// Gateway routes completion requests across a priority-ordered provider
// list with per-attempt timeouts and automatic fallback.
type Gateway struct {
	cfg       *Config
	providers []Provider
	logger    Logger
}

// GatewayOption configures optional gateway behaviour.
type GatewayOption func(*gatewayOptions)

type gatewayOptions struct {
	logger    Logger
	retry     *RetryHandler
	providers []Provider
}

// WithLogger injects a custom logger implementation.
func WithLogger(logger Logger) GatewayOption {
	return func(o *gatewayOptions) { o.logger = logger }
}

// WithRetryHandler injects a custom retry handler shared by all providers.
func WithRetryHandler(handler *RetryHandler) GatewayOption {
	return func(o *gatewayOptions) { o.retry = handler }
}

// WithProviders replaces the configured provider set, primarily for tests.
func WithProviders(providers ...Provider) GatewayOption {
	return func(o *gatewayOptions) { o.providers = providers }
}

// NewGateway constructs a gateway from configuration.
func NewGateway(cfg *Config, opts ...GatewayOption) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.New("llm: config cannot be nil")
	}
	gwCfg := cfg.Clone()
	if err := gwCfg.Validate(); err != nil {
		return nil, err
	}

	var optState gatewayOptions
	for _, opt := range opts {
		opt(&optState)
	}

	logger := optState.logger
	if logger == nil {
		logger = NewLogger(gwCfg.LogLevel)
	}
	retry := optState.retry
	if retry == nil {
		retry = NewRetryHandler(RetryConfig{MaxRetries: gwCfg.MaxRetries})
	}

	providers := optState.providers
	if len(providers) == 0 {
		providers = make([]Provider, 0, len(gwCfg.Providers))
		for _, pc := range gwCfg.Providers {
			p, err := buildProvider(pc, gwCfg.Timeout, retry, logger)
			if err != nil {
				return nil, err
			}
			providers = append(providers, p)
		}
	}

	return &Gateway{cfg: gwCfg, providers: providers, logger: logger}, nil
}

// Providers exposes the configured backends in priority order.
func (g *Gateway) Providers() []Provider { return g.providers }

// Complete attempts providers in priority order until one returns a result.
// A failed attempt (transport error, non-2xx, reported capacity error, or
// per-attempt timeout) falls through to the next provider; a well-formed
// but semantically empty response does not. Each attempt is recorded on
// req.Trace when present.
func (g *Gateway) Complete(ctx context.Context, req *CompletionRequest, conv *Conversation) (*CompletionResult, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, errors.New("llm: request requires at least one message")
	}

	var lastErr error
	for _, provider := range g.providers {
		result, err := g.attempt(ctx, provider, req, conv)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			// The request itself was cancelled; trying further providers
			// would fail the same way.
			break
		}
		g.logger.Warn(ctx, "provider attempt failed, falling through", Fields{
			"provider": provider.Name(),
			"category": req.Category,
			"error":    err.Error(),
		})
	}

	if lastErr != nil {
		g.logger.Error(ctx, lastErr, Fields{"category": req.Category})
	}
	return nil, ErrAllProvidersUnavailable
}

func (g *Gateway) attempt(ctx context.Context, provider Provider, req *CompletionRequest, conv *Conversation) (*CompletionResult, error) {
	attemptCtx := ctx
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := g.dispatch(attemptCtx, provider, req, conv)

	entry := TraceEntry{
		Provider:   provider.Name(),
		Model:      provider.Model(),
		Category:   req.Category,
		Timestamp:  start,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Model = result.Model
		entry.PromptTokens = result.Usage.PromptTokens
		entry.CompletionTokens = result.Usage.CompletionTokens
	}
	req.Trace.Record(entry)

	return result, err
}

// dispatch selects between the provider's thread capability and client-side
// history replay.
func (g *Gateway) dispatch(ctx context.Context, provider Provider, req *CompletionRequest, conv *Conversation) (*CompletionResult, error) {
	if conv != nil {
		if ts, ok := provider.(ThreadSupport); ok {
			owner, handle := SplitThreadRef(conv.ThreadRef)
			// A fresh thread may only be minted for a conversation with no
			// prior turns; untransmitted history must be replayed instead.
			fresh := conv.ThreadRef == "" && len(conv.History) == 0
			if fresh || (conv.ThreadRef != "" && owner == provider.Name()) {
				result, err := ts.CompleteThread(ctx, handle, req)
				if err != nil {
					return nil, err
				}
				result.ThreadRef = ThreadRef(provider.Name(), result.ThreadRef)
				return result, nil
			}
		}
	}

	replayed := req
	if conv != nil && len(conv.History) > 0 {
		merged := spliceHistory(req.Messages, conv.History)
		clone := *req
		clone.Messages = merged
		replayed = &clone
	}
	return provider.Complete(ctx, replayed)
}

// spliceHistory inserts prior conversation turns after any leading system
// messages so the provider sees: system, history..., new user message.
func spliceHistory(messages, history []Message) []Message {
	lead := 0
	for lead < len(messages) && strings.EqualFold(messages[lead].Role, RoleSystem) {
		lead++
	}
	merged := make([]Message, 0, len(messages)+len(history))
	merged = append(merged, messages[:lead]...)
	merged = append(merged, history...)
	merged = append(merged, messages[lead:]...)
	return merged
}
