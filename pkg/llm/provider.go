package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider is the capability interface implemented by every configured
// backend. The set is closed: providers are built from typed configuration,
// never discovered at runtime.
type Provider interface {
	// Name returns the configured provider name used in trace entries and
	// thread references.
	Name() string
	// Model returns the model identifier this provider completes with.
	Model() string
	// Complete performs a single blocking completion over the full message
	// list. Implementations return the raw assistant text even when it is
	// semantically empty; deciding what to do with it is the caller's job.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)
}

// ThreadSupport is an optional capability for providers that maintain
// server-side conversation threads. The gateway type-asserts for it; when
// absent, conversation history is replayed client-side instead.
type ThreadSupport interface {
	// CompleteThread appends the request to the thread identified by handle
	// (creating a new thread when handle is empty) and returns the result
	// with the thread handle set.
	CompleteThread(ctx context.Context, handle string, req *CompletionRequest) (*CompletionResult, error)
}

// buildProvider constructs a backend from its typed configuration.
func buildProvider(cfg ProviderConfig, timeout time.Duration, retry *RetryHandler, logger Logger) (Provider, error) {
	switch cfg.Type {
	case ProviderTypeOpenAI:
		return newOpenAIProvider(cfg, timeout, retry, logger), nil
	case ProviderTypeAnthropic:
		return newAnthropicProvider(cfg, timeout, retry, logger), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider type %q", cfg.Type)
	}
}

// ThreadRef composes an opaque conversation thread reference that records
// which provider owns the thread handle.
func ThreadRef(provider, handle string) string {
	if handle == "" {
		return ""
	}
	return provider + "/" + handle
}

// SplitThreadRef decomposes a thread reference into owning provider and
// provider-native handle.
func SplitThreadRef(ref string) (provider, handle string) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 {
		return "", ref
	}
	return parts[0], parts[1]
}
