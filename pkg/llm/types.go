package llm

// Message represents a single chat message exchanged with a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Standard message roles shared by all providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionRequest describes one completion invocation routed through the gateway.
type CompletionRequest struct {
	// Messages is the finalized message list for this turn, typically a
	// system message followed by the new user message. Prior conversation
	// context is supplied separately via Conversation.
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	// Category labels the prompt kind (analysis, recommendations, chat)
	// for trace entries and logs. It has no routing effect.
	Category string `json:"category,omitempty"`
	// Trace, when non-nil, collects one immutable entry per provider attempt.
	Trace *Trace `json:"-"`
}

// Conversation carries prior context for multi-turn requests.
type Conversation struct {
	// ThreadRef is an opaque provider-side thread handle in
	// "provider/handle" form. Empty when no provider thread exists.
	ThreadRef string
	// History is the locally owned message sequence, replayed as leading
	// context when the selected provider has no usable thread.
	History []Message
}

// CompletionResult is the outcome of a successful completion.
type CompletionResult struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Usage    Usage  `json:"usage"`
	// ThreadRef echoes or introduces a provider thread handle, when the
	// serving provider supports persistent threads.
	ThreadRef string `json:"thread_ref,omitempty"`
}

// Usage summarises token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
