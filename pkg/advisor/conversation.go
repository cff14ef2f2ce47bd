package advisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"advisor-api/pkg/llm"
)

// ConversationState is the owning record of one logical multi-turn exchange.
// MessageHistory is always appended, even when a provider-side thread
// exists, so the state stays self-describing.
type ConversationState struct {
	ID                uuid.UUID
	ProviderThreadRef string
	MessageHistory    []llm.Message
	UserRef           string
	CreatedAt         time.Time
	LastUsedAt        time.Time
}

// Turn is one completed exchange to append to a conversation.
type Turn struct {
	User      llm.Message
	Assistant llm.Message
	// ProviderThreadRef updates the stored ref when the provider minted or
	// rotated a thread during this turn. Empty leaves it unchanged.
	ProviderThreadRef string
}

// Store resolves and commits conversation state. Implementations guarantee
// at most one active Commit per conversation id; commits on distinct ids
// proceed in parallel.
type Store interface {
	// Resolve loads the conversation for id, or mints a fresh one when id
	// is nil. A non-nil id with no matching state fails with
	// ErrConversationNotFound. The returned state is a private copy.
	Resolve(ctx context.Context, id *uuid.UUID, userRef string) (*ConversationState, error)
	// Commit appends the turn's user and assistant messages to the
	// conversation's history.
	Commit(ctx context.Context, id uuid.UUID, turn Turn) error
}

// MemoryStore is the default in-process Store. A per-conversation mutex
// serializes commits on the same id.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[uuid.UUID]*memoryConversation
}

type memoryConversation struct {
	mu    sync.Mutex
	state ConversationState
}

// NewMemoryStore constructs an empty in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: make(map[uuid.UUID]*memoryConversation)}
}

// Resolve implements Store.
func (s *MemoryStore) Resolve(ctx context.Context, id *uuid.UUID, userRef string) (*ConversationState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id == nil {
		now := time.Now().UTC()
		state := ConversationState{
			ID:         uuid.New(),
			UserRef:    userRef,
			CreatedAt:  now,
			LastUsedAt: now,
		}
		s.mu.Lock()
		s.conversations[state.ID] = &memoryConversation{state: state}
		s.mu.Unlock()
		out := state
		return &out, nil
	}

	s.mu.RLock()
	conv, ok := s.conversations[*id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	return snapshotState(&conv.state), nil
}

// Commit implements Store.
func (s *MemoryStore) Commit(ctx context.Context, id uuid.UUID, turn Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	conv, ok := s.conversations[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.state.MessageHistory = append(conv.state.MessageHistory, turn.User, turn.Assistant)
	if turn.ProviderThreadRef != "" {
		conv.state.ProviderThreadRef = turn.ProviderThreadRef
	}
	conv.state.LastUsedAt = time.Now().UTC()
	return nil
}

func snapshotState(state *ConversationState) *ConversationState {
	out := *state
	out.MessageHistory = make([]llm.Message, len(state.MessageHistory))
	copy(out.MessageHistory, state.MessageHistory)
	return &out
}
