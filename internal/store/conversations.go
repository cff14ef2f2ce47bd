package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"advisor-api/pkg/advisor"
	"advisor-api/pkg/llm"
)

// SQLStore persists conversations in Postgres. Commits on the same
// conversation serialize through a row lock; distinct conversations
// proceed in parallel.
//
// Expected tables:
//
//	conversations(id uuid PRIMARY KEY, user_ref text, provider_thread_ref text,
//	              created_at timestamptz NOT NULL, last_used_at timestamptz NOT NULL)
//	conversation_messages(conversation_id uuid REFERENCES conversations(id),
//	              seq bigint NOT NULL, role text NOT NULL, content text NOT NULL,
//	              created_at timestamptz NOT NULL, PRIMARY KEY (conversation_id, seq))
type SQLStore struct {
	conn sqlx.SqlConn
}

var _ advisor.Store = (*SQLStore)(nil)

func NewSQLStore(conn sqlx.SqlConn) *SQLStore {
	return &SQLStore{conn: conn}
}

type conversationRow struct {
	ID                string         `db:"id"`
	UserRef           sql.NullString `db:"user_ref"`
	ProviderThreadRef sql.NullString `db:"provider_thread_ref"`
	CreatedAt         time.Time      `db:"created_at"`
	LastUsedAt        time.Time      `db:"last_used_at"`
}

type messageRow struct {
	Role    string `db:"role"`
	Content string `db:"content"`
}

// Resolve implements advisor.Store.
func (s *SQLStore) Resolve(ctx context.Context, id *uuid.UUID, userRef string) (*advisor.ConversationState, error) {
	if id == nil {
		return s.create(ctx, userRef)
	}

	const convQuery = `
SELECT id, user_ref, provider_thread_ref, created_at, last_used_at
FROM conversations
WHERE id = $1`

	var row conversationRow
	if err := s.conn.QueryRowCtx(ctx, &row, convQuery, id.String()); err != nil {
		if errors.Is(err, sqlx.ErrNotFound) {
			return nil, fmt.Errorf("conversation %s: %w", id, advisor.ErrConversationNotFound)
		}
		return nil, fmt.Errorf("store: load conversation %s: %w", id, err)
	}

	const msgQuery = `
SELECT role, content
FROM conversation_messages
WHERE conversation_id = $1
ORDER BY seq`

	var msgRows []messageRow
	if err := s.conn.QueryRowsCtx(ctx, &msgRows, msgQuery, id.String()); err != nil {
		return nil, fmt.Errorf("store: load messages for %s: %w", id, err)
	}

	state := &advisor.ConversationState{
		ID:                *id,
		ProviderThreadRef: row.ProviderThreadRef.String,
		UserRef:           row.UserRef.String,
		CreatedAt:         row.CreatedAt,
		LastUsedAt:        row.LastUsedAt,
	}
	if len(msgRows) > 0 {
		state.MessageHistory = make([]llm.Message, len(msgRows))
		for i, m := range msgRows {
			state.MessageHistory[i] = llm.Message{Role: m.Role, Content: m.Content}
		}
	}
	return state, nil
}

func (s *SQLStore) create(ctx context.Context, userRef string) (*advisor.ConversationState, error) {
	id := uuid.New()
	now := time.Now().UTC()

	const insert = `
INSERT INTO conversations (id, user_ref, provider_thread_ref, created_at, last_used_at)
VALUES ($1, NULLIF($2, ''), NULL, $3, $3)`

	if _, err := s.conn.ExecCtx(ctx, insert, id.String(), userRef, now); err != nil {
		return nil, fmt.Errorf("store: create conversation: %w", err)
	}
	return &advisor.ConversationState{
		ID:         id,
		UserRef:    userRef,
		CreatedAt:  now,
		LastUsedAt: now,
	}, nil
}

// Commit implements advisor.Store. The parent row is locked FOR UPDATE so
// concurrent commits on one conversation append whole turns, never
// interleaved halves.
func (s *SQLStore) Commit(ctx context.Context, id uuid.UUID, turn advisor.Turn) error {
	return s.conn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		const lock = `
SELECT id, user_ref, provider_thread_ref, created_at, last_used_at
FROM conversations
WHERE id = $1
FOR UPDATE`

		var row conversationRow
		if err := session.QueryRowCtx(ctx, &row, lock, id.String()); err != nil {
			if errors.Is(err, sqlx.ErrNotFound) {
				return fmt.Errorf("conversation %s: %w", id, advisor.ErrConversationNotFound)
			}
			return fmt.Errorf("store: lock conversation %s: %w", id, err)
		}

		const insertMsg = `
INSERT INTO conversation_messages (conversation_id, seq, role, content, created_at)
VALUES ($1, (SELECT COALESCE(MAX(seq), 0) + 1 FROM conversation_messages WHERE conversation_id = $1), $2, $3, $4)`

		now := time.Now().UTC()
		for _, msg := range []llm.Message{turn.User, turn.Assistant} {
			if _, err := session.ExecCtx(ctx, insertMsg, id.String(), msg.Role, msg.Content, now); err != nil {
				return fmt.Errorf("store: append message to %s: %w", id, err)
			}
		}

		const touch = `
UPDATE conversations
SET last_used_at = $2,
    provider_thread_ref = COALESCE(NULLIF($3, ''), provider_thread_ref)
WHERE id = $1`

		if _, err := session.ExecCtx(ctx, touch, id.String(), now, turn.ProviderThreadRef); err != nil {
			return fmt.Errorf("store: touch conversation %s: %w", id, err)
		}
		return nil
	})
}
