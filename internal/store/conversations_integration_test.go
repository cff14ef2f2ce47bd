//go:build integration
// +build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"advisor-api/internal/store"
	"advisor-api/pkg/advisor"
	"advisor-api/pkg/llm"
)

func newIntegrationStore(t *testing.T) *store.SQLStore {
	t.Helper()
	dsn := os.Getenv("ADVISOR_PG_DSN")
	if dsn == "" {
		t.Skip("ADVISOR_PG_DSN not set; skipping store integration test")
	}
	return store.NewSQLStore(sqlx.NewSqlConn("pgx", dsn))
}

func TestSQLStore_RoundTrip(t *testing.T) {
	s := newIntegrationStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	state, err := s.Resolve(ctx, nil, "integration-user")
	require.NoError(t, err)
	require.Empty(t, state.MessageHistory)

	err = s.Commit(ctx, state.ID, advisor.Turn{
		User:      llm.Message{Role: llm.RoleUser, Content: "How is my portfolio doing?"},
		Assistant: llm.Message{Role: llm.RoleAssistant, Content: "It is well diversified."},
	})
	require.NoError(t, err)

	reloaded, err := s.Resolve(ctx, &state.ID, "integration-user")
	require.NoError(t, err)
	require.Len(t, reloaded.MessageHistory, 2)
	require.Equal(t, llm.RoleUser, reloaded.MessageHistory[0].Role)
	require.Equal(t, llm.RoleAssistant, reloaded.MessageHistory[1].Role)
	require.Equal(t, "integration-user", reloaded.UserRef)
}

func TestSQLStore_UnknownConversation(t *testing.T) {
	s := newIntegrationStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	missing := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	_, err := s.Resolve(ctx, &missing, "")
	require.ErrorIs(t, err, advisor.ErrConversationNotFound)
}

func TestSQLStore_ThreadRefRetention(t *testing.T) {
	s := newIntegrationStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	state, err := s.Resolve(ctx, nil, "")
	require.NoError(t, err)

	err = s.Commit(ctx, state.ID, advisor.Turn{
		User:              llm.Message{Role: llm.RoleUser, Content: "first"},
		Assistant:         llm.Message{Role: llm.RoleAssistant, Content: "reply"},
		ProviderThreadRef: "openai-main/thread-abc",
	})
	require.NoError(t, err)

	// A turn without a thread ref must keep the stored one.
	err = s.Commit(ctx, state.ID, advisor.Turn{
		User:      llm.Message{Role: llm.RoleUser, Content: "second"},
		Assistant: llm.Message{Role: llm.RoleAssistant, Content: "reply"},
	})
	require.NoError(t, err)

	reloaded, err := s.Resolve(ctx, &state.ID, "")
	require.NoError(t, err)
	require.Equal(t, "openai-main/thread-abc", reloaded.ProviderThreadRef)
	require.Len(t, reloaded.MessageHistory, 4)
}
