package logic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"advisor-api/internal/types"
	"advisor-api/pkg/advisor"
)

func TestParsePortfolio(t *testing.T) {
	t.Run("parses shares and value forms", func(t *testing.T) {
		assets, err := parsePortfolio([]types.AssetPayload{
			{Symbol: "AAPL", Shares: "10.5", Account: "Trading"},
			{Symbol: "VOO", Value: "$12,000.00"},
		})
		require.NoError(t, err)
		require.Len(t, assets, 2)

		require.Equal(t, "AAPL", assets[0].Symbol)
		require.Equal(t, "Trading", assets[0].Account)
		require.NotNil(t, assets[0].Shares)
		require.Equal(t, "10.5", assets[0].Shares.String())
		require.Nil(t, assets[0].Value)

		require.NotNil(t, assets[1].Value)
		require.Equal(t, "12000", assets[1].Value.String())
	})

	t.Run("empty portfolio is nil", func(t *testing.T) {
		assets, err := parsePortfolio(nil)
		require.NoError(t, err)
		require.Nil(t, assets)
	})

	t.Run("missing symbol rejected", func(t *testing.T) {
		_, err := parsePortfolio([]types.AssetPayload{{Shares: "1"}})
		require.ErrorIs(t, err, advisor.ErrInvalidRequest)
	})

	t.Run("malformed shares rejected", func(t *testing.T) {
		_, err := parsePortfolio([]types.AssetPayload{{Symbol: "AAPL", Shares: "ten"}})
		require.ErrorIs(t, err, advisor.ErrInvalidRequest)
	})
}

func TestParseCash(t *testing.T) {
	t.Run("human formatted amount", func(t *testing.T) {
		amount, err := parseCash("$1,234.56", "cash")
		require.NoError(t, err)
		require.Equal(t, "1234.56", amount.String())
	})

	t.Run("blank means zero", func(t *testing.T) {
		amount, err := parseCash("  ", "cash")
		require.NoError(t, err)
		require.True(t, amount.IsZero())
	})

	t.Run("negative rejected", func(t *testing.T) {
		_, err := parseCash("-50", "monthly_cash")
		require.ErrorIs(t, err, advisor.ErrInvalidRequest)
		require.Contains(t, err.Error(), "monthly_cash")
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := parseCash("lots", "cash")
		require.ErrorIs(t, err, advisor.ErrInvalidRequest)
	})
}

func TestParseConversationID(t *testing.T) {
	t.Run("blank is nil", func(t *testing.T) {
		id, err := parseConversationID("")
		require.NoError(t, err)
		require.Nil(t, id)
	})

	t.Run("valid uuid", func(t *testing.T) {
		id, err := parseConversationID("5b1ef8c0-91f5-4a38-9f4c-0a588f1f0a40")
		require.NoError(t, err)
		require.NotNil(t, id)
		require.Equal(t, "5b1ef8c0-91f5-4a38-9f4c-0a588f1f0a40", id.String())
	})

	t.Run("malformed uuid rejected", func(t *testing.T) {
		_, err := parseConversationID("not-a-uuid")
		require.Error(t, err)
		require.True(t, errors.Is(err, advisor.ErrInvalidRequest))
	})
}
