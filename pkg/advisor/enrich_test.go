package advisor

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"advisor-api/pkg/marketdata"
)

func newTestMarket(t *testing.T) *marketdata.SimProvider {
	t.Helper()
	p, err := marketdata.NewSimProvider(nil)
	require.NoError(t, err)
	return p
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestEnrichSharesToValue(t *testing.T) {
	assets := []AssetInput{{Symbol: "AAPL", Shares: decPtr("10")}}

	enriched, totals, warnings, err := Enrich(context.Background(), newTestMarket(t), assets, dec("5000"))
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, enriched, 1)

	// AAPL priced at 150 in the sim table.
	require.True(t, enriched[0].ResolvedValue.Equal(dec("1500")))
	require.True(t, enriched[0].ResolvedShares.Equal(dec("10")))
	require.Equal(t, marketdata.AssetTypeStock, enriched[0].AssetType)

	require.True(t, totals.TotalValue.Equal(dec("1500")))
	require.True(t, totals.TotalPortfolioValue.Equal(dec("6500")))
	require.Equal(t, 1, totals.AssetCount)
}

func TestEnrichValueToShares(t *testing.T) {
	assets := []AssetInput{{Symbol: "AAPL", Value: decPtr("3000")}}

	enriched, _, _, err := Enrich(context.Background(), newTestMarket(t), assets, decimal.Zero)
	require.NoError(t, err)
	require.True(t, enriched[0].ResolvedValue.Equal(dec("3000")))
	require.True(t, enriched[0].ResolvedShares.Equal(dec("20")))
}

func TestEnrichValueAuthoritativeOverShares(t *testing.T) {
	assets := []AssetInput{{Symbol: "AAPL", Shares: decPtr("999"), Value: decPtr("1500")}}

	enriched, _, _, err := Enrich(context.Background(), newTestMarket(t), assets, decimal.Zero)
	require.NoError(t, err)
	require.True(t, enriched[0].ResolvedValue.Equal(dec("1500")))
	require.True(t, enriched[0].ResolvedShares.Equal(dec("10")))
}

func TestEnrichUnderspecified(t *testing.T) {
	_, _, _, err := Enrich(context.Background(), newTestMarket(t), []AssetInput{{Symbol: "AAPL"}}, decimal.Zero)
	require.ErrorIs(t, err, ErrAssetUnderspecified)

	_, _, _, err = Enrich(context.Background(), newTestMarket(t), []AssetInput{{Symbol: ""}}, decimal.Zero)
	require.ErrorIs(t, err, ErrAssetUnderspecified)
}

func TestEnrichUnknownTickerWithValueDegrades(t *testing.T) {
	assets := []AssetInput{{Symbol: "ZZZZ", Value: decPtr("1000")}}

	enriched, totals, warnings, err := Enrich(context.Background(), newTestMarket(t), assets, decimal.Zero)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	require.Equal(t, marketdata.AssetTypeOther, enriched[0].AssetType)
	require.False(t, enriched[0].PriceKnown)
	require.True(t, enriched[0].ResolvedValue.Equal(dec("1000")))
	require.True(t, totals.TotalValue.Equal(dec("1000")))
}

func TestEnrichUnknownTickerWithSharesEscalates(t *testing.T) {
	assets := []AssetInput{{Symbol: "ZZZZ", Shares: decPtr("5")}}

	_, _, _, err := Enrich(context.Background(), newTestMarket(t), assets, decimal.Zero)
	require.ErrorIs(t, err, ErrAssetUnderspecified)
}

func TestEnrichPartialFailure(t *testing.T) {
	assets := []AssetInput{
		{Symbol: "AAPL", Shares: decPtr("10"), Account: "Trading"},
		{Symbol: "ZZZZ", Value: decPtr("500")},
	}

	enriched, totals, warnings, err := Enrich(context.Background(), newTestMarket(t), assets, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, enriched, 2)
	require.Len(t, warnings, 1)
	require.True(t, totals.TotalValue.Equal(dec("2000")))
	require.ElementsMatch(t, []string{"Stock", "Other"}, totals.AssetTypes)
}

func TestEnrichAccountsDefault(t *testing.T) {
	assets := []AssetInput{{Symbol: "AAPL", Shares: decPtr("1")}}

	enriched, _, _, err := Enrich(context.Background(), newTestMarket(t), assets, decimal.Zero)
	require.NoError(t, err)
	require.Equal(t, DefaultAccount, enriched[0].Account)
}
