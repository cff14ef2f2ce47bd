package advisor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"advisor-api/pkg/llm"
	"advisor-api/pkg/marketdata"
)

func TestLookupTemplate(t *testing.T) {
	for _, name := range []string{TemplateAnalysis, TemplateRecommendations, TemplateChat} {
		tmpl, err := LookupTemplate(name)
		require.NoError(t, err)
		require.Equal(t, name, tmpl.Name)
		require.Positive(t, tmpl.MaxTokens)
		require.GreaterOrEqual(t, tmpl.Temperature, 0.0)
		require.LessOrEqual(t, tmpl.Temperature, 2.0)
	}
}

func TestLookupTemplateUnknown(t *testing.T) {
	_, err := LookupTemplate("nonexistent")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestBuildProducesSystemAndUser(t *testing.T) {
	messages, tmpl, err := Build(TemplateAnalysis, map[string]any{
		"portfolio_summary": "Portfolio Summary: empty",
	})
	require.NoError(t, err)
	require.NotNil(t, tmpl)
	require.Len(t, messages, 2)
	require.Equal(t, llm.RoleSystem, messages[0].Role)
	require.Equal(t, llm.RoleUser, messages[1].Role)
	require.Contains(t, messages[1].Content, "Portfolio Summary: empty")
}

func TestBuildMissingVariable(t *testing.T) {
	_, _, err := Build(TemplateRecommendations, map[string]any{
		"portfolio_summary": "x",
		// analysis, investment_goals, chat, monthly_cash omitted
	})
	require.Error(t, err)

	var missing *MissingVariableError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, TemplateRecommendations, missing.Template)
}

func TestFormatPortfolioSummaryDeterministic(t *testing.T) {
	a := EnrichedAsset{Symbol: "AAPL", Account: "Trading", UnitPrice: dec("150"), ResolvedShares: dec("10"), ResolvedValue: dec("1500"), AssetType: marketdata.AssetTypeStock, PriceKnown: true}
	b := EnrichedAsset{Symbol: "MSFT", Account: "IRA", UnitPrice: dec("410"), ResolvedShares: dec("2"), ResolvedValue: dec("820"), AssetType: marketdata.AssetTypeStock, PriceKnown: true}
	totals := computeTotals([]EnrichedAsset{a, b}, dec("100"))

	first := FormatPortfolioSummary([]EnrichedAsset{a, b}, totals, "growth")
	second := FormatPortfolioSummary([]EnrichedAsset{b, a}, totals, "growth")
	require.Equal(t, first, second)

	require.Contains(t, first, "- Total Portfolio Value: $2,420.00")
	require.Contains(t, first, "- Available Cash: $100.00")
	require.Contains(t, first, "TICKER: AAPL")
	require.Contains(t, first, "Account: Trading")
	require.Contains(t, first, "Investment Goals:\ngrowth")
}

func TestFormatUSD(t *testing.T) {
	require.Equal(t, "$2,300.00", formatUSD(dec("2300")))
	require.Equal(t, "$1,234,567.89", formatUSD(dec("1234567.89")))
	require.Equal(t, "$0.00", formatUSD(decimal.Zero))
	require.Equal(t, "-$512.50", formatUSD(dec("-512.5")))
	require.Equal(t, "$999.99", formatUSD(dec("999.99")))
}
