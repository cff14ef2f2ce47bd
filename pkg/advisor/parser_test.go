package advisor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const sampleRecommendations = `Your portfolio is heavily weighted toward technology.

## ACCOUNT: Trading
- TICKER: AAPL, ACTION: BUY, AMOUNT: 2500, ACCOUNT: Trading, COMMENTS: Strong growth potential, undervalued at current price.
- TICKER: TSLA, ACTION: SELL, AMOUNT: $1,500, ACCOUNT: Trading, COMMENTS: Overvalued and high volatility risk.

## ACCOUNT: IRA
- TICKER: VTI, ACTION: BUY, AMOUNT: 5000, ACCOUNT: IRA, COMMENTS: Adds broad market exposure.
- TICKER: BND, ACTION: HOLD, AMOUNT: 0, ACCOUNT: IRA, COMMENTS: Keep for stability.

## RECURRING INVESTMENTS (Monthly Allocation)
- TICKER: VOO, ACTION: BUY, AMOUNT: 400, COMMENTS: Low-cost S&P 500 exposure.
- TICKER: CASH, ACTION: BUY, AMOUNT: 100, COMMENTS: Keep cash reserve.

FEEDBACK: The portfolio is solid but concentrated; the recommendations rebalance toward broad market funds.`

func TestParseStructuredResponse(t *testing.T) {
	known := map[string]bool{"AAPL": true, "TSLA": true, "BND": true}
	parsed, err := Parse(sampleRecommendations, ParseShape{ExpectRecords: true, KnownTickers: known})
	require.NoError(t, err)

	require.Len(t, parsed.Records, 4)
	require.Len(t, parsed.RecurringInvestments, 2)
	require.Contains(t, parsed.Narrative, "heavily weighted toward technology")
	require.Contains(t, parsed.Feedback, "rebalance toward broad market funds")
	require.Empty(t, parsed.Warnings)

	aapl := parsed.Records[0]
	require.Equal(t, "AAPL", aapl.Ticker)
	require.Equal(t, ActionBuy, aapl.Action)
	require.True(t, aapl.Amount.Equal(decimal.NewFromInt(2500)))
	require.Equal(t, "Trading", aapl.Account)
	require.Equal(t, "Strong growth potential, undervalued at current price.", aapl.Comments)

	tsla := parsed.Records[1]
	require.Equal(t, ActionSell, tsla.Action)
	require.True(t, tsla.Amount.Equal(decimal.NewFromInt(1500)))

	vti := parsed.Records[2]
	require.Equal(t, "IRA", vti.Account)
	require.Contains(t, vti.Comments, "[NEW ASSET]")

	bnd := parsed.Records[3]
	require.Equal(t, ActionHold, bnd.Action)
	require.True(t, bnd.Amount.IsZero())

	voo := parsed.RecurringInvestments[0]
	require.True(t, voo.IsRecurring)
	require.True(t, voo.Amount.Equal(decimal.NewFromInt(400)))
	require.Contains(t, voo.Comments, "[NEW ASSET]")

	cash := parsed.RecurringInvestments[1]
	require.Equal(t, CashTicker, cash.Ticker)
	require.NotContains(t, cash.Comments, "[NEW ASSET]")
}

func TestParseBareLine(t *testing.T) {
	parsed, err := Parse("MSFT BUY $2,500 Excellent growth", ParseShape{ExpectRecords: true})
	require.NoError(t, err)
	require.Len(t, parsed.Records, 1)

	rec := parsed.Records[0]
	require.Equal(t, "MSFT", rec.Ticker)
	require.Equal(t, ActionBuy, rec.Action)
	require.True(t, rec.Amount.Equal(decimal.NewFromInt(2500)))
	require.Contains(t, rec.Comments, "Excellent growth")
}

func TestParseNumericNormalization(t *testing.T) {
	cases := []struct {
		name   string
		line   string
		amount string
		warns  bool
	}{
		{"dollar and comma", "- TICKER: AAPL, ACTION: BUY, AMOUNT: $2,300, COMMENTS: ok", "2300", false},
		{"plain", "- TICKER: AAPL, ACTION: BUY, AMOUNT: 2300, COMMENTS: ok", "2300", false},
		{"garbage", "- TICKER: AAPL, ACTION: BUY, AMOUNT: abc, COMMENTS: ok", "0", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.line, ParseShape{})
			require.NoError(t, err)
			require.Len(t, parsed.Records, 1)
			rec := parsed.Records[0]
			require.True(t, rec.Amount.Equal(decimal.RequireFromString(tc.amount)))
			if tc.warns {
				require.NotEmpty(t, parsed.Warnings)
				require.Contains(t, rec.Comments, "abc")
			} else {
				require.Empty(t, parsed.Warnings)
			}
		})
	}
}

func TestParseHoldInvariant(t *testing.T) {
	// Hold lines normalize to zero even when the model asserts an amount.
	parsed, err := Parse("- TICKER: AAPL, ACTION: HOLD, AMOUNT: 900, COMMENTS: keep", ParseShape{})
	require.NoError(t, err)
	require.Len(t, parsed.Records, 1)
	require.Equal(t, ActionHold, parsed.Records[0].Action)
	require.True(t, parsed.Records[0].Amount.IsZero())
}

func TestParseUnknownActionSkipped(t *testing.T) {
	parsed, err := Parse(`Some narrative.
- TICKER: IVV, ACTION: MOVE, AMOUNT: 300, COMMENTS: Move to IRA.
- TICKER: AAPL, ACTION: BUY, AMOUNT: 100, COMMENTS: ok`, ParseShape{})
	require.NoError(t, err)
	require.Len(t, parsed.Records, 1)
	require.Equal(t, "AAPL", parsed.Records[0].Ticker)
	require.NotEmpty(t, parsed.Warnings)
	require.Contains(t, parsed.Warnings[0].Message, "unknown action")
}

func TestParseRecurringSellDropped(t *testing.T) {
	parsed, err := Parse(`Narrative.
## RECURRING INVESTMENTS (Monthly Allocation)
- TICKER: VOO, ACTION: BUY, AMOUNT: 400, COMMENTS: ok
- TICKER: TSLA, ACTION: SELL, AMOUNT: 100, COMMENTS: trim`, ParseShape{})
	require.NoError(t, err)
	require.Len(t, parsed.RecurringInvestments, 1)
	require.Equal(t, "VOO", parsed.RecurringInvestments[0].Ticker)
	require.NotEmpty(t, parsed.Warnings)
	require.Contains(t, parsed.Warnings[0].Message, "must be BUY")
}

func TestParseQuantityReasonAliases(t *testing.T) {
	parsed, err := Parse("- TICKER: ICWN, ACTION: BUY, QUANTITY: 2,300, REASON: Test", ParseShape{})
	require.NoError(t, err)
	require.Len(t, parsed.Records, 1)
	rec := parsed.Records[0]
	require.True(t, rec.Amount.Equal(decimal.NewFromInt(2300)))
	require.Equal(t, "Test", rec.Comments)
}

func TestParseIdempotent(t *testing.T) {
	first, err := Parse(sampleRecommendations, ParseShape{ExpectRecords: true})
	require.NoError(t, err)
	second, err := Parse(sampleRecommendations, ParseShape{ExpectRecords: true})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestParseEmptyFails(t *testing.T) {
	_, err := Parse("   \n  ", ParseShape{})
	require.ErrorIs(t, err, ErrParseFailed)
}

func TestParseNarrativeOnlyDegrades(t *testing.T) {
	parsed, err := Parse("The market looks uncertain; no structured changes advised.", ParseShape{ExpectRecords: true})
	require.NoError(t, err)
	require.Empty(t, parsed.Records)
	require.NotEmpty(t, parsed.Narrative)
	require.NotEmpty(t, parsed.Warnings)
}

func TestParseProseBulletsStayNarrative(t *testing.T) {
	parsed, err := Parse(`Overall assessment:
- Consider diversifying across more asset classes.
- Your technology exposure is concentrated.
- Keep an emergency fund before adding risk.
- TICKER: AAPL, ACTION: BUY, AMOUNT: 100, COMMENTS: ok`, ParseShape{})
	require.NoError(t, err)
	require.Len(t, parsed.Records, 1)
	require.Equal(t, "AAPL", parsed.Records[0].Ticker)
	require.Empty(t, parsed.Warnings)
	require.Contains(t, parsed.Narrative, "Consider diversifying across more asset classes.")
	require.Contains(t, parsed.Narrative, "Your technology exposure is concentrated.")
	require.Contains(t, parsed.Narrative, "Keep an emergency fund before adding risk.")
}

func TestParseFeedbackHeadingAnchored(t *testing.T) {
	t.Run("prose starting with feedback stays narrative", func(t *testing.T) {
		parsed, err := Parse(`Feedback from last quarter suggests patience.
- TICKER: AAPL, ACTION: BUY, AMOUNT: 100, COMMENTS: ok`, ParseShape{})
		require.NoError(t, err)
		require.Empty(t, parsed.Feedback)
		require.Len(t, parsed.Records, 1)
		require.Contains(t, parsed.Narrative, "Feedback from last quarter suggests patience.")
	})

	t.Run("colon form starts the feedback section", func(t *testing.T) {
		parsed, err := Parse(`Narrative.
FEEDBACK: Tell me more about your risk tolerance.`, ParseShape{})
		require.NoError(t, err)
		require.Equal(t, "Tell me more about your risk tolerance.", parsed.Feedback)
	})

	t.Run("markdown heading starts the feedback section", func(t *testing.T) {
		parsed, err := Parse(`Narrative.
## FEEDBACK
Tell me about your horizon.`, ParseShape{})
		require.NoError(t, err)
		require.Equal(t, "Tell me about your horizon.", parsed.Feedback)
	})
}
