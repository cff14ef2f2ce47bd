package advisor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"advisor-api/pkg/llm"
	"advisor-api/pkg/marketdata"
)

// DefaultAccount groups assets and recommendations that carry no explicit
// account designation.
const DefaultAccount = "Default"

// Action is a recommendation verb. The set is closed; anything else the
// model emits is skipped with a warning.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// ParseAction maps a raw keyword to an Action, case-insensitively.
func ParseAction(raw string) (Action, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(ActionBuy):
		return ActionBuy, true
	case string(ActionSell):
		return ActionSell, true
	case string(ActionHold):
		return ActionHold, true
	}
	return "", false
}

// QuantityKind discriminates how an asset's size was specified.
type QuantityKind int

const (
	QuantityShares QuantityKind = iota
	QuantityValue
)

// Quantity is the resolved size of an asset input: either a share count or
// a dollar value, decided once at ingestion.
type Quantity struct {
	Kind   QuantityKind
	Amount decimal.Decimal
}

// AssetInput is one caller-supplied portfolio position.
type AssetInput struct {
	Symbol  string           `json:"symbol"`
	Shares  *decimal.Decimal `json:"shares,omitempty"`
	Value   *decimal.Decimal `json:"value,omitempty"`
	Account string           `json:"account,omitempty"`
}

// ResolveQuantity applies the either-or contract: value wins when both are
// present, neither present fails with ErrAssetUnderspecified.
func (a AssetInput) ResolveQuantity() (Quantity, error) {
	symbol := strings.TrimSpace(a.Symbol)
	if symbol == "" {
		return Quantity{}, fmt.Errorf("%w: symbol is required", ErrAssetUnderspecified)
	}
	switch {
	case a.Value != nil:
		if a.Value.Sign() < 0 {
			return Quantity{}, fmt.Errorf("%w: %s: value cannot be negative", ErrAssetUnderspecified, symbol)
		}
		return Quantity{Kind: QuantityValue, Amount: *a.Value}, nil
	case a.Shares != nil:
		if a.Shares.Sign() < 0 {
			return Quantity{}, fmt.Errorf("%w: %s: shares cannot be negative", ErrAssetUnderspecified, symbol)
		}
		return Quantity{Kind: QuantityShares, Amount: *a.Shares}, nil
	default:
		return Quantity{}, fmt.Errorf("%w: %s: neither shares nor value supplied", ErrAssetUnderspecified, symbol)
	}
}

// AccountOrDefault returns the asset's account, defaulting when blank.
func (a AssetInput) AccountOrDefault() string {
	if acct := strings.TrimSpace(a.Account); acct != "" {
		return acct
	}
	return DefaultAccount
}

// EnrichedAsset is an AssetInput joined with market data and resolved sizes.
type EnrichedAsset struct {
	Symbol         string
	Account        string
	UnitPrice      decimal.Decimal
	ResolvedShares decimal.Decimal
	ResolvedValue  decimal.Decimal
	AssetType      marketdata.AssetType
	Sector         string
	PriceKnown     bool
}

// RecommendationRecord is one structured recommendation extracted from the
// model's output.
type RecommendationRecord struct {
	Ticker      string          `json:"ticker"`
	Action      Action          `json:"action"`
	Amount      decimal.Decimal `json:"amount"`
	Account     string          `json:"account"`
	Comments    string          `json:"comments"`
	IsRecurring bool            `json:"is_recurring"`
}

// PortfolioTotals carries aggregate figures rendered into prompts and
// returned on every response.
type PortfolioTotals struct {
	TotalValue          decimal.Decimal `json:"total_value"`
	TotalPortfolioValue decimal.Decimal `json:"total_portfolio_value"`
	Cash                decimal.Decimal `json:"cash"`
	AssetCount          int             `json:"asset_count"`
	AssetTypes          []string        `json:"asset_types"`
}

// AnalysisResult is the response aggregate for the analyze operation.
type AnalysisResult struct {
	PortfolioTotals
	AnalysisText   string           `json:"analysis"`
	ConversationID uuid.UUID        `json:"conversation_id"`
	Warnings       []ParseWarning   `json:"warnings,omitempty"`
	Trace          []llm.TraceEntry `json:"trace,omitempty"`
}

// RecommendationResult is the response aggregate for the recommend operation.
type RecommendationResult struct {
	PortfolioTotals
	Recommendations          []*RecommendationRecord            `json:"recommendations"`
	RecommendationsByAccount map[string][]*RecommendationRecord `json:"recommendations_by_account"`
	RecurringInvestments     []*RecommendationRecord            `json:"recurring_investments,omitempty"`
	Feedback                 string                             `json:"feedback,omitempty"`
	AnalysisText             string                             `json:"analysis,omitempty"`
	ConversationID           uuid.UUID                          `json:"conversation_id"`
	Warnings                 []ParseWarning                     `json:"warnings,omitempty"`
	Trace                    []llm.TraceEntry                   `json:"trace,omitempty"`
}

// ChatResult is the response aggregate for the free-form chat operation.
type ChatResult struct {
	Reply          string           `json:"reply"`
	ConversationID uuid.UUID        `json:"conversation_id"`
	Trace          []llm.TraceEntry `json:"trace,omitempty"`
}

// ParsedOutput is the parser's best-effort structure over raw model text.
type ParsedOutput struct {
	Narrative            string
	Records              []*RecommendationRecord
	RecurringInvestments []*RecommendationRecord
	Feedback             string
	Warnings             []ParseWarning
}
