package types

// AssetPayload is one holding in a request portfolio. Shares and Value are
// decimal strings; at least one must be present for each asset.
type AssetPayload struct {
	Symbol  string `json:"symbol"`
	Shares  string `json:"shares,optional"`
	Value   string `json:"value,optional"`
	Account string `json:"account,optional"`
}

// AnalyzeReq asks for a narrative analysis of a portfolio.
type AnalyzeReq struct {
	Portfolio       []AssetPayload `json:"portfolio"`
	Cash            string         `json:"cash,optional"`
	InvestmentGoals string         `json:"investment_goals,optional"`
	ConversationID  string         `json:"conversation_id,optional"`
	Debug           bool           `json:"debug,optional"`
	UserRef         string         `header:"X-User-Ref,optional"`
}

// RecommendReq asks for actionable buy/sell/hold recommendations.
type RecommendReq struct {
	Portfolio       []AssetPayload `json:"portfolio"`
	Cash            string         `json:"cash,optional"`
	InvestmentGoals string         `json:"investment_goals,optional"`
	Chat            string         `json:"chat,optional"`
	MonthlyCash     string         `json:"monthly_cash,optional"`
	ConversationID  string         `json:"conversation_id,optional"`
	Debug           bool           `json:"debug,optional"`
	UserRef         string         `header:"X-User-Ref,optional"`
}

// ChatReq is a free-form question, optionally grounded in a portfolio.
type ChatReq struct {
	Chat            string         `json:"chat"`
	Portfolio       []AssetPayload `json:"portfolio,optional"`
	Cash            string         `json:"cash,optional"`
	InvestmentGoals string         `json:"investment_goals,optional"`
	ConversationID  string         `json:"conversation_id,optional"`
	Debug           bool           `json:"debug,optional"`
	UserRef         string         `header:"X-User-Ref,optional"`
}

// TickerInfoReq identifies a single instrument.
type TickerInfoReq struct {
	Symbol string `path:"symbol"`
}

// TickerInfoResp is the quote payload for one instrument.
type TickerInfoResp struct {
	Ticker    string `json:"ticker"`
	UnitPrice string `json:"unit_price"`
	AssetType string `json:"asset_type"`
	Sector    string `json:"sector,omitempty"`
	MarketCap string `json:"market_cap,omitempty"`
}
