package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"advisor-api/pkg/llm"
	"advisor-api/pkg/marketdata"
)

// ErrInvalidRequest covers structural request problems: empty portfolio,
// negative cash figures, missing chat text.
var ErrInvalidRequest = errors.New("advisor: invalid request")

// noPriorAnalysis fills the recommendations template when the conversation
// has no assistant turn to quote yet.
const noPriorAnalysis = "No prior analysis available for this portfolio."

// CompletionGateway is the slice of the provider gateway the engine needs.
type CompletionGateway interface {
	Complete(ctx context.Context, req *llm.CompletionRequest, conv *llm.Conversation) (*llm.CompletionResult, error)
}

// Engine orchestrates the advisor pipeline: validate, enrich, resolve
// conversation, build prompt, call the gateway, parse, aggregate, commit.
type Engine struct {
	gateway CompletionGateway
	market  marketdata.Provider
	store   Store
	logger  llm.Logger
}

// EngineOption customises engine construction.
type EngineOption func(*Engine)

// WithEngineLogger injects a custom logger.
func WithEngineLogger(logger llm.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine wires the engine's collaborators.
func NewEngine(gateway CompletionGateway, market marketdata.Provider, store Store, opts ...EngineOption) (*Engine, error) {
	if gateway == nil {
		return nil, fmt.Errorf("advisor: gateway is required")
	}
	if market == nil {
		return nil, fmt.Errorf("advisor: market data provider is required")
	}
	if store == nil {
		store = NewMemoryStore()
	}
	e := &Engine{
		gateway: gateway,
		market:  market,
		store:   store,
		logger:  llm.NewLogger("info"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// AnalyzeRequest carries the inputs shared by the analyze operation.
type AnalyzeRequest struct {
	Portfolio       []AssetInput
	Cash            decimal.Decimal
	InvestmentGoals string
	ConversationID  *uuid.UUID
	UserRef         string
	Debug           bool
}

// RecommendRequest extends the analyze inputs with conversational context
// and a monthly contribution for the recurring plan.
type RecommendRequest struct {
	AnalyzeRequest
	Chat        string
	MonthlyCash decimal.Decimal
}

// ChatRequest is a free-form question about the portfolio.
type ChatRequest struct {
	Portfolio       []AssetInput
	Cash            decimal.Decimal
	InvestmentGoals string
	Chat            string
	ConversationID  *uuid.UUID
	UserRef         string
	Debug           bool
}

// Analyze produces a narrative portfolio analysis.
func (e *Engine) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalysisResult, error) {
	if err := validatePortfolioRequest(req.Portfolio, req.Cash); err != nil {
		return nil, err
	}

	enriched, totals, warnings, err := Enrich(ctx, e.market, req.Portfolio, req.Cash)
	if err != nil {
		return nil, err
	}

	state, err := e.store.Resolve(ctx, req.ConversationID, req.UserRef)
	if err != nil {
		return nil, err
	}

	summary := FormatPortfolioSummary(enriched, totals, req.InvestmentGoals)
	messages, tmpl, err := Build(TemplateAnalysis, map[string]any{
		"portfolio_summary": summary,
	})
	if err != nil {
		return nil, err
	}

	completion, trace, err := e.complete(ctx, tmpl, messages, state)
	if err != nil {
		return nil, err
	}

	parsed, err := Parse(completion.Text, ParseShape{})
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, parsed.Warnings...)

	if err := e.commitTurn(ctx, state, messages, completion); err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		PortfolioTotals: totals,
		AnalysisText:    completion.Text,
		ConversationID:  state.ID,
		Warnings:        warnings,
	}
	if req.Debug {
		result.Trace = trace.Entries()
	}
	return result, nil
}

// Recommend produces structured buy/sell/hold recommendations plus a
// recurring monthly plan when MonthlyCash is positive.
func (e *Engine) Recommend(ctx context.Context, req *RecommendRequest) (*RecommendationResult, error) {
	if err := validatePortfolioRequest(req.Portfolio, req.Cash); err != nil {
		return nil, err
	}
	if req.MonthlyCash.Sign() < 0 {
		return nil, fmt.Errorf("%w: monthly cash cannot be negative", ErrInvalidRequest)
	}

	enriched, totals, warnings, err := Enrich(ctx, e.market, req.Portfolio, req.Cash)
	if err != nil {
		return nil, err
	}

	state, err := e.store.Resolve(ctx, req.ConversationID, req.UserRef)
	if err != nil {
		return nil, err
	}

	summary := FormatPortfolioSummary(enriched, totals, req.InvestmentGoals)
	messages, tmpl, err := Build(TemplateRecommendations, map[string]any{
		"portfolio_summary": summary,
		"analysis":          latestAssistantText(state, noPriorAnalysis),
		"investment_goals":  defaultText(req.InvestmentGoals, "Not specified"),
		"chat":              defaultText(req.Chat, "None"),
		"monthly_cash":      formatUSD(req.MonthlyCash),
	})
	if err != nil {
		return nil, err
	}

	completion, trace, err := e.complete(ctx, tmpl, messages, state)
	if err != nil {
		return nil, err
	}

	parsed, err := Parse(completion.Text, ParseShape{
		ExpectRecords: true,
		KnownTickers:  tickerSet(enriched),
	})
	if err != nil {
		return nil, err
	}

	if err := e.commitTurn(ctx, state, messages, completion); err != nil {
		return nil, err
	}

	result := Aggregate(parsed, accountSet(enriched))
	result.PortfolioTotals = totals
	result.ConversationID = state.ID
	result.Warnings = append(warnings, result.Warnings...)
	if req.Debug {
		result.Trace = trace.Entries()
	}
	return result, nil
}

// Chat answers a free-form question in the context of the portfolio.
func (e *Engine) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if strings.TrimSpace(req.Chat) == "" {
		return nil, fmt.Errorf("%w: chat text is required", ErrInvalidRequest)
	}
	if req.Cash.Sign() < 0 {
		return nil, fmt.Errorf("%w: cash cannot be negative", ErrInvalidRequest)
	}

	var (
		enriched []EnrichedAsset
		totals   PortfolioTotals
	)
	if len(req.Portfolio) > 0 {
		var err error
		enriched, totals, _, err = Enrich(ctx, e.market, req.Portfolio, req.Cash)
		if err != nil {
			return nil, err
		}
	} else {
		totals = computeTotals(nil, req.Cash)
	}

	state, err := e.store.Resolve(ctx, req.ConversationID, req.UserRef)
	if err != nil {
		return nil, err
	}

	messages, tmpl, err := Build(TemplateChat, map[string]any{
		"portfolio_summary": FormatPortfolioSummary(enriched, totals, ""),
		"investment_goals":  defaultText(req.InvestmentGoals, "Not specified"),
		"chat":              req.Chat,
	})
	if err != nil {
		return nil, err
	}

	completion, trace, err := e.complete(ctx, tmpl, messages, state)
	if err != nil {
		return nil, err
	}

	if err := e.commitTurn(ctx, state, messages, completion); err != nil {
		return nil, err
	}

	result := &ChatResult{
		Reply:          completion.Text,
		ConversationID: state.ID,
	}
	if req.Debug {
		result.Trace = trace.Entries()
	}
	return result, nil
}

func (e *Engine) complete(ctx context.Context, tmpl *PromptTemplate, messages []llm.Message, state *ConversationState) (*llm.CompletionResult, *llm.Trace, error) {
	trace := llm.NewTrace()
	completion, err := e.gateway.Complete(ctx, &llm.CompletionRequest{
		Messages:    messages,
		MaxTokens:   tmpl.MaxTokens,
		Temperature: tmpl.Temperature,
		Category:    tmpl.Name,
		Trace:       trace,
	}, &llm.Conversation{
		ThreadRef: state.ProviderThreadRef,
		History:   state.MessageHistory,
	})
	if err != nil {
		return nil, nil, err
	}
	return completion, trace, nil
}

// commitTurn appends the new user message and the assistant reply to the
// conversation.
func (e *Engine) commitTurn(ctx context.Context, state *ConversationState, messages []llm.Message, completion *llm.CompletionResult) error {
	user := messages[len(messages)-1]
	err := e.store.Commit(ctx, state.ID, Turn{
		User:              user,
		Assistant:         llm.Message{Role: llm.RoleAssistant, Content: completion.Text},
		ProviderThreadRef: completion.ThreadRef,
	})
	if err != nil {
		e.logger.Error(ctx, err, llm.Fields{
			"event":           "conversation_commit_failed",
			"conversation_id": state.ID.String(),
		})
	}
	return err
}

func validatePortfolioRequest(portfolio []AssetInput, cash decimal.Decimal) error {
	if len(portfolio) == 0 {
		return fmt.Errorf("%w: portfolio is required", ErrInvalidRequest)
	}
	if cash.Sign() < 0 {
		return fmt.Errorf("%w: cash cannot be negative", ErrInvalidRequest)
	}
	return nil
}

// latestAssistantText returns the conversation's most recent assistant
// message, falling back when none exists.
func latestAssistantText(state *ConversationState, fallback string) string {
	for i := len(state.MessageHistory) - 1; i >= 0; i-- {
		if state.MessageHistory[i].Role == llm.RoleAssistant {
			return state.MessageHistory[i].Content
		}
	}
	return fallback
}

func defaultText(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func tickerSet(assets []EnrichedAsset) map[string]bool {
	set := make(map[string]bool, len(assets))
	for _, asset := range assets {
		set[asset.Symbol] = true
	}
	return set
}

func accountSet(assets []EnrichedAsset) map[string]bool {
	set := map[string]bool{DefaultAccount: true}
	for _, asset := range assets {
		set[asset.Account] = true
	}
	return set
}
