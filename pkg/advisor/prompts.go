package advisor

import (
	"fmt"
	"sort"
	"strings"

	"advisor-api/pkg/llm"
)

// PromptTemplate is an immutable named prompt: system message, user message
// skeleton and model parameters. User templates are parsed with
// missingkey=error so an unbound placeholder fails the build instead of
// rendering "<no value>".
type PromptTemplate struct {
	Name          string
	Version       string
	SystemMessage string
	MaxTokens     int
	Temperature   float64

	userTemplate *llm.UserTemplate
}

// Template names.
const (
	TemplateAnalysis        = "portfolio_analysis"
	TemplateRecommendations = "portfolio_recommendations"
	TemplateChat            = "chat"
)

var promptRegistry = map[string]*PromptTemplate{}

func registerTemplate(name, version, system, user string, maxTokens int, temperature float64) {
	tmpl := llm.MustUserTemplate(name, user)
	if maxTokens <= 0 {
		panic(fmt.Sprintf("advisor: prompt template %s: max tokens must be positive", name))
	}
	if temperature < 0 || temperature > 2 {
		panic(fmt.Sprintf("advisor: prompt template %s: temperature out of range", name))
	}
	promptRegistry[name] = &PromptTemplate{
		Name:          name,
		Version:       version,
		SystemMessage: system,
		MaxTokens:     maxTokens,
		Temperature:   temperature,
		userTemplate:  tmpl,
	}
}

// LookupTemplate fetches a registered template by name.
func LookupTemplate(name string) (*PromptTemplate, error) {
	tmpl, ok := promptRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrTemplateNotFound, name, strings.Join(TemplateNames(), ", "))
	}
	return tmpl, nil
}

// TemplateNames lists registered template names in stable order.
func TemplateNames() []string {
	names := make([]string, 0, len(promptRegistry))
	for name := range promptRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderUser executes the user template against vars.
func (t *PromptTemplate) RenderUser(vars map[string]any) (string, error) {
	out, err := t.userTemplate.Render(vars)
	if err != nil {
		return "", &MissingVariableError{Template: t.Name, Cause: err}
	}
	return out, nil
}

// Digest returns the sha256 digest of the user template body, for logs and
// change tracking across versions.
func (t *PromptTemplate) Digest() string { return t.userTemplate.Digest() }

func init() {
	registerTemplate(TemplateAnalysis, "v1",
		"You are a professional financial advisor with expertise in portfolio analysis "+
			"and investment strategy. Provide detailed, actionable insights based on the "+
			"portfolio data provided. Pay special attention to how assets are distributed across "+
			"different account types (e.g., Trading, IRA, 401k) and consider the appropriate "+
			"investment strategies for each account type.",
		analysisUserTemplate, 1000, 0.7)

	registerTemplate(TemplateRecommendations, "v1",
		"You are a professional financial advisor specializing in actionable portfolio recommendations. "+
			"Your task is to provide specific buy, sell, or hold recommendations for each asset in "+
			"the portfolio, plus suggestions for new investments to improve portfolio balance. "+
			"Consider the user's available cash, MONTHLY CASH FLOW, investment goals, and account types when making recommendations. "+
			"Pay attention to how assets are distributed across different accounts (e.g., Trading, IRA, 401k) "+
			"and ensure your recommendations are appropriate for each account type. "+
			"Always provide specific dollar amounts for transactions, not vague quantities. "+
			"Group your recommendations by account type, treating assets without an account designation "+
			"as belonging to a 'Default' account. "+
			"In addition, devise a recurring monthly investment plan that makes strategic use of the user's available monthly cash.",
		recommendationsUserTemplate, 1200, 0.7)

	registerTemplate(TemplateChat, "v1",
		"You are a professional financial advisor. Answer the user's questions about their "+
			"portfolio and investment strategy conversationally. Ground every answer in the "+
			"portfolio details provided and keep responses concise and actionable.",
		chatUserTemplate, 800, 0.7)
}

const analysisUserTemplate = `As a professional financial advisor, analyze the following portfolio and provide detailed insights:

{{.portfolio_summary}}

Please provide:
1. Overall portfolio assessment
2. Risk analysis
3. Diversification evaluation
4. Performance insights
5. Account-specific analysis (if multiple accounts are present)
6. Key strengths and weaknesses

Keep the analysis professional, concise, and actionable. Focus on portfolio balance, risk management, and growth potential.`

const recommendationsUserTemplate = `Based on the portfolio analysis below, provide specific actionable recommendations for each asset in this portfolio.

INVESTMENT GOALS:
{{.investment_goals}}

MONTHLY CASH AVAILABLE FOR INVESTMENT:
{{.monthly_cash}}

CONVERSATION CONTEXT:
{{.chat}}

PORTFOLIO ANALYSIS:
{{.analysis}}

PORTFOLIO DETAILS:
{{.portfolio_summary}}

RESPONSE FORMAT:
You MUST format your response as a structured list of recommendations grouped by account, with each recommendation strictly following this format:

## ACCOUNT: [ACCOUNT NAME]

FOR EXISTING ASSETS:
- TICKER: AAPL, ACTION: BUY, AMOUNT: 2500, ACCOUNT: Trading, COMMENTS: Strong growth potential and undervalued at current price.

FOR NEW INVESTMENTS:
- TICKER: VTI, ACTION: BUY, AMOUNT: 5000, ACCOUNT: IRA, COMMENTS: [NEW ASSET] Adds broad market exposure and diversification.

FOR SELLING ASSETS:
- TICKER: TSLA, ACTION: SELL, AMOUNT: 1500, ACCOUNT: Default, COMMENTS: Overvalued and high volatility risk.

IMPORTANT INSTRUCTIONS:
1. Each recommendation MUST start with a dash and appear on its own line
2. You MUST include the EXACT ticker symbol for each asset (do not leave TICKER blank or use placeholders)
3. For existing assets, use the ticker symbols provided in the portfolio details
4. For new investments, suggest SPECIFIC ticker symbols (not generic asset classes)
5. Use ONLY these ACTION values: BUY, HOLD, or SELL
6. AMOUNT must be a specific dollar amount (e.g., 1000, 2500, 5000) representing the dollar value to buy or sell
7. For SELL actions, the amount should not exceed the current value of the holding
8. For BUY actions, ensure the total recommended purchases do not exceed available cash
9. For HOLD actions, use AMOUNT: 0 (no transaction needed)
10. Include brief COMMENTS limited to one sentence that aligns with the user's investment goals when applicable
11. When recommending NEW investments, ensure they align with the user's stated investment goals and always prefix the COMMENTS with "[NEW ASSET]" to clearly indicate it's a new addition
12. Take into account the user's available cash when suggesting purchases, and stay within those limits
13. Be strategic about dollar amounts - consider portfolio balance, risk management, and diversification
14. Group recommendations by account type with a header "## ACCOUNT: [ACCOUNT NAME]"
15. For assets without an account designation, group them under "## ACCOUNT: Default"
16. Include the ACCOUNT field in each recommendation line to clearly indicate which account it belongs to
17. When assets are in different account types (e.g., Trading, IRA, 401k), consider the appropriate investment strategies for each account type
18. For retirement accounts like IRAs and 401ks, focus on long-term growth and tax advantages
19. For taxable accounts, consider tax efficiency and shorter-term liquidity needs
20. New investment recommendations should be placed under the most appropriate account type

MONTHLY ALLOCATION PLAN:
After the account-based recommendations above, provide a separate section titled "## RECURRING INVESTMENTS (Monthly Allocation)". In that section:
* ONLY list BUY recommendations for how to allocate the {{.monthly_cash}} amount EACH MONTH.
* The combined AMOUNT values in this section MUST NOT EXCEED {{.monthly_cash}}.
* It is acceptable to leave a portion unallocated; in that case, include a line with TICKER: CASH to reflect the amount held in cash, or a treasury ETF (e.g., BIL, SHV) if recommending treasury bills.
* Follow the exact same dash-delimited structured format as other recommendations but omit the ACCOUNT field (assume "Default") unless you specifically want it in another account.

Example recurring investments section (illustrative):

## RECURRING INVESTMENTS (Monthly Allocation)
- TICKER: VOO, ACTION: BUY, AMOUNT: 400, COMMENTS: Low-cost S&P 500 exposure.
- TICKER: ICLN, ACTION: BUY, AMOUNT: 150, COMMENTS: Diversify into clean energy.
- TICKER: CASH, ACTION: BUY, AMOUNT: 250, COMMENTS: Keep cash reserve for future opportunities.

You MUST include this recurring investments section.

AFTER all recommendations and recurring investments, provide a section titled "FEEDBACK:" that contains your overall assessment, rationale, and strategic thinking behind your recommendations. This should include:
1. A summary of the current portfolio's strengths and weaknesses
2. The high-level strategy behind your recommendations
3. How your recommendations align with the user's investment goals
4. Any additional context or considerations the user should be aware of

Limit this feedback to a few paragraphs or less and make it conversational and actionable.`

const chatUserTemplate = `PORTFOLIO DETAILS:
{{.portfolio_summary}}

INVESTMENT GOALS:
{{.investment_goals}}

USER MESSAGE:
{{.chat}}

Respond to the user's message directly. Reference specific holdings when relevant.`
