package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"advisor-api/pkg/llm"
)

// Build renders a registered template into a message list ready for the
// gateway. Pure: identical inputs produce identical messages.
func Build(templateName string, vars map[string]any) ([]llm.Message, *PromptTemplate, error) {
	tmpl, err := LookupTemplate(templateName)
	if err != nil {
		return nil, nil, err
	}
	user, err := tmpl.RenderUser(vars)
	if err != nil {
		return nil, nil, err
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: tmpl.SystemMessage},
		{Role: llm.RoleUser, Content: user},
	}, tmpl, nil
}

// FormatPortfolioSummary renders enriched assets and totals into the stable
// line-oriented block injected into prompts. Assets are sorted by ticker so
// identical portfolios produce identical prompts regardless of input order.
func FormatPortfolioSummary(assets []EnrichedAsset, totals PortfolioTotals, investmentGoals string) string {
	var sb strings.Builder
	sb.WriteString("Portfolio Summary:\n")
	fmt.Fprintf(&sb, "- Total Portfolio Value: %s\n", formatUSD(totals.TotalPortfolioValue))
	fmt.Fprintf(&sb, "- Investment Assets Value: %s\n", formatUSD(totals.TotalValue))
	fmt.Fprintf(&sb, "- Available Cash: %s\n", formatUSD(totals.Cash))
	fmt.Fprintf(&sb, "- Number of Assets: %d\n", totals.AssetCount)
	if len(totals.AssetTypes) > 0 {
		fmt.Fprintf(&sb, "- Asset Types: %s\n", strings.Join(totals.AssetTypes, ", "))
	} else {
		sb.WriteString("- Asset Types: Not specified\n")
	}

	if goals := strings.TrimSpace(investmentGoals); goals != "" {
		sb.WriteString("\nInvestment Goals:\n")
		sb.WriteString(goals)
		sb.WriteString("\n")
	}

	sb.WriteString("\nDetailed Holdings:")

	sorted := make([]EnrichedAsset, len(assets))
	copy(sorted, assets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Symbol != sorted[j].Symbol {
			return sorted[i].Symbol < sorted[j].Symbol
		}
		return sorted[i].Account < sorted[j].Account
	})

	for _, asset := range sorted {
		accountInfo := ""
		if asset.Account != "" {
			accountInfo = " | Account: " + asset.Account
		}
		price := "N/A"
		shares := "N/A"
		if asset.PriceKnown {
			price = formatUSD(asset.UnitPrice)
			shares = asset.ResolvedShares.String()
		}
		fmt.Fprintf(&sb, "\n- TICKER: %s | Type: %s | Value: %s%s\n  Shares: %s | Current Price: %s",
			asset.Symbol, asset.AssetType, formatUSD(asset.ResolvedValue), accountInfo, shares, price)
	}

	return sb.String()
}

// formatUSD renders a decimal as "$1,234.56".
func formatUSD(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	whole := parts[0]

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	out := "$" + grouped.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}
