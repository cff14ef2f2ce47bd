package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/mr"

	"advisor-api/pkg/marketdata"
)

// shares derived from a dollar value keep enough precision that
// value ≈ shares*price round-trips within currency precision
const derivedSharesScale = 8

// Enrich joins portfolio inputs with market data. Lookups fan out
// concurrently across distinct tickers and join before prompt construction.
// A failed lookup degrades that asset to AssetType Other with a warning;
// it escalates to ErrAssetUnderspecified only when the asset also has no
// caller-supplied value. Prices are never cached across requests.
func Enrich(ctx context.Context, provider marketdata.Provider, assets []AssetInput, cash decimal.Decimal) ([]EnrichedAsset, PortfolioTotals, []ParseWarning, error) {
	// Validate quantities up front so a bad asset fails before any network
	// lookups run.
	quantities := make([]Quantity, len(assets))
	for i, asset := range assets {
		q, err := asset.ResolveQuantity()
		if err != nil {
			return nil, PortfolioTotals{}, nil, err
		}
		quantities[i] = q
	}

	quotes, warnings := lookupQuotes(ctx, provider, assets)

	enriched := make([]EnrichedAsset, 0, len(assets))
	for i, asset := range assets {
		symbol := canonicalSymbol(asset.Symbol)
		ea := EnrichedAsset{
			Symbol:    symbol,
			Account:   asset.AccountOrDefault(),
			AssetType: marketdata.AssetTypeOther,
		}

		quote := quotes[symbol]
		priced := quote != nil && quote.UnitPrice.Sign() > 0
		if priced {
			ea.UnitPrice = quote.UnitPrice
			ea.AssetType = quote.AssetType
			ea.Sector = quote.Sector
			ea.PriceKnown = true
		}

		q := quantities[i]
		switch {
		case q.Kind == QuantityValue:
			ea.ResolvedValue = q.Amount
			if priced {
				ea.ResolvedShares = q.Amount.DivRound(quote.UnitPrice, derivedSharesScale)
			}
		case priced: // shares given
			ea.ResolvedShares = q.Amount
			ea.ResolvedValue = q.Amount.Mul(quote.UnitPrice)
		default:
			return nil, PortfolioTotals{}, nil, fmt.Errorf(
				"%w: %s: market data unavailable and no value supplied", ErrAssetUnderspecified, symbol)
		}

		enriched = append(enriched, ea)
	}

	return enriched, computeTotals(enriched, cash), warnings, nil
}

// lookupQuotes fetches each distinct ticker once, concurrently. Failures
// are reported as warnings; the asset-level consequences are decided by the
// caller.
func lookupQuotes(ctx context.Context, provider marketdata.Provider, assets []AssetInput) (map[string]*marketdata.Quote, []ParseWarning) {
	distinct := make([]string, 0, len(assets))
	seen := make(map[string]bool, len(assets))
	for _, asset := range assets {
		symbol := canonicalSymbol(asset.Symbol)
		if !seen[symbol] {
			seen[symbol] = true
			distinct = append(distinct, symbol)
		}
	}

	var (
		mu       sync.Mutex
		quotes   = make(map[string]*marketdata.Quote, len(distinct))
		warnings []ParseWarning
	)

	fns := make([]func() error, 0, len(distinct))
	for _, symbol := range distinct {
		symbol := symbol
		fns = append(fns, func() error {
			quote, err := provider.Lookup(ctx, symbol)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, ParseWarning{
					Stage:   "enrich",
					Message: fmt.Sprintf("market data unavailable for %s: %v", symbol, err),
				})
				return nil
			}
			quotes[symbol] = quote
			return nil
		})
	}
	// Workers never return errors; per-ticker failures become warnings.
	_ = mr.Finish(fns...)

	return quotes, warnings
}

func computeTotals(assets []EnrichedAsset, cash decimal.Decimal) PortfolioTotals {
	total := decimal.Zero
	typeSet := make(map[string]bool)
	for _, asset := range assets {
		total = total.Add(asset.ResolvedValue)
		typeSet[string(asset.AssetType)] = true
	}
	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Strings(types)
	return PortfolioTotals{
		TotalValue:          total,
		TotalPortfolioValue: total.Add(cash),
		Cash:                cash,
		AssetCount:          len(assets),
		AssetTypes:          types,
	}
}

func canonicalSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
