package marketdata

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// AssetType classifies an instrument at the granularity the advisor cares
// about. Unknown instruments fall back to AssetTypeOther.
type AssetType string

const (
	AssetTypeStock      AssetType = "Stock"
	AssetTypeETF        AssetType = "ETF"
	AssetTypeMutualFund AssetType = "MutualFund"
	AssetTypeCrypto     AssetType = "Crypto"
	AssetTypeIndex      AssetType = "Index"
	AssetTypeCurrency   AssetType = "Currency"
	AssetTypeOther      AssetType = "Other"
)

// ParseAssetType maps a vendor string onto the closed asset type set.
// Anything unrecognized becomes AssetTypeOther.
func ParseAssetType(raw string) AssetType {
	switch AssetType(raw) {
	case AssetTypeStock, AssetTypeETF, AssetTypeMutualFund, AssetTypeCrypto,
		AssetTypeIndex, AssetTypeCurrency, AssetTypeOther:
		return AssetType(raw)
	default:
		return AssetTypeOther
	}
}

// Quote is a point-in-time view of a single instrument.
type Quote struct {
	Ticker    string
	UnitPrice decimal.Decimal
	AssetType AssetType
	Sector    string
	MarketCap decimal.Decimal
}

// ErrQuoteNotFound indicates the provider has no data for the ticker.
var ErrQuoteNotFound = errors.New("marketdata: quote not found")

// Provider exposes instrument lookups for portfolio enrichment.
type Provider interface {
	// Lookup returns the current quote for the ticker. Implementations
	// return ErrQuoteNotFound (possibly wrapped) when the symbol is unknown.
	Lookup(ctx context.Context, ticker string) (*Quote, error)
}
