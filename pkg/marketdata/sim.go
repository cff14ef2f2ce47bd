package marketdata

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// SimQuote is the yaml shape for seeding the sim provider.
type SimQuote struct {
	Ticker    string `yaml:"ticker"`
	UnitPrice string `yaml:"unit_price"`
	AssetType string `yaml:"asset_type"`
	Sector    string `yaml:"sector"`
	MarketCap string `yaml:"market_cap"`
}

// SimProvider serves quotes from a static in-memory table. It backs local
// development and tests where no market data vendor is reachable.
type SimProvider struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
}

func init() {
	RegisterProvider("sim", func(name string, cfg *ProviderConfig) (Provider, error) {
		return NewSimProvider(cfg.Quotes)
	})
}

// NewSimProvider builds a sim provider from the supplied seed quotes. An
// empty seed yields the built-in defaults.
func NewSimProvider(seed []SimQuote) (*SimProvider, error) {
	p := &SimProvider{quotes: make(map[string]*Quote)}
	if len(seed) == 0 {
		seed = defaultSimQuotes
	}
	for _, sq := range seed {
		q, err := sq.toQuote()
		if err != nil {
			return nil, err
		}
		p.quotes[q.Ticker] = q
	}
	return p, nil
}

func (sq SimQuote) toQuote() (*Quote, error) {
	ticker := canonicalTicker(sq.Ticker)
	if ticker == "" {
		return nil, fmt.Errorf("sim: quote ticker cannot be empty")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(sq.UnitPrice))
	if err != nil {
		return nil, fmt.Errorf("sim: quote %s: invalid unit_price %q: %w", ticker, sq.UnitPrice, err)
	}
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("sim: quote %s: unit_price must be positive", ticker)
	}
	q := &Quote{
		Ticker:    ticker,
		UnitPrice: price,
		AssetType: AssetTypeOther,
		Sector:    strings.TrimSpace(sq.Sector),
	}
	if t := strings.TrimSpace(sq.AssetType); t != "" {
		q.AssetType = ParseAssetType(t)
	}
	if mc := strings.TrimSpace(sq.MarketCap); mc != "" {
		v, err := decimal.NewFromString(mc)
		if err != nil {
			return nil, fmt.Errorf("sim: quote %s: invalid market_cap %q: %w", ticker, sq.MarketCap, err)
		}
		q.MarketCap = v
	}
	return q, nil
}

// SetQuote inserts or replaces a quote. Tests use this to stage scenarios.
func (p *SimProvider) SetQuote(q Quote) {
	q.Ticker = canonicalTicker(q.Ticker)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes[q.Ticker] = &q
}

// Lookup implements Provider.
func (p *SimProvider) Lookup(ctx context.Context, ticker string) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	q, ok := p.quotes[canonicalTicker(ticker)]
	if !ok {
		return nil, fmt.Errorf("sim: %w: %s", ErrQuoteNotFound, ticker)
	}
	out := *q
	return &out, nil
}

func canonicalTicker(t string) string { return strings.ToUpper(strings.TrimSpace(t)) }

var defaultSimQuotes = []SimQuote{
	{Ticker: "AAPL", UnitPrice: "150.00", AssetType: "Stock", Sector: "Technology", MarketCap: "2400000000000"},
	{Ticker: "MSFT", UnitPrice: "410.00", AssetType: "Stock", Sector: "Technology", MarketCap: "3100000000000"},
	{Ticker: "GOOG", UnitPrice: "172.00", AssetType: "Stock", Sector: "Communication Services", MarketCap: "2100000000000"},
	{Ticker: "VOO", UnitPrice: "520.00", AssetType: "ETF", Sector: "Broad Market"},
	{Ticker: "VTI", UnitPrice: "280.00", AssetType: "ETF", Sector: "Broad Market"},
	{Ticker: "BND", UnitPrice: "73.50", AssetType: "ETF", Sector: "Fixed Income"},
	{Ticker: "VTSAX", UnitPrice: "132.00", AssetType: "MutualFund", Sector: "Broad Market"},
	{Ticker: "SPX", UnitPrice: "5600.00", AssetType: "Index", Sector: "Broad Market"},
	{Ticker: "EUR", UnitPrice: "1.09", AssetType: "Currency", Sector: "Foreign Exchange"},
	{Ticker: "BTC", UnitPrice: "62000.00", AssetType: "Crypto", Sector: "Digital Assets"},
	{Ticker: "ETH", UnitPrice: "2600.00", AssetType: "Crypto", Sector: "Digital Assets"},
}
