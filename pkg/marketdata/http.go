package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultHTTPTimeout = 8 * time.Second

// HTTPProvider fetches quotes from a JSON quote endpoint:
// GET {base_url}/quote?symbol=TICKER → {"ticker","unit_price","asset_type","sector","market_cap"}.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func init() {
	RegisterProvider("http", func(name string, cfg *ProviderConfig) (Provider, error) {
		return NewHTTPProvider(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	})
}

// NewHTTPProvider constructs an HTTP-backed provider.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) (*HTTPProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("http provider: base_url is required")
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// point the provider at an httptest server transport.
func (p *HTTPProvider) WithHTTPClient(client *http.Client) *HTTPProvider {
	if client != nil {
		p.client = client
	}
	return p
}

type wireQuote struct {
	Ticker    string `json:"ticker"`
	UnitPrice string `json:"unit_price"`
	AssetType string `json:"asset_type"`
	Sector    string `json:"sector"`
	MarketCap string `json:"market_cap"`
}

// Lookup implements Provider.
func (p *HTTPProvider) Lookup(ctx context.Context, ticker string) (*Quote, error) {
	ticker = canonicalTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("http provider: ticker cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/quote?symbol=%s", p.baseURL, url.QueryEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("http provider: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http provider: request %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("http provider: %w: %s", ErrQuoteNotFound, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("http provider: %s returned %d: %s", ticker, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var wire wireQuote
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("http provider: decode quote %s: %w", ticker, err)
	}
	return wire.toQuote(ticker)
}

func (w wireQuote) toQuote(fallbackTicker string) (*Quote, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(w.UnitPrice))
	if err != nil {
		return nil, fmt.Errorf("http provider: quote %s: invalid unit_price %q: %w", fallbackTicker, w.UnitPrice, err)
	}
	q := &Quote{
		Ticker:    canonicalTicker(w.Ticker),
		UnitPrice: price,
		AssetType: AssetTypeOther,
		Sector:    strings.TrimSpace(w.Sector),
	}
	if q.Ticker == "" {
		q.Ticker = fallbackTicker
	}
	if t := strings.TrimSpace(w.AssetType); t != "" {
		q.AssetType = ParseAssetType(t)
	}
	if mc := strings.TrimSpace(w.MarketCap); mc != "" {
		v, err := decimal.NewFromString(mc)
		if err != nil {
			return nil, fmt.Errorf("http provider: quote %s: invalid market_cap %q: %w", fallbackTicker, w.MarketCap, err)
		}
		q.MarketCap = v
	}
	return q, nil
}
