package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestHTTPProviderLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "MSFT", r.URL.Query().Get("symbol"))
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ticker":"MSFT","unit_price":"410.25","asset_type":"Stock","sector":"Technology","market_cap":"3100000000000"}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, "test-key", 2*time.Second)
	require.NoError(t, err)

	q, err := p.Lookup(context.Background(), "msft")
	require.NoError(t, err)
	require.Equal(t, "MSFT", q.Ticker)
	require.True(t, q.UnitPrice.Equal(decimal.RequireFromString("410.25")))
	require.Equal(t, AssetTypeStock, q.AssetType)
	require.Equal(t, "Technology", q.Sector)
}

func TestHTTPProviderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, "", 0)
	require.NoError(t, err)

	_, err = p.Lookup(context.Background(), "ZZZZ")
	require.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestHTTPProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, "", 0)
	require.NoError(t, err)

	_, err = p.Lookup(context.Background(), "AAPL")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestHTTPProviderBadPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ticker":"AAPL","unit_price":"many dollars"}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(srv.URL, "", 0)
	require.NoError(t, err)

	_, err = p.Lookup(context.Background(), "AAPL")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid unit_price")
}

func TestHTTPProviderRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPProvider("", "", 0)
	require.Error(t, err)
}
