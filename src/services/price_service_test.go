package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/wealthhub/backend/src/config"
)

func chartJSON(symbol, currency string, closes string) string {
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {"currency": %q, "symbol": %q},
				"timestamp": [1708905600, 1708992000, 1709078400],
				"indicators": {"quote": [{"close": %s}]}
			}],
			"error": null
		}
	}`, currency, symbol, closes)
}

func priceTestConfig(yahooURL, binanceURL string) *config.AppConfig {
	return &config.AppConfig{
		YahooBaseURL:    yahooURL,
		YahooWarmupURLs: nil, // no warmup against test servers
		BinanceBaseURL:  binanceURL,
		FetchTimeout:    5 * time.Second,
	}
}

func TestFetchBitcoinPrice_YahooPrimary(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/test/getcrumb":
			w.Write([]byte("test-crumb"))
		case "/v8/finance/chart/BTC-EUR":
			w.Write([]byte(chartJSON("BTC-EUR", "EUR", "[null, 40000.123, 42000.567]")))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer yahoo.Close()

	binanceCalled := false
	binance := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		binanceCalled = true
	}))
	defer binance.Close()

	svc := NewPriceService(priceTestConfig(yahoo.URL, binance.URL), nil)
	price, err := svc.FetchBitcoinPrice(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "btc", price.AssetID)
	assert.Equal(t, "Bitcoin", price.AssetName)
	assert.Equal(t, "BTC-EUR", price.Ticker)
	assert.Equal(t, 42000.57, price.Price, "latest close rounded to 2 decimals")
	assert.Equal(t, "EUR", price.Currency)
	assert.Equal(t, "yahoo_finance", price.Source)
	assert.False(t, binanceCalled, "fallback must not run when the primary succeeds")
}

func TestFetchBitcoinPrice_FallsBackToBinance(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer yahoo.Close()

	binance := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCEUR", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol": "BTCEUR", "price": "41234.5678"}`))
	}))
	defer binance.Close()

	svc := NewPriceService(priceTestConfig(yahoo.URL, binance.URL), nil)
	price, err := svc.FetchBitcoinPrice(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 41234.57, price.Price)
	assert.Equal(t, "binance_api", price.Source)
}

func TestFetchBitcoinPrice_AllProvidersFail(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer yahoo.Close()

	binance := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer binance.Close()

	svc := NewPriceService(priceTestConfig(yahoo.URL, binance.URL), nil)
	price, err := svc.FetchBitcoinPrice(context.Background())

	require.Error(t, err)
	assert.Nil(t, price)
	assert.Contains(t, err.Error(), "yahoo_finance")
	assert.Contains(t, err.Error(), "binance_api")
}

func TestFetchMultipleStocks(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/test/getcrumb":
			w.Write([]byte("test-crumb"))
		case "/v8/finance/chart/AAPL":
			w.Write([]byte(chartJSON("AAPL", "USD", "[188.5, 189.984]")))
		case "/v8/finance/chart/MSFT":
			w.Write([]byte(chartJSON("MSFT", "USD", "[410.1, 415.321]")))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer yahoo.Close()

	svc := NewPriceService(priceTestConfig(yahoo.URL, ""), nil)
	prices := svc.FetchMultipleStocks(context.Background(), map[string]StockRef{
		"AAPL": {Name: "Apple", AssetID: "aapl-stock"},
		"MSFT": {Name: "Microsoft", AssetID: "msft-stock"},
		"FAIL": {Name: "Broken", AssetID: "broken"},
	})

	require.Len(t, prices, 2, "failed ticker omitted, no placeholder record")
	assert.Equal(t, "AAPL", prices[0].Ticker)
	assert.Equal(t, "aapl-stock", prices[0].AssetID)
	assert.Equal(t, 189.98, prices[0].Price)
	assert.Equal(t, "USD", prices[0].Currency)
	assert.Equal(t, "yahoo_finance", prices[0].Source)
	assert.Equal(t, "MSFT", prices[1].Ticker)
	assert.Equal(t, 415.32, prices[1].Price)
}

func TestFetchMultipleStocks_EmptyInput(t *testing.T) {
	svc := NewPriceService(priceTestConfig("http://127.0.0.1:0", ""), nil)
	assert.Empty(t, svc.FetchMultipleStocks(context.Background(), nil))
}
