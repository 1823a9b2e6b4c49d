package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"strings"
	"sync"

	"github.com/username/wealthhub/backend/src/config"
	"github.com/username/wealthhub/backend/src/logger"
	"github.com/username/wealthhub/backend/src/models"
	"github.com/username/wealthhub/backend/src/utils"
	"golang.org/x/net/publicsuffix"
)

const (
	sourceYahoo   = "yahoo_finance"
	sourceBinance = "binance_api"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// --- API Response Structs ---

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

type binanceTickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// --- Service Implementation ---

type priceServiceImpl struct {
	cfg        *config.AppConfig
	db         *sql.DB // per-day price cache, may be nil
	httpClient http.Client

	mu            sync.Mutex
	isInitialized bool
	crumb         string
}

// NewPriceService builds the Yahoo/Binance price source. db is the local
// price-cache database and may be nil to disable caching.
func NewPriceService(cfg *config.AppConfig, db *sql.DB) PriceService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &priceServiceImpl{
		cfg: cfg,
		db:  db,
		httpClient: http.Client{
			Jar:     jar,
			Timeout: cfg.FetchTimeout,
		},
	}
}

// initializeYahooSession warms up the Yahoo cookie jar and fetches the crumb
// token required by the chart API. Failures leave the crumb empty; chart
// requests are still attempted without it.
func (s *priceServiceImpl) initializeYahooSession(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isInitialized && s.crumb != "" {
		return
	}

	logger.L.Info("Initializing Yahoo Finance session and fetching crumb...")

	for _, warmupURL := range s.cfg.YahooWarmupURLs {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, warmupURL, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", browserUserAgent)
		resp, err := s.httpClient.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.YahooBaseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", browserUserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.L.Warn("Failed to fetch Yahoo crumb", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		s.crumb = strings.TrimSpace(string(bodyBytes))
		s.isInitialized = true
		logger.L.Info("Yahoo session initialized successfully")
	} else {
		logger.L.Warn("Failed to fetch Yahoo crumb", "status", resp.Status)
	}
}

func (s *priceServiceImpl) ensureSession(ctx context.Context) {
	s.mu.Lock()
	needsInit := !s.isInitialized || s.crumb == ""
	s.mu.Unlock()

	if needsInit {
		s.initializeYahooSession(ctx)
	}
}

func (s *priceServiceImpl) currentCrumb() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crumb
}

func (s *priceServiceImpl) invalidateSession() {
	s.mu.Lock()
	s.isInitialized = false
	s.crumb = ""
	s.mu.Unlock()
}

// --- Crypto ---

// FetchBitcoinPrice tries an ordered chain of providers for the BTC-EUR pair.
// Each attempt is isolated: a failure is recorded and the next provider runs.
func (s *priceServiceImpl) FetchBitcoinPrice(ctx context.Context) (*models.PriceData, error) {
	today := utils.FormatDate(utils.Now())
	if cached, err := models.GetPricesBySymbolsAndDate(s.db, []string{"BTC-EUR"}, today); err == nil {
		if p, ok := cached["BTC-EUR"]; ok {
			logger.L.Debug("Bitcoin price served from daily cache", "price", p.Price)
			return bitcoinPriceData(p.Price, p.Source), nil
		}
	}

	attempts := []struct {
		name string
		fn   func(context.Context) (*models.PriceData, error)
	}{
		{sourceYahoo, s.bitcoinFromYahoo},
		{sourceBinance, s.bitcoinFromBinance},
	}

	var reasons []string
	for _, attempt := range attempts {
		price, err := attempt.fn(ctx)
		if err != nil {
			logger.L.Warn("Bitcoin price attempt failed", "provider", attempt.name, "error", err)
			reasons = append(reasons, fmt.Sprintf("%s: %v", attempt.name, err))
			continue
		}
		models.InsertOrUpdatePrice(s.db, models.DailyPrice{
			Symbol:   "BTC-EUR",
			Date:     today,
			Price:    price.Price,
			Currency: price.Currency,
			Source:   price.Source,
		})
		return price, nil
	}
	return nil, fmt.Errorf("all providers failed: %s", strings.Join(reasons, "; "))
}

func (s *priceServiceImpl) bitcoinFromYahoo(ctx context.Context) (*models.PriceData, error) {
	closePrice, _, err := s.latestClose(ctx, "BTC-EUR")
	if err != nil {
		return nil, err
	}
	return bitcoinPriceData(utils.Round(closePrice, 2), sourceYahoo), nil
}

func (s *priceServiceImpl) bitcoinFromBinance(ctx context.Context) (*models.PriceData, error) {
	url := s.cfg.BinanceBaseURL + "/api/v3/ticker/price?symbol=BTCEUR"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Binance ticker API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance ticker API returned non-OK status %d", resp.StatusCode)
	}
	var data binanceTickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode Binance response: %w", err)
	}
	var price float64
	if _, err := fmt.Sscanf(data.Price, "%f", &price); err != nil || price <= 0 {
		return nil, fmt.Errorf("unparsable Binance price %q", data.Price)
	}
	return bitcoinPriceData(utils.Round(price, 2), sourceBinance), nil
}

func bitcoinPriceData(price float64, source string) *models.PriceData {
	return &models.PriceData{
		AssetID:   "btc",
		AssetName: "Bitcoin",
		Ticker:    "BTC-EUR",
		Price:     price,
		Currency:  "EUR",
		FetchedAt: utils.FormatDateTimeISO(utils.Now()),
		Source:    source,
	}
}

// --- Stocks ---

// FetchMultipleStocks fetches the latest close for each ticker independently.
// Symbols whose fetch fails or returns empty data are omitted from the result.
func (s *priceServiceImpl) FetchMultipleStocks(ctx context.Context, tickers map[string]StockRef) []models.PriceData {
	if len(tickers) == 0 {
		return nil
	}

	today := utils.FormatDate(utils.Now())
	symbols := make([]string, 0, len(tickers))
	for ticker := range tickers {
		symbols = append(symbols, ticker)
	}
	sort.Strings(symbols) // deterministic result order

	cached, err := models.GetPricesBySymbolsAndDate(s.db, symbols, today)
	if err != nil {
		logger.L.Error("Failed to get daily prices from cache", "error", err)
		cached = map[string]models.DailyPrice{}
	}

	var prices []models.PriceData
	for _, ticker := range symbols {
		ref := tickers[ticker]

		if p, ok := cached[ticker]; ok {
			prices = append(prices, stockPriceData(ticker, ref, p.Price, p.Currency))
			continue
		}

		closePrice, currency, err := s.latestClose(ctx, ticker)
		if err != nil {
			logger.L.Warn("Could not get price for ticker", "ticker", ticker, "error", err)
			continue
		}
		rounded := utils.Round(closePrice, 2)
		models.InsertOrUpdatePrice(s.db, models.DailyPrice{
			Symbol:   ticker,
			Date:     today,
			Price:    rounded,
			Currency: currency,
			Source:   sourceYahoo,
		})
		prices = append(prices, stockPriceData(ticker, ref, rounded, currency))
	}
	return prices
}

func stockPriceData(ticker string, ref StockRef, price float64, currency string) models.PriceData {
	if currency == "" {
		currency = "EUR"
	}
	return models.PriceData{
		AssetID:   ref.AssetID,
		AssetName: ref.Name,
		Ticker:    ticker,
		Price:     price,
		Currency:  currency,
		FetchedAt: utils.FormatDateTimeISO(utils.Now()),
		Source:    sourceYahoo,
	}
}

// latestClose requests the last five calendar days of daily history for a
// symbol and returns the most recent non-null close. Five days tolerates
// weekends and market holidays at the period boundary.
func (s *priceServiceImpl) latestClose(ctx context.Context, symbol string) (float64, string, error) {
	s.ensureSession(ctx)

	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d&crumb=%s",
		s.cfg.YahooBaseURL, symbol, s.currentCrumb())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chartURL, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("failed to call Yahoo chart API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		s.invalidateSession()
		return 0, "", fmt.Errorf("status 401 (Unauthorized) - crumb invalid")
	}
	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("yahoo chart API returned non-OK status %d", resp.StatusCode)
	}
	var chartData yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartData); err != nil {
		return 0, "", fmt.Errorf("failed to decode Yahoo chart response: %w", err)
	}
	if chartData.Chart.Error != nil {
		return 0, "", fmt.Errorf("yahoo chart API returned an error: %v", chartData.Chart.Error)
	}
	if len(chartData.Chart.Result) == 0 {
		return 0, "", fmt.Errorf("no chart data found for %s", symbol)
	}
	result := chartData.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return 0, "", fmt.Errorf("no quote data found for %s", symbol)
	}
	closes := result.Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] > 0 {
			return closes[i], result.Meta.Currency, nil
		}
	}
	return 0, "", fmt.Errorf("no usable close price for %s", symbol)
}
