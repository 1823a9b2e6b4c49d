package services

import (
	"context"
	"fmt"
	"time"

	"github.com/username/wealthhub/backend/src/config"
	"github.com/username/wealthhub/backend/src/logger"
	"github.com/username/wealthhub/backend/src/models"
	"github.com/username/wealthhub/backend/src/utils"
)

type fetchServiceImpl struct {
	cfg    *config.AppConfig
	prices PriceService
	funds  FundService
	sheets SheetService
}

// NewFetchService wires the price sources and the store into the month-fetch
// orchestrator.
func NewFetchService(cfg *config.AppConfig, prices PriceService, funds FundService, sheets SheetService) FetchService {
	return &fetchServiceImpl{
		cfg:    cfg,
		prices: prices,
		funds:  funds,
		sheets: sheets,
	}
}

// FetchMonth fetches prices for every classified asset for the given period.
// Provider failures are collected as error strings, never raised; persistence
// is best-effort and cannot fail the fetch.
func (s *fetchServiceImpl) FetchMonth(ctx context.Context, year, month int) (*models.FetchMonthResponse, error) {
	if !utils.IsValidPeriod(year, month) {
		return nil, ErrInvalidPeriod
	}

	lastBusinessDay := utils.LastBusinessDay(year, time.Month(month))
	logger.L.Info("Fetch-month request", "year", year, "month", month,
		"lastBusinessDay", utils.FormatDate(lastBusinessDay))

	assets, err := s.sheets.LoadAssets(ctx)
	if err != nil {
		logger.L.Warn("Asset load failed, using sample assets", "error", err)
		assets = SampleAssets()
	}
	logger.L.Info("Loaded assets", "count", len(assets))

	groups := ClassifyAssets(assets)
	logger.L.Info("Classified assets",
		"crypto", len(groups.Crypto), "funds", len(groups.Funds), "stocks", len(groups.Stocks))

	var prices []models.PriceData
	var errs []string

	// Crypto first, then funds in asset-list order, then stocks: aggregation
	// order is fixed so the response is deterministic.
	if len(groups.Crypto) > 0 {
		btc, err := s.prices.FetchBitcoinPrice(ctx)
		if err != nil {
			logger.L.Warn("Bitcoin fetch failed", "error", err)
			errs = append(errs, "Failed to fetch Bitcoin price")
		} else {
			prices = append(prices, *btc)
		}
	}

	for _, fund := range groups.Funds {
		price, err := s.funds.FetchFundPrice(ctx, fund.ISIN, fund.Name, fund.ID)
		if err != nil {
			logger.L.Warn("Fund fetch failed", "isin", fund.ISIN, "asset", fund.Name, "error", err)
			errs = append(errs, fmt.Sprintf("Failed to fetch price for %s (%s)", fund.Name, fund.ISIN))
			continue
		}
		prices = append(prices, *price)
	}

	if len(groups.Stocks) > 0 {
		tickers := make(map[string]StockRef, len(groups.Stocks))
		for _, stock := range groups.Stocks {
			tickers[stock.Ticker] = StockRef{Name: stock.Name, AssetID: stock.ID}
		}

		stockPrices := s.prices.FetchMultipleStocks(ctx, tickers)
		prices = append(prices, stockPrices...)

		fetched := make(map[string]bool, len(stockPrices))
		for _, p := range stockPrices {
			fetched[p.Ticker] = true
		}
		for _, stock := range groups.Stocks {
			if !fetched[stock.Ticker] {
				errs = append(errs, fmt.Sprintf("Failed to fetch price for %s", stock.Ticker))
			}
		}
	}

	logger.L.Info("Fetch complete", "prices", len(prices), "errors", len(errs))

	response := &models.FetchMonthResponse{
		Year:            year,
		Month:           month,
		LastBusinessDay: utils.FormatDate(lastBusinessDay),
		Prices:          []models.PriceData{},
		Errors:          []string{},
	}
	if errs != nil {
		response.Errors = errs
	}

	if len(prices) == 0 {
		logger.L.Error("No prices could be fetched from any source")
		response.Success = false
		response.Message = "No prices could be fetched from any source"
		if len(response.Errors) == 0 {
			response.Errors = []string{"No data available from Yahoo Finance, Binance or FT Markets"}
		}
		return response, nil
	}

	// Persistence is best-effort: a failed write is logged and the fetch is
	// still reported successful.
	if s.cfg.SheetURL != "" {
		entries := HistoryEntriesFromPrices(prices, utils.MonthKey(year, month))
		if err := s.sheets.PersistHistory(ctx, entries); err != nil {
			logger.L.Error("Failed to persist prices to sheet store", "error", err)
		}
	}

	response.Success = true
	response.Message = fmt.Sprintf("Successfully fetched %d prices", len(prices))
	response.Prices = prices
	return response, nil
}
