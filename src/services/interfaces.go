package services

import (
	"context"
	"errors"

	"github.com/username/wealthhub/backend/src/models"
)

// Define common service errors
var (
	// ErrInvalidPeriod is returned when a fetch is requested for a period
	// that has not occurred yet, or for a month outside 1-12.
	ErrInvalidPeriod = errors.New("invalid period: month out of range or in the future")
	// ErrSheetNotConfigured is returned by persistence operations when no
	// remote store URL is configured.
	ErrSheetNotConfigured = errors.New("sheet store is not configured")
)

// StockRef identifies the asset behind a ticker symbol in a batched stock
// fetch.
type StockRef struct {
	Name    string
	AssetID string
}

// PriceService fetches crypto and equity prices from market-data providers.
type PriceService interface {
	// FetchBitcoinPrice fetches the current BTC-EUR price, trying Yahoo
	// Finance first and falling back to the Binance public ticker. The
	// returned error describes every failed attempt.
	FetchBitcoinPrice(ctx context.Context) (*models.PriceData, error)

	// FetchMultipleStocks fetches the latest close for each ticker
	// independently. Tickers that fail or return no data are omitted from
	// the result; the caller diffs the requested set to report failures.
	FetchMultipleStocks(ctx context.Context, tickers map[string]StockRef) []models.PriceData
}

// FundService fetches fund NAVs by ISIN from the Financial Times tearsheet.
type FundService interface {
	FetchFundPrice(ctx context.Context, isin, assetName, assetID string) (*models.PriceData, error)
}

// SheetService is the client for the remote spreadsheet-backed store. The
// store exposes a read-all / write-all contract over a single JSON document.
type SheetService interface {
	// LoadAssets returns the current asset list. It falls back to a small
	// built-in sample set when the store is unconfigured or unreachable,
	// so it only errors when even the fallback cannot be produced.
	LoadAssets(ctx context.Context) ([]models.Asset, error)

	// LoadDocument reads the full persisted document.
	LoadDocument(ctx context.Context) (*models.SheetDocument, error)

	// PersistHistory merges the given entries into the stored history
	// (last write wins per (month, assetId)) and writes the document back.
	PersistHistory(ctx context.Context, entries []models.HistoryEntry) error
}

// FetchService orchestrates a month fetch end to end.
type FetchService interface {
	FetchMonth(ctx context.Context, year, month int) (*models.FetchMonthResponse, error)
}
