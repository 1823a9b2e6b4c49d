package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/patrickmn/go-cache"
	"github.com/username/wealthhub/backend/src/config"
	"github.com/username/wealthhub/backend/src/logger"
	"github.com/username/wealthhub/backend/src/models"
	"github.com/username/wealthhub/backend/src/utils"
)

const assetCacheKey = "assets"

// sheetEnvelope is the response wrapper returned by the Apps Script web app.
type sheetEnvelope struct {
	Success bool                  `json:"success"`
	Data    *models.SheetDocument `json:"data"`
}

// updateHistoryPayload is the write-all payload accepted by the store.
type updateHistoryPayload struct {
	Action    string                `json:"action"`
	History   []models.HistoryEntry `json:"history"`
	Timestamp string                `json:"timestamp"`
}

type sheetServiceImpl struct {
	cfg        *config.AppConfig
	httpClient http.Client
	assetCache *cache.Cache
}

// NewSheetService builds the client for the remote spreadsheet store.
func NewSheetService(cfg *config.AppConfig) SheetService {
	return &sheetServiceImpl{
		cfg:        cfg,
		httpClient: http.Client{Timeout: cfg.FetchTimeout},
		assetCache: cache.New(cfg.AssetCacheTTL, 2*cfg.AssetCacheTTL),
	}
}

// LoadAssets returns the asset list from the store, serving a short-lived
// cached copy when available. Any store failure falls back to the built-in
// sample set with a warning; asset loading is never fatal.
func (s *sheetServiceImpl) LoadAssets(ctx context.Context) ([]models.Asset, error) {
	if s.cfg.SheetURL == "" {
		logger.L.Warn("Sheet URL not configured, using sample assets")
		return SampleAssets(), nil
	}

	if cached, found := s.assetCache.Get(assetCacheKey); found {
		if assets, ok := cached.([]models.Asset); ok {
			return assets, nil
		}
	}

	doc, err := s.LoadDocument(ctx)
	if err != nil {
		logger.L.Warn("Failed to load assets from sheet, using sample assets", "error", err)
		return SampleAssets(), nil
	}

	logger.L.Info("Loaded assets from sheet", "count", len(doc.Assets))
	s.assetCache.Set(assetCacheKey, doc.Assets, cache.DefaultExpiration)
	return doc.Assets, nil
}

// LoadDocument reads the full persisted document from the store. Any non-2xx
// status, timeout or malformed body is a total failure of the call.
func (s *sheetServiceImpl) LoadDocument(ctx context.Context) (*models.SheetDocument, error) {
	if s.cfg.SheetURL == "" {
		return nil, ErrSheetNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.SheetURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call sheet store: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sheet store returned non-2xx status %d", resp.StatusCode)
	}

	var envelope sheetEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode sheet response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, fmt.Errorf("sheet store reported failure")
	}
	return envelope.Data, nil
}

// PersistHistory loads the stored history, merges the given entries into it
// (last write wins per (month, assetId)) and writes the whole document back.
func (s *sheetServiceImpl) PersistHistory(ctx context.Context, entries []models.HistoryEntry) error {
	if s.cfg.SheetURL == "" {
		return ErrSheetNotConfigured
	}

	merged := entries
	if doc, err := s.LoadDocument(ctx); err != nil {
		// A missing document is not fatal for a write-all store: the
		// incoming entries become the whole history.
		logger.L.Warn("Could not load existing history before persist", "error", err)
	} else {
		merged = MergeHistory(doc.History, entries)
	}

	payload := updateHistoryPayload{
		Action:    "updateHistory",
		History:   merged,
		Timestamp: utils.FormatDateTimeISO(utils.Now()),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SheetURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post history to sheet store: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sheet store returned non-2xx status %d on update", resp.StatusCode)
	}

	logger.L.Info("History persisted to sheet store", "entries", len(merged))
	return nil
}

// SampleAssets is the built-in development set served when the remote store
// is unconfigured or unreachable.
func SampleAssets() []models.Asset {
	return []models.Asset{
		{
			ID:         "btc-usd",
			Name:       "Bitcoin",
			Category:   models.CategoryCrypto,
			Ticker:     "BTC-USD",
			Color:      "#F7931A",
			BaseAmount: 5000,
		},
		{
			ID:         "numantia-patrimonio",
			Name:       "Numantia Patrimonio Global",
			Category:   models.CategoryFund,
			ISIN:       "ES0165151004",
			Color:      "#6366F1",
			BaseAmount: 10000,
		},
		{
			ID:         "aapl-stock",
			Name:       "Apple Inc.",
			Category:   models.CategoryStocks,
			Ticker:     "AAPL",
			Color:      "#555555",
			BaseAmount: 3000,
		},
	}
}
