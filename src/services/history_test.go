package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/wealthhub/backend/src/models"
)

func TestMergeHistory_ReplacesOnKeyCollision(t *testing.T) {
	existing := []models.HistoryEntry{
		{Month: "2024-02", AssetID: "btc", NAV: 40000},
	}
	incoming := []models.HistoryEntry{
		{Month: "2024-02", AssetID: "btc", NAV: 42000},
	}

	merged := MergeHistory(existing, incoming)

	require.Len(t, merged, 1)
	assert.Equal(t, 42000.0, merged[0].NAV)
}

func TestMergeHistory_AppendsNewKeys(t *testing.T) {
	existing := []models.HistoryEntry{
		{Month: "2024-02", AssetID: "btc", NAV: 40000},
	}
	incoming := []models.HistoryEntry{
		{Month: "2024-02", AssetID: "aapl", NAV: 150},
	}

	merged := MergeHistory(existing, incoming)

	require.Len(t, merged, 2)
	assert.Equal(t, "btc", merged[0].AssetID)
	assert.Equal(t, "aapl", merged[1].AssetID)
}

func TestMergeHistory_PreservesPositionAndOrder(t *testing.T) {
	existing := []models.HistoryEntry{
		{Month: "2024-01", AssetID: "btc", NAV: 38000},
		{Month: "2024-01", AssetID: "aapl", NAV: 140},
		{Month: "2024-02", AssetID: "btc", NAV: 40000},
	}
	incoming := []models.HistoryEntry{
		{Month: "2024-01", AssetID: "aapl", NAV: 145},
	}

	merged := MergeHistory(existing, incoming)

	require.Len(t, merged, 3)
	assert.Equal(t, 38000.0, merged[0].NAV)
	assert.Equal(t, 145.0, merged[1].NAV, "replaced at its original position")
	assert.Equal(t, 40000.0, merged[2].NAV)
}

func TestMergeHistory_Idempotent(t *testing.T) {
	existing := []models.HistoryEntry{
		{Month: "2024-02", AssetID: "btc", NAV: 40000},
	}
	incoming := []models.HistoryEntry{
		{Month: "2024-02", AssetID: "btc", NAV: 42000},
		{Month: "2024-02", AssetID: "aapl", NAV: 150},
	}

	once := MergeHistory(existing, incoming)
	twice := MergeHistory(once, incoming)

	assert.Equal(t, once, twice)
}

func TestMergeHistory_DoesNotMutateInputs(t *testing.T) {
	existing := []models.HistoryEntry{
		{Month: "2024-02", AssetID: "btc", NAV: 40000},
	}
	incoming := []models.HistoryEntry{
		{Month: "2024-02", AssetID: "btc", NAV: 42000},
	}

	MergeHistory(existing, incoming)

	assert.Equal(t, 40000.0, existing[0].NAV)
}

func TestHistoryEntriesFromPrices(t *testing.T) {
	prices := []models.PriceData{
		{AssetID: "btc", Price: 42000, Source: "binance_api", FetchedAt: "2024-02-26T18:30:00Z"},
		{AssetID: "fund-1", Price: 12.3456, Source: "ft_markets", FetchedAt: "2024-02-26T18:30:00Z"},
	}

	entries := HistoryEntriesFromPrices(prices, "2024-02")

	require.Len(t, entries, 2)
	for i, entry := range entries {
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "2024-02", entry.Month)
		assert.Equal(t, prices[i].AssetID, entry.AssetID)
		assert.Equal(t, prices[i].Price, entry.NAV)
		assert.Equal(t, prices[i].Price, entry.Contribution)
		assert.Equal(t, prices[i].Source, entry.Source)
		assert.Equal(t, prices[i].FetchedAt, entry.Date)
	}
}
