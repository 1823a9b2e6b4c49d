package services

import (
	"github.com/google/uuid"
	"github.com/username/wealthhub/backend/src/models"
)

type historyKey struct {
	Month   string
	AssetID string
}

// MergeHistory combines newly fetched history entries with the previously
// persisted history. An incoming entry replaces the existing entry sharing
// its (month, assetId) key at its original position; entries with a new key
// are appended. Order of unaffected entries is preserved, and merging the
// same incoming set twice yields the same result as merging it once.
func MergeHistory(existing, incoming []models.HistoryEntry) []models.HistoryEntry {
	result := make([]models.HistoryEntry, len(existing))
	copy(result, existing)

	index := make(map[historyKey]int, len(result))
	for i, entry := range result {
		index[historyKey{entry.Month, entry.AssetID}] = i
	}

	for _, entry := range incoming {
		key := historyKey{entry.Month, entry.AssetID}
		if i, ok := index[key]; ok {
			result[i] = entry
		} else {
			index[key] = len(result)
			result = append(result, entry)
		}
	}
	return result
}

// HistoryEntriesFromPrices converts fetched prices into history entries for
// the given YYYY-MM month key. Contribution starts at the fetched price and
// is adjusted later by the frontend when the user records actual deposits.
func HistoryEntriesFromPrices(prices []models.PriceData, monthKey string) []models.HistoryEntry {
	entries := make([]models.HistoryEntry, 0, len(prices))
	for _, p := range prices {
		entries = append(entries, models.HistoryEntry{
			ID:           uuid.New().String(),
			Month:        monthKey,
			AssetID:      p.AssetID,
			NAV:          p.Price,
			Contribution: p.Price,
			Source:       p.Source,
			Date:         p.FetchedAt,
		})
	}
	return entries
}
