package services

import (
	"strings"

	"github.com/username/wealthhub/backend/src/models"
)

// AssetGroups holds the assets selected for each price source. The groups are
// not guaranteed disjoint: each predicate is applied independently, and an
// asset matching several predicates is fetched by each matching source.
type AssetGroups struct {
	Crypto []models.Asset
	Funds  []models.Asset
	Stocks []models.Asset
}

// ClassifyAssets partitions assets into crypto, fund and stock groups.
// Crypto: ticker contains "BTC" (case-insensitive).
// Fund: ISIN present with the exact 12-character length.
// Stock: ticker present, not the BTC-USD pair, and a stock category.
// Assets matching none of the predicates are excluded from fetching.
func ClassifyAssets(assets []models.Asset) AssetGroups {
	var groups AssetGroups
	for _, a := range assets {
		if strings.Contains(strings.ToUpper(a.Ticker), "BTC") {
			groups.Crypto = append(groups.Crypto, a)
		}
		if len(a.ISIN) == 12 {
			groups.Funds = append(groups.Funds, a)
		}
		if a.Ticker != "" && a.Ticker != "BTC-USD" &&
			(a.Category == models.CategoryStock || a.Category == models.CategoryStocks) {
			groups.Stocks = append(groups.Stocks, a)
		}
	}
	return groups
}
