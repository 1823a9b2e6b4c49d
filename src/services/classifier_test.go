package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/wealthhub/backend/src/models"
)

func TestClassifyAssets(t *testing.T) {
	assets := []models.Asset{
		{ID: "btc", Name: "Bitcoin", Category: models.CategoryCrypto, Ticker: "BTC-USD"},
		{ID: "fund-1", Name: "Numantia", Category: models.CategoryFund, ISIN: "ES0165151004"},
		{ID: "aapl", Name: "Apple", Category: models.CategoryStock, Ticker: "AAPL"},
		{ID: "msft", Name: "Microsoft", Category: models.CategoryStocks, Ticker: "MSFT"},
		{ID: "cash", Name: "Cash", Category: models.CategoryCash},
		{ID: "short-isin", Name: "Broken fund", Category: models.CategoryFund, ISIN: "ES016"},
	}

	groups := ClassifyAssets(assets)

	assert.Len(t, groups.Crypto, 1)
	assert.Equal(t, "btc", groups.Crypto[0].ID)

	assert.Len(t, groups.Funds, 1)
	assert.Equal(t, "fund-1", groups.Funds[0].ID)

	assert.Len(t, groups.Stocks, 2)
	assert.Equal(t, "aapl", groups.Stocks[0].ID)
	assert.Equal(t, "msft", groups.Stocks[1].ID)
}

func TestClassifyAssets_BTCUSDExcludedFromStocks(t *testing.T) {
	// The BTC-USD pair always goes to the crypto source, even when the row is
	// categorised as a stock.
	assets := []models.Asset{
		{ID: "btc", Name: "Bitcoin", Category: models.CategoryStock, Ticker: "BTC-USD"},
	}

	groups := ClassifyAssets(assets)

	assert.Len(t, groups.Crypto, 1)
	assert.Empty(t, groups.Stocks)
}

func TestClassifyAssets_GroupsNotDisjoint(t *testing.T) {
	// Predicates apply independently: a stock whose ticker merely contains
	// "BTC" is selected by both the crypto and the stock source.
	assets := []models.Asset{
		{ID: "mbtc", Name: "MicroBTC Corp", Category: models.CategoryStock, Ticker: "MBTC.MC"},
	}

	groups := ClassifyAssets(assets)

	assert.Len(t, groups.Crypto, 1)
	assert.Len(t, groups.Stocks, 1)
}

func TestClassifyAssets_CaseInsensitiveCryptoMatch(t *testing.T) {
	assets := []models.Asset{
		{ID: "btc", Name: "Bitcoin", Ticker: "btc-eur"},
	}

	groups := ClassifyAssets(assets)

	assert.Len(t, groups.Crypto, 1)
}

func TestClassifyAssets_UnmatchedAssetsSilentlyExcluded(t *testing.T) {
	assets := []models.Asset{
		{ID: "pension", Name: "Pension", Category: models.CategoryPension},
		{ID: "other", Name: "Other", Category: models.CategoryOther},
	}

	groups := ClassifyAssets(assets)

	assert.Empty(t, groups.Crypto)
	assert.Empty(t, groups.Funds)
	assert.Empty(t, groups.Stocks)
}
