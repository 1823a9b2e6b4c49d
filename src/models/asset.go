package models

// Asset categories as stored in the spreadsheet. "Stocks" appears alongside
// "Stock" in older rows, so classification accepts both.
const (
	CategoryCrypto  = "Crypto"
	CategoryFund    = "Fund"
	CategoryStock   = "Stock"
	CategoryStocks  = "Stocks"
	CategoryPension = "Pension Plan"
	CategoryCash    = "Cash"
	CategoryOther   = "Other"
)

// Asset is one row of the asset sheet. Ticker is set for stocks and crypto,
// ISIN for funds; an asset used for price fetching carries exactly one of the
// two appropriate to its category.
type Asset struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Color            string   `json:"color,omitempty"`
	BaseAmount       float64  `json:"baseAmount,omitempty"`
	Archived         bool     `json:"archived"`
	TargetAllocation *float64 `json:"targetAllocation,omitempty"`
	RiskLevel        string   `json:"riskLevel,omitempty"`
	ISIN             string   `json:"isin,omitempty"`
	Ticker           string   `json:"ticker,omitempty"`
}

// PriceData is one fetched price for an asset. Created only by a price
// source; immutable once created.
type PriceData struct {
	AssetID   string  `json:"assetId"`
	AssetName string  `json:"assetName"`
	Ticker    string  `json:"ticker,omitempty"`
	ISIN      string  `json:"isin,omitempty"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	FetchedAt string  `json:"fetchedAt"` // ISO-8601 UTC
	Source    string  `json:"source"`    // "yahoo_finance", "binance_api", "ft_markets"
}

// HistoryEntry is one persisted (month, asset) price row in the remote
// spreadsheet document. (Month, AssetID) is the merge key.
type HistoryEntry struct {
	ID           string  `json:"id,omitempty"`
	Month        string  `json:"month"` // YYYY-MM
	AssetID      string  `json:"assetId"`
	NAV          float64 `json:"nav"`
	Contribution float64 `json:"contribution"`
	Source       string  `json:"source,omitempty"`
	Date         string  `json:"date,omitempty"`
}

// FetchMonthResponse is the envelope returned by the fetch-month endpoint.
type FetchMonthResponse struct {
	Success         bool        `json:"success"`
	Message         string      `json:"message"`
	Year            int         `json:"year"`
	Month           int         `json:"month"`
	LastBusinessDay string      `json:"lastBusinessDay"` // YYYY-MM-DD
	Prices          []PriceData `json:"prices"`
	Errors          []string    `json:"errors"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// SheetDocument is the data payload stored in the remote spreadsheet store.
type SheetDocument struct {
	Assets  []Asset        `json:"assets"`
	History []HistoryEntry `json:"history"`
}
