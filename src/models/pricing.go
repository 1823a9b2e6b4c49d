package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/username/wealthhub/backend/src/logger"
)

// DailyPrice represents a cached price for a symbol (ticker or ISIN) on a
// specific day.
type DailyPrice struct {
	Symbol    string
	Date      string // YYYY-MM-DD
	Price     float64
	Currency  string
	Source    string
	UpdatedAt time.Time
}

// GetPricesBySymbolsAndDate retrieves cached prices for a list of symbols on a
// specific date. It returns a map for easy lookup, where the key is the symbol.
func GetPricesBySymbolsAndDate(db *sql.DB, symbols []string, date string) (map[string]DailyPrice, error) {
	prices := make(map[string]DailyPrice)
	if db == nil || len(symbols) == 0 {
		return prices, nil
	}
	query := `SELECT symbol, date, price, currency, source, updated_at FROM daily_prices WHERE date = ? AND symbol IN (?` + strings.Repeat(",?", len(symbols)-1) + `)`
	args := make([]interface{}, len(symbols)+1)
	args[0] = date
	for i, symbol := range symbols {
		args[i+1] = symbol
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p DailyPrice
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Price, &p.Currency, &p.Source, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prices[p.Symbol] = p
	}
	return prices, rows.Err()
}

// InsertOrUpdatePrice saves a new price to the cache, updating if it already exists for that day.
func InsertOrUpdatePrice(db *sql.DB, price DailyPrice) error {
	if db == nil {
		return nil
	}
	// Using ON CONFLICT (UPSERT) is efficient and safe for concurrent operations.
	query := `
        INSERT INTO daily_prices (symbol, date, price, currency, source, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(symbol, date) DO UPDATE SET
            price = excluded.price,
            currency = excluded.currency,
            source = excluded.source,
            updated_at = excluded.updated_at;
    `
	_, err := db.Exec(query, price.Symbol, price.Date, price.Price, price.Currency, price.Source, time.Now())
	if err != nil {
		logger.L.Error("Failed to insert or update daily price", "symbol", price.Symbol, "date", price.Date, "error", err)
	}
	return err
}
