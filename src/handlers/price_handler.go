package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/wealthhub/backend/src/config"
	"github.com/username/wealthhub/backend/src/logger"
	"github.com/username/wealthhub/backend/src/models"
	"github.com/username/wealthhub/backend/src/services"
	"github.com/username/wealthhub/backend/src/utils"
)

type PriceHandler struct {
	cfg          *config.AppConfig
	fetchService services.FetchService
	sheetService services.SheetService
}

func NewPriceHandler(cfg *config.AppConfig, fetchService services.FetchService, sheetService services.SheetService) *PriceHandler {
	return &PriceHandler{
		cfg:          cfg,
		fetchService: fetchService,
		sheetService: sheetService,
	}
}

// parsePeriod extracts and bounds-checks the year and month query parameters.
func parsePeriod(r *http.Request) (int, int, error) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")
	if yearStr == "" || monthStr == "" {
		return 0, 0, fmt.Errorf("year and month query parameters are required")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2020 || year > 2099 {
		return 0, 0, fmt.Errorf("invalid year: %s (expected 2020-2099)", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month: %s (expected 1-12)", monthStr)
	}
	return year, month, nil
}

// HandleFetchMonth serves GET /api/fetch-month?year=YYYY&month=M.
func (h *PriceHandler) HandleFetchMonth(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	year, month, err := parsePeriod(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.fetchService.FetchMonth(r.Context(), year, month)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPeriod) {
			utils.SendJSONError(w, fmt.Sprintf("Invalid month: %04d-%02d", year, month), http.StatusBadRequest)
			return
		}
		ctxLogger.Error("Error in fetch-month", "year", year, "month", month, "error", err)
		utils.SendJSONError(w, "Error fetching prices", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleUpdatePrices serves POST /api/update-prices. It accepts a list of
// price records fetched elsewhere (e.g. directly by the frontend) and merges
// them into the persisted history.
func (h *PriceHandler) HandleUpdatePrices(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var prices []models.PriceData
	if err := json.NewDecoder(r.Body).Decode(&prices); err != nil {
		utils.SendJSONError(w, "Invalid request body: expected a list of price records", http.StatusBadRequest)
		return
	}

	ctxLogger.Info("Updating prices", "count", len(prices))

	if h.cfg.SheetURL != "" && len(prices) > 0 {
		now := utils.Now()
		monthKey := utils.MonthKey(now.Year(), int(now.Month()))
		entries := services.HistoryEntriesFromPrices(prices, monthKey)
		if err := h.sheetService.PersistHistory(r.Context(), entries); err != nil {
			ctxLogger.Error("Error persisting updated prices", "error", err)
			utils.SendJSONError(w, "Error updating prices", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Updated %d prices", len(prices)),
		"prices":  prices,
	})
}
