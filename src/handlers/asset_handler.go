package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/wealthhub/backend/src/config"
	"github.com/username/wealthhub/backend/src/logger"
	"github.com/username/wealthhub/backend/src/models"
	"github.com/username/wealthhub/backend/src/services"
	"github.com/username/wealthhub/backend/src/utils"
)

type AssetHandler struct {
	cfg          *config.AppConfig
	sheetService services.SheetService
}

func NewAssetHandler(cfg *config.AppConfig, sheetService services.SheetService) *AssetHandler {
	return &AssetHandler{cfg: cfg, sheetService: sheetService}
}

// HandleGetAssets serves GET /api/assets.
func (h *AssetHandler) HandleGetAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.sheetService.LoadAssets(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("Error loading assets", "error", err)
		utils.SendJSONError(w, "Error loading assets", http.StatusInternalServerError)
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"assets":  assets,
	})
}

// HandleHealth serves GET /health.
func (h *AssetHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.HealthResponse{
		Status:  "healthy",
		Message: "WealthHub Backend is running",
		Version: h.cfg.APIVersion,
	})
}
