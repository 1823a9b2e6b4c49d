package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Remote spreadsheet store (Google Apps Script web app). Empty means
	// persistence is disabled and sample assets are served.
	SheetURL      string
	AssetCacheTTL time.Duration

	// Outbound HTTP settings
	FetchTimeout time.Duration

	// Provider endpoints. Overridable so tests can point at local servers.
	YahooBaseURL    string
	YahooWarmupURLs []string
	BinanceBaseURL  string
	FTBaseURL       string

	// Frontend URLs allowed by CORS, comma-separated in the env.
	FrontendURLs []string

	// API metadata
	APIVersion string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	// 1. Try loading from the current directory (standard behavior)
	errEnv := godotenv.Load()

	// 2. If not found, try loading from the parent directory (common when running from /backend)
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	sheetURL := getEnv("SHEET_URL", "")
	if sheetURL == "" {
		log.Println("WARNING: SHEET_URL not set. Prices will not be persisted and sample assets will be served.")
	}

	Cfg = &AppConfig{
		// Core
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./wealthhub.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		// Remote store
		SheetURL:      sheetURL,
		AssetCacheTTL: getEnvAsDuration("ASSET_CACHE_TTL", 5*time.Minute),

		// Outbound HTTP
		FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),

		// Providers
		YahooBaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		YahooWarmupURLs: getEnvAsList("YAHOO_WARMUP_URLS",
			[]string{"https://fc.yahoo.com", "https://finance.yahoo.com"}),
		BinanceBaseURL: getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
		FTBaseURL:      getEnv("FT_BASE_URL", "https://markets.ft.com"),

		// CORS
		FrontendURLs: getEnvAsList("FRONTEND_URLS",
			[]string{"http://localhost:3000", "http://frontend:5173"}),

		APIVersion: getEnv("API_VERSION", "1.0.0"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, SheetConfigured=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.SheetURL != "")
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getEnvAsList retrieves and parses a comma-separated environment variable.
func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
