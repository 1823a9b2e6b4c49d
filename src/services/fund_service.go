package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/wealthhub/backend/src/config"
	"github.com/username/wealthhub/backend/src/logger"
	"github.com/username/wealthhub/backend/src/models"
	"github.com/username/wealthhub/backend/src/utils"
	"golang.org/x/net/html"
)

const sourceFT = "ft_markets"

type fundServiceImpl struct {
	cfg        *config.AppConfig
	db         *sql.DB // per-day NAV cache, may be nil
	httpClient http.Client
}

// NewFundService builds the Financial Times fund NAV source. db is the local
// price-cache database and may be nil to disable caching.
func NewFundService(cfg *config.AppConfig, db *sql.DB) FundService {
	return &fundServiceImpl{
		cfg:        cfg,
		db:         db,
		httpClient: http.Client{Timeout: cfg.FetchTimeout},
	}
}

// fundExtractor is one strategy for locating the NAV in the tearsheet
// document. Strategies are tried in order; the first that yields a parseable
// value wins. Keeping each one isolated means a markup change on the provider
// side only requires editing or adding a single strategy.
type fundExtractor struct {
	name string
	fn   func(doc *html.Node) (string, bool)
}

var fundExtractors = []fundExtractor{
	{"data-list-value", func(doc *html.Node) (string, bool) {
		node := findElement(doc, "span", "class", "mod-ui-data-list__value")
		if node == nil {
			return "", false
		}
		return strings.TrimSpace(nodeText(node)), true
	}},
	{"meta-itemprop-price", func(doc *html.Node) (string, bool) {
		node := findElement(doc, "meta", "itemprop", "price")
		if node == nil {
			return "", false
		}
		return attrValue(node, "content"), true
	}},
}

// FetchFundPrice fetches the current NAV for the EUR share class of the given
// ISIN from the FT tearsheet summary page.
func (s *fundServiceImpl) FetchFundPrice(ctx context.Context, isin, assetName, assetID string) (*models.PriceData, error) {
	today := utils.FormatDate(utils.Now())
	if cached, err := models.GetPricesBySymbolsAndDate(s.db, []string{isin}, today); err == nil {
		if p, ok := cached[isin]; ok {
			logger.L.Debug("Fund NAV served from daily cache", "isin", isin, "nav", p.Price)
			return s.fundPriceData(isin, assetName, assetID, p.Price), nil
		}
	}

	url := fmt.Sprintf("%s/data/funds/tearsheet/summary?s=%s:EUR", s.cfg.FTBaseURL, isin)
	logger.L.Info("Fetching fund tearsheet", "isin", isin, "asset", assetName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch FT tearsheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FT returned non-OK status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FT tearsheet: %w", err)
	}

	nav, err := extractFundNAV(doc)
	if err != nil {
		return nil, fmt.Errorf("no price found for %s: %w", isin, err)
	}

	models.InsertOrUpdatePrice(s.db, models.DailyPrice{
		Symbol:   isin,
		Date:     today,
		Price:    nav,
		Currency: "EUR",
		Source:   sourceFT,
	})
	return s.fundPriceData(isin, assetName, assetID, nav), nil
}

func (s *fundServiceImpl) fundPriceData(isin, assetName, assetID string, nav float64) *models.PriceData {
	return &models.PriceData{
		AssetID:   assetID,
		AssetName: assetName,
		ISIN:      isin,
		Price:     nav,
		Currency:  "EUR",
		FetchedAt: utils.FormatDateTimeISO(utils.Now()),
		Source:    sourceFT,
	}
}

// extractFundNAV runs the extraction strategies in order and parses the first
// value found. Thousands separators are stripped before parsing.
func extractFundNAV(doc *html.Node) (float64, error) {
	for _, extractor := range fundExtractors {
		raw, ok := extractor.fn(doc)
		if !ok {
			continue
		}
		cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
		value, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			logger.L.Warn("Fund price extractor yielded unparsable value",
				"extractor", extractor.name, "value", raw)
			continue
		}
		return utils.Round(value, 4), nil
	}
	return 0, fmt.Errorf("no extraction strategy matched")
}

// --- HTML helpers ---

// findElement returns the first element named tag whose attribute attr
// contains val (class attributes may hold several names).
func findElement(n *html.Node, tag, attr, val string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		for _, a := range n.Attr {
			if a.Key == attr && attrContains(a.Val, val) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag, attr, val); found != nil {
			return found
		}
	}
	return nil
}

func attrContains(attrVal, want string) bool {
	for _, f := range strings.Fields(attrVal) {
		if f == want {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeText concatenates the text content of a node's subtree.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}
