package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultFXCacheTTL bounds how long a fetched rate is reused before the
// upstream API is consulted again. Intraday drift is acceptable for
// rebalancing math.
const DefaultFXCacheTTL = 10 * time.Minute

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// HTTPFXProvider fetches exchange rates from exchangerate-api.com and
// memoizes them per currency pair with a TTL.
type HTTPFXProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.Mutex
	ttl   time.Duration
	cache map[string]cachedRate
}

// NewHTTPFXProvider creates an FX provider. Without an API key the free
// v4 endpoint is used; with one, the keyed v6 endpoint.
func NewHTTPFXProvider(apiKey string, logger *zap.Logger) FXProvider {
	baseURL := "https://api.exchangerate-api.com/v4/latest"
	if apiKey != "" {
		baseURL = "https://v6.exchangerate-api.com/v6/" + apiKey + "/latest"
	}

	return &HTTPFXProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
		ttl:    DefaultFXCacheTTL,
		cache:  make(map[string]cachedRate),
	}
}

// GetRate returns the rate converting one unit of from into to. Cached
// values are served until their TTL lapses.
func (p *HTTPFXProvider) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	key := from + "/" + to
	p.mu.Lock()
	if entry, ok := p.cache[key]; ok && time.Since(entry.fetchedAt) < p.ttl {
		p.mu.Unlock()
		return entry.rate, nil
	}
	p.mu.Unlock()

	rate, err := p.fetchRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	p.mu.Lock()
	p.cache[key] = cachedRate{rate: rate, fetchedAt: time.Now()}
	p.mu.Unlock()

	p.logger.Debug("exchange rate fetched",
		zap.String("pair", key),
		zap.String("rate", rate.String()))
	return rate, nil
}

func (p *HTTPFXProvider) fetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, from)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("FX API returned status %d", resp.StatusCode)
	}

	// Decode generically to support both v6 (conversion_rates) and v4 (rates)
	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode response: %w", err)
	}

	// Optional result field check; treat missing as success
	if r, ok := raw["result"].(string); ok && r != "success" {
		return decimal.Zero, fmt.Errorf("FX API error: %s", r)
	}

	var ratesMap map[string]interface{}
	if cr, ok := raw["conversion_rates"].(map[string]interface{}); ok {
		ratesMap = cr
	} else if rr, ok := raw["rates"].(map[string]interface{}); ok {
		ratesMap = rr
	} else {
		return decimal.Zero, fmt.Errorf("FX API response missing rates")
	}

	v, exists := ratesMap[to]
	if !exists {
		return decimal.Zero, fmt.Errorf("rate not found for %s to %s", from, to)
	}
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return decimal.Zero, fmt.Errorf("malformed rate for %s to %s: %w", from, to, err)
		}
		return decimal.NewFromFloat(f), nil
	default:
		return decimal.Zero, fmt.Errorf("malformed rate for %s to %s", from, to)
	}
}
