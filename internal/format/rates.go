package format

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mapfin/internal/cache"
	"mapfin/internal/log"
)

// Public USD based rate endpoints, tried in order.
var DefaultRateEndpoints = []string{
	"https://api.exchangerate-api.com/v4/latest/USD",
	"https://open.er-api.com/v6/latest/USD",
}

const rateCacheKey = "USD:INR"

var ErrNoRate = errors.New("no exchange rate available")

// RateSource fetches the INR per USD rate and keeps it for a day.
type RateSource struct {
	endpoints []string
	client    *http.Client
	cache     *cache.LRUCache[float64]
	logger    *log.Logger
}

func NewRateSource(client *http.Client, ttl time.Duration, endpoints ...string) *RateSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if len(endpoints) == 0 {
		endpoints = DefaultRateEndpoints
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RateSource{
		endpoints: endpoints,
		client:    client,
		cache:     cache.NewLRUCache[float64](1, ttl),
		logger:    log.WithComponent(log.ComponentRates),
	}
}

// Rate returns the cached rate or asks each endpoint in turn. When all of
// them fail the default rate is returned together with ErrNoRate.
func (r *RateSource) Rate(ctx context.Context) (float64, error) {
	if v, ok := r.cache.Get(rateCacheKey); ok {
		return v, nil
	}
	var errs []error
	for _, url := range r.endpoints {
		v, err := r.fetch(ctx, url)
		if err != nil {
			r.logger.WarnContext(ctx, "Exchange rate endpoint failed", "url", url, "error", err)
			errs = append(errs, err)
			continue
		}
		r.cache.Set(rateCacheKey, v)
		return v, nil
	}
	return DefaultExchangeRate, errors.Join(append([]error{ErrNoRate}, errs...)...)
}

// Apply refreshes s.ExchangeRate, keeping the current value on failure.
func (r *RateSource) Apply(ctx context.Context, s Settings) (Settings, error) {
	v, err := r.Rate(ctx)
	if err != nil {
		return s, err
	}
	s.ExchangeRate = v
	return s, nil
}

func (r *RateSource) fetch(ctx context.Context, url string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode rates: %w", err)
	}
	v := body.Rates["INR"]
	if v <= 0 {
		return 0, fmt.Errorf("%w: INR missing from response", ErrNoRate)
	}
	return v, nil
}
