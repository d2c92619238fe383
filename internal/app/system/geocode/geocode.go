// internal/app/system/geocode/geocode.go

// Package geocode resolves coordinates to human-readable addresses through a
// Nominatim-compatible reverse endpoint, with a Redis read-through cache.
//
// Geocoding is a best-effort refinement by contract: callers persist the
// coordinate first and treat any failure here as cosmetic.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tagauto/tagauto/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Reverser resolves a coordinate to an address string.
type Reverser interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Client is the HTTP Reverser. Cache may be nil (cache disabled).
type Client struct {
	baseURL  string
	hc       *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
}

// New builds a Client against a Nominatim-style base URL
// (e.g. https://nominatim.openstreetmap.org).
func New(baseURL string, cache *redis.Client, cacheTTL time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		hc:       &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode returns the address for (lat, lng). Cache errors are
// treated as misses; only the upstream call itself can fail the lookup.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	key := cacheKey(lat, lng)
	if c.cache != nil {
		if addr, err := c.cache.Get(ctx, key).Result(); err == nil {
			metrics.GeocodeLookups.WithLabelValues("hit").Inc()
			return addr, nil
		} else if err != redis.Nil && c.log != nil {
			c.log.Debug("geocode cache read failed", zap.Error(err))
		}
	}

	addr, err := c.lookup(ctx, lat, lng)
	if err != nil {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.GeocodeLookups.WithLabelValues("miss").Inc()

	if c.cache != nil && addr != "" {
		if err := c.cache.Set(ctx, key, addr, c.cacheTTL).Err(); err != nil && c.log != nil {
			c.log.Debug("geocode cache write failed", zap.Error(err))
		}
	}
	return addr, nil
}

func (c *Client) lookup(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "tagauto-server")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: unexpected status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("reverse geocode: decode response: %w", err)
	}
	return body.DisplayName, nil
}

// Coordinates within ~1m share a cache entry.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("geocode:%.5f,%.5f", lat, lng)
}
