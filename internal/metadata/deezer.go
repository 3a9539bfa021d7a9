// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mracine/tagquest/internal/cache"
	"github.com/mracine/tagquest/internal/config"
	"github.com/mracine/tagquest/internal/logging"
	"github.com/mracine/tagquest/internal/metrics"
)

// YearResult is a Deezer album-year lookup. Year is empty when Deezer had no
// release date for any match.
type YearResult struct {
	Year   string `json:"year"`
	Cached bool   `json:"cached"`
}

// deezerSearchResponse mirrors /search. Album release dates arrive as
// YYYY-MM-DD strings.
type deezerSearchResponse struct {
	Data []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
		Album struct {
			ID          int    `json:"id"`
			Title       string `json:"title"`
			ReleaseDate string `json:"release_date"`
		} `json:"album"`
		Artist struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"artist"`
	} `json:"data"`
}

// DeezerClient looks up album release years. Deezer needs no credentials, so
// only pacing, caching and the circuit breaker apply.
type DeezerClient struct {
	cfg        config.DeezerConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[string]
	cache      cache.Cacher
}

const deezerBreakerName = "deezer-api"

// NewDeezerClient builds a client from config with an injected cache.
func NewDeezerClient(cfg config.DeezerConfig, c cache.Cacher) *DeezerClient {
	metrics.CircuitBreakerState.WithLabelValues(deezerBreakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        deezerBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
		},
	})

	return &DeezerClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		breaker:    breaker,
		cache:      c,
	}
}

// Enabled reports whether the client is configured for use.
func (c *DeezerClient) Enabled() bool {
	return c.cfg.Enabled
}

// YearLookup resolves an artist/album pair to a release year. A fielded
// query runs first; when it matches nothing a plain text query retries,
// Deezer's fielded search misses on minor title punctuation differences.
// Empty results are cached with the same TTL as hits.
func (c *DeezerClient) YearLookup(ctx context.Context, artist, title string) (*YearResult, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	key := lookupKey("deezer", artist, title)
	if cached, ok := c.cache.Get(key); ok {
		if year, ok := cached.(string); ok {
			metrics.ObserveMetadataLookup("deezer", "cached", 0)
			return &YearResult{Year: year, Cached: true}, nil
		}
	}

	start := time.Now()
	year, err := c.breaker.Execute(func() (string, error) {
		return c.yearLookup(ctx, artist, title)
	})
	if err != nil {
		metrics.ObserveMetadataLookup("deezer", "error", time.Since(start))
		return nil, err
	}

	outcome := "miss"
	if year != "" {
		outcome = "hit"
	}
	metrics.ObserveMetadataLookup("deezer", outcome, time.Since(start))
	c.cache.SetWithTTL(key, year, c.cfg.CacheTTL)
	return &YearResult{Year: year}, nil
}

func (c *DeezerClient) yearLookup(ctx context.Context, artist, title string) (string, error) {
	fielded := fmt.Sprintf("artist:%q album:%q", artist, title)
	year, err := c.searchYear(ctx, fielded)
	if err != nil {
		return "", err
	}
	if year != "" {
		return year, nil
	}
	return c.searchYear(ctx, artist+" "+title)
}

func (c *DeezerClient) searchYear(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "5")

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deezer search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deezer search returned status %d", resp.StatusCode)
	}

	var out deezerSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode deezer response: %w", err)
	}

	for _, track := range out.Data {
		if track.Album.ReleaseDate != "" {
			year, _, _ := strings.Cut(track.Album.ReleaseDate, "-")
			return year, nil
		}
	}
	return "", nil
}

// BatchYearLookup resolves many handles sequentially. Per-item failures map
// to an empty year rather than aborting the batch.
func (c *DeezerClient) BatchYearLookup(ctx context.Context, items []LookupItem) (map[string]string, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	results := make(map[string]string, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := c.YearLookup(ctx, item.Vendor, item.Title)
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return results, err
			}
			logging.Debug().Err(err).Str("handle", item.Handle).Msg("Deezer batch item failed")
			results[item.Handle] = ""
			continue
		}
		results[item.Handle] = res.Year
	}
	return results, nil
}
