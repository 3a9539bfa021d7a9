// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

// Package metadata implements the external verification clients. Discogs and
// Deezer results are advisory: they inform the operator, they never write to
// the certainty store.
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

// ErrDisabled is returned when a lookup is attempted against a provider the
// configuration has turned off.
var ErrDisabled = errors.New("metadata provider disabled")

// Release is the distilled Discogs view of one album: original year plus
// genre/style vocabulary. Empty fields mean Discogs had no data.
type Release struct {
	Year   int      `json:"year"`
	Genre  string   `json:"genre"`
	Style  string   `json:"style"`
	Genres []string `json:"genres"`
	Styles []string `json:"styles"`
}

// Found reports whether the lookup produced any usable data.
func (r *Release) Found() bool {
	return r != nil && (r.Year != 0 || len(r.Genres) > 0 || len(r.Styles) > 0)
}

// discogsSearchResponse mirrors /database/search.
type discogsSearchResponse struct {
	Results []struct {
		ID    int      `json:"id"`
		Type  string   `json:"type"`
		Title string   `json:"title"`
		Year  int      `json:"year,string,omitempty"`
		Genre []string `json:"genre"`
		Style []string `json:"style"`
	} `json:"results"`
}

// discogsMasterResponse mirrors /masters/{id}.
type discogsMasterResponse struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	Genres []string `json:"genres"`
	Styles []string `json:"styles"`
}

// DiscogsClient queries the Discogs database API with token auth, a shared
// request budget of about one request per second, a 24h result cache and a
// circuit breaker around the upstream.
type DiscogsClient struct {
	cfg        config.DiscogsConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*Release]
	cache      cache.Cacher
}

const discogsBreakerName = "discogs-api"

// NewDiscogsClient builds a client from config. The cache is injected so the
// API layer can share one instance across sessions.
func NewDiscogsClient(cfg config.DiscogsConfig, c cache.Cacher) *DiscogsClient {
	metrics.CircuitBreakerState.WithLabelValues(discogsBreakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[*Release](gobreaker.Settings{
		Name:        discogsBreakerName,
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

	return &DiscogsClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		breaker:    breaker,
		cache:      c,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Enabled reports whether the client is configured for use.
func (c *DiscogsClient) Enabled() bool {
	return c.cfg.Enabled && c.cfg.Token != ""
}

func lookupKey(provider, artist, title string) string {
	return fmt.Sprintf("%s:%s::%s", provider, strings.ToLower(artist), strings.ToLower(title))
}

// Lookup resolves one artist/title pair to a Release. Master releases are
// preferred so the year reflects the original pressing, with a plain release
// search as fallback. Negative results are cached too; retrying an album
// Discogs does not know about burns budget for nothing.
func (c *DiscogsClient) Lookup(ctx context.Context, artist, title string) (*Release, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	key := lookupKey("discogs", artist, title)
	if cached, ok := c.cache.Get(key); ok {
		if rel, ok := cached.(*Release); ok {
			metrics.ObserveMetadataLookup("discogs", "cached", 0)
			return rel, nil
		}
	}

	start := time.Now()
	rel, err := c.breaker.Execute(func() (*Release, error) {
		return c.lookup(ctx, artist, title)
	})
	if err != nil {
		metrics.ObserveMetadataLookup("discogs", "error", time.Since(start))
		return nil, err
	}

	outcome := "miss"
	if rel.Found() {
		outcome = "hit"
	}
	metrics.ObserveMetadataLookup("discogs", outcome, time.Since(start))
	c.cache.SetWithTTL(key, rel, c.cfg.CacheTTL)
	return rel, nil
}

func (c *DiscogsClient) lookup(ctx context.Context, artist, title string) (*Release, error) {
	query := artist + " " + title

	masters, err := c.search(ctx, query, "master")
	if err != nil {
		return nil, err
	}
	if len(masters.Results) == 0 {
		releases, err := c.search(ctx, query, "release")
		if err != nil {
			return nil, err
		}
		if len(releases.Results) == 0 {
			return &Release{}, nil
		}
		first := releases.Results[0]
		return releaseFromLists(first.Year, first.Genre, first.Style), nil
	}

	master := masters.Results[0]
	if master.ID != 0 {
		detail, err := c.masterDetail(ctx, master.ID)
		if err == nil {
			return releaseFromLists(detail.Year, detail.Genres, detail.Styles), nil
		}
		logging.Debug().Err(err).Int("master_id", master.ID).Msg("Discogs master detail failed, using search result")
	}
	return releaseFromLists(master.Year, master.Genre, master.Style), nil
}

func releaseFromLists(year int, genres, styles []string) *Release {
	rel := &Release{Year: year, Genres: genres, Styles: styles}
	if len(genres) > 0 {
		rel.Genre = genres[0]
	}
	if len(styles) > 0 {
		rel.Style = styles[0]
	}
	return rel
}

func (c *DiscogsClient) search(ctx context.Context, query, kind string) (*discogsSearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", kind)
	params.Set("per_page", "5")

	var out discogsSearchResponse
	if err := c.get(ctx, "/database/search?"+params.Encode(), &out); err != nil {
		return nil, fmt.Errorf("discogs %s search failed: %w", kind, err)
	}
	return &out, nil
}

func (c *DiscogsClient) masterDetail(ctx context.Context, id int) (*discogsMasterResponse, error) {
	var out discogsMasterResponse
	if err := c.get(ctx, fmt.Sprintf("/masters/%d", id), &out); err != nil {
		return nil, fmt.Errorf("discogs master %d failed: %w", id, err)
	}
	return &out, nil
}

func (c *DiscogsClient) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(c.cfg.BaseURL, "/")+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Discogs token="+c.cfg.Token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// BatchLookup resolves many handles sequentially. Per-item failures map to
// nil rather than aborting the batch; the limiter paces the upstream calls.
func (c *DiscogsClient) BatchLookup(ctx context.Context, items []LookupItem) (map[string]*Release, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	results := make(map[string]*Release, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		rel, err := c.Lookup(ctx, item.Vendor, item.Title)
		if err != nil {
			logging.Debug().Err(err).Str("handle", item.Handle).Msg("Discogs batch item failed")
			results[item.Handle] = nil
			continue
		}
		results[item.Handle] = rel
	}
	return results, nil
}

// LookupItem is one catalog row to verify.
type LookupItem struct {
	Handle string `json:"handle" validate:"required"`
	Title  string `json:"title" validate:"required"`
	Vendor string `json:"vendor"`
}
