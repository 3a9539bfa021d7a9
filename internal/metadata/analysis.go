// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package metadata

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

const analysisSampleSize = 5

// VendorAnalysis summarizes what Discogs thinks a vendor's catalog is, and
// how strongly that agrees with the value the inference engine suggested.
type VendorAnalysis struct {
	SampleSize int            `json:"sampleSize"`
	Genre      GenreAnalysis  `json:"genreAnalysis"`
	Style      StyleAnalysis  `json:"styleAnalysis"`
	Decade     DecadeAnalysis `json:"decadeAnalysis"`
	Products   []ProductMatch `json:"products"`
}

// GenreAnalysis reports the dominant Discogs genre across the sample.
// Confidence is zero unless the suggested value agrees with the top genre.
type GenreAnalysis struct {
	TopGenre    string         `json:"topGenre"`
	Count       int            `json:"count"`
	Confidence  int            `json:"confidence"`
	AllGenres   map[string]int `json:"allGenres"`
	Recommended string         `json:"recommended"`
}

// StyleAnalysis reports the dominant Discogs style. Styles map loosely onto
// subgenres so no confidence score is computed against them.
type StyleAnalysis struct {
	TopStyle  string         `json:"topStyle"`
	Count     int            `json:"count"`
	AllStyles map[string]int `json:"allStyles"`
}

// DecadeAnalysis reports the dominant release decade across the sample.
type DecadeAnalysis struct {
	TopDecade   string         `json:"topDecade"`
	Count       int            `json:"count"`
	Confidence  int            `json:"confidence"`
	AllDecades  map[string]int `json:"allDecades"`
	Recommended string         `json:"recommended"`
}

// ProductMatch pairs one sampled product with its Discogs result.
type ProductMatch struct {
	Handle  string   `json:"handle"`
	Title   string   `json:"title"`
	Discogs *Release `json:"discogs"`
}

// AnalyzeVendor samples up to five of a vendor's titles, looks each up on
// Discogs using the vendor name as artist, and tallies genres, styles and
// release decades. When the suggested genre or decade matches the dominant
// value, confidence is the share of the sample that agreed.
func (c *DiscogsClient) AnalyzeVendor(ctx context.Context, vendor string, items []LookupItem, suggestedGenre, suggestedDecade string) (*VendorAnalysis, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	sample := items
	if len(sample) > analysisSampleSize {
		sample = sample[:analysisSampleSize]
	}

	analysis := &VendorAnalysis{
		SampleSize: len(sample),
		Genre:      GenreAnalysis{AllGenres: make(map[string]int)},
		Style:      StyleAnalysis{AllStyles: make(map[string]int)},
		Decade:     DecadeAnalysis{AllDecades: make(map[string]int)},
		Products:   make([]ProductMatch, 0, len(sample)),
	}

	for _, item := range sample {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, err := c.Lookup(ctx, vendor, item.Title)
		if err != nil {
			return nil, fmt.Errorf("vendor analysis lookup failed for %q: %w", item.Title, err)
		}
		analysis.Products = append(analysis.Products, ProductMatch{
			Handle:  item.Handle,
			Title:   item.Title,
			Discogs: rel,
		})

		for _, g := range rel.Genres {
			analysis.Genre.AllGenres[g]++
		}
		for _, s := range rel.Styles {
			analysis.Style.AllStyles[s]++
		}
		if rel.Year > 0 {
			decade := rel.Year / 10 * 10
			analysis.Decade.AllDecades[fmt.Sprintf("%d", decade)]++
		}
	}

	analysis.Genre.TopGenre, analysis.Genre.Count = topEntry(analysis.Genre.AllGenres)
	analysis.Style.TopStyle, analysis.Style.Count = topEntry(analysis.Style.AllStyles)

	topDecade, decadeCount := topEntry(analysis.Decade.AllDecades)
	if topDecade != "" {
		analysis.Decade.TopDecade = topDecade + "s"
		analysis.Decade.Count = decadeCount
	}

	if suggestedGenre != "" && analysis.Genre.TopGenre != "" {
		if genresAgree(suggestedGenre, analysis.Genre.TopGenre) {
			analysis.Genre.Confidence = agreementPct(analysis.Genre.Count, len(sample))
		}
		analysis.Genre.Recommended = analysis.Genre.TopGenre
	}

	if suggestedDecade != "" && topDecade != "" {
		if decadesAgree(suggestedDecade, topDecade) {
			analysis.Decade.Confidence = agreementPct(decadeCount, len(sample))
		}
		analysis.Decade.Recommended = topDecade + "s"
	}

	return analysis, nil
}

// topEntry picks the highest count; ties break to the lexicographically
// smaller key so repeated analyses of the same sample agree.
func topEntry(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var top string
	var best int
	for _, k := range keys {
		if counts[k] > best {
			top, best = k, counts[k]
		}
	}
	return top, best
}

func agreementPct(count, sampleSize int) int {
	if sampleSize == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(sampleSize) * 100))
}

// genresAgree matches loosely: Discogs says "Jazz" where the taxonomy says
// "Jazz / Blues", so a substring match in either direction counts.
func genresAgree(suggested, discogs string) bool {
	s := strings.ToLower(suggested)
	d := strings.ToLower(discogs)
	return s == d || strings.Contains(s, d) || strings.Contains(d, s)
}

// decadesAgree compares a taxonomy decade code like "80C" or "2010c" with a
// Discogs decade like "1980". Two-digit codes are twentieth century.
func decadesAgree(suggested, discogsDecade string) bool {
	var digits strings.Builder
	for _, r := range suggested {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return false
	}

	var n int
	if _, err := fmt.Sscanf(digits.String(), "%d", &n); err != nil {
		return false
	}
	if n < 100 {
		n += 1900
	}
	return fmt.Sprintf("%d", n) == discogsDecade
}
