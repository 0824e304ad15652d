// Package music provides the domain model for the proxy. This file
// implements the chart aggregation used by the top-tracks endpoint. Spotify
// exposes no charts API for this use case, so the list is approximated by
// running a fixed set of heuristic search queries and ranking the combined
// results by popularity.
package music

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// chartQueryLimit is the per-query upstream result cap.
	chartQueryLimit = 10
	// chartSize is the length of the final ranked list.
	chartSize = 6
)

// TrackSearcher is the subset of Service needed by the aggregation. Keeping
// it narrow lets tests feed canned results per query.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, query, market string, limit int) ([]Track, error)
}

// Charts builds ranked top-track lists for a market. Now is only consulted
// for the year placed into the heuristic queries; when nil, time.Now is used.
type Charts struct {
	Tracks TrackSearcher
	Now    func() time.Time
}

// marketNames maps upstream market codes to the catalog names used in the
// heuristic queries. Unknown codes fall back to the lowercased code itself.
var marketNames = map[string]string{
	"AR": "argentina",
	"BR": "brasil",
	"CL": "chile",
	"CO": "colombia",
	"ES": "espana",
	"MX": "mexico",
	"US": "usa",
	"UY": "uruguay",
}

// queries returns the five heuristic search queries for a market. Argentina
// keeps the original genre-specific set; other markets get a generic one.
func (c Charts) queries(market string) []string {
	year := time.Now().Year()
	if c.Now != nil {
		year = c.Now().Year()
	}
	name, ok := marketNames[strings.ToUpper(market)]
	if !ok {
		name = strings.ToLower(market)
	}
	if strings.EqualFold(market, "AR") {
		return []string{
			"genre:argentina popular",
			fmt.Sprintf("argentina pop %d", year),
			fmt.Sprintf("argentina rock %d", year),
			"cumbia argentina",
			"trap argentino",
		}
	}
	return []string{
		fmt.Sprintf("genre:%s popular", name),
		fmt.Sprintf("%s pop %d", name, year),
		fmt.Sprintf("%s rock %d", name, year),
		fmt.Sprintf("%s hits", name),
		fmt.Sprintf("%s top songs", name),
	}
}

// TopTracks runs every heuristic query for the market, merges the results and
// returns the chartSize most popular tracks with 1-based positions.
//
// Failed queries are logged and skipped; partial results are acceptable, and
// when every query fails an empty list is returned rather than an error.
// That asymmetry is deliberate: the endpoint reports whatever it could find.
// Merging keeps duplicates — a track matched by several queries counts once
// per query, which is part of the endpoint's observed behaviour.
func (c Charts) TopTracks(ctx context.Context, market string) []TopTrack {
	queries := c.queries(market)

	// One result slot per query so the flattened order (and with it the
	// sort tie-break) stays deterministic however the fetches interleave.
	batches := make([][]Track, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			tracks, err := c.Tracks.SearchTracks(ctx, q, market, chartQueryLimit)
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"query":  q,
					"market": market,
				}).Warn("chart query failed")
				return
			}
			batches[i] = tracks
		}(i, q)
	}
	wg.Wait()

	return rank(flatten(batches), chartSize)
}

// flatten concatenates the per-query batches in query order. No
// de-duplication by track ID.
func flatten(batches [][]Track) []Track {
	var merged []Track
	for _, b := range batches {
		merged = append(merged, b...)
	}
	return merged
}

// rank sorts tracks by descending popularity (stable, so ties keep their
// input order), truncates to at most n entries and assigns positions.
func rank(tracks []Track, n int) []TopTrack {
	sorted := make([]Track, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Popularity > sorted[j].Popularity
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	top := make([]TopTrack, len(sorted))
	for i, t := range sorted {
		var image string
		if len(t.Album.Images) > 0 {
			image = t.Album.Images[0]
		}
		top[i] = TopTrack{
			ID:            t.ID,
			Position:      i + 1,
			Name:          t.Name,
			Artist:        strings.Join(t.Artists, ", "),
			Album:         t.Album.Name,
			AlbumImageURL: image,
			Popularity:    t.Popularity,
		}
	}
	return top
}
