// Package music defines the data structures exchanged between the Spotify
// proxy and its clients, together with the Service interface implemented by
// the upstream client. Handlers depend only on this package so the concrete
// Spotify client can be replaced in tests.
//
// All types here are response-shaped: their JSON tags are the wire format the
// front-end consumes, not the upstream Spotify schema.
package music

import (
	"context"
	"strings"
)

// Album is a single album search result. Popularity is only populated when
// the upstream response carries it; album search results usually omit it.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Images      []string `json:"images"`
	ReleaseDate string   `json:"releaseDate"`
	Popularity  int      `json:"popularity"`
	AlbumType   string   `json:"albumType"`
	TotalTracks int      `json:"totalTracks"`
}

// Track is a track returned by a search or lookup, including its embedded
// album.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      Album    `json:"album"`
	Popularity int      `json:"popularity"`
}

// TopTrack is one entry of a ranked chart. Position is 1-based and reflects
// the final sorted order.
type TopTrack struct {
	ID            string `json:"id"`
	Position      int    `json:"position"`
	Name          string `json:"name"`
	Artist        string `json:"artist"`
	Album         string `json:"album"`
	AlbumImageURL string `json:"albumImageUrl"`
	Popularity    int    `json:"popularity"`
}

// AlbumSummary is the minimal album projection returned by the
// album-by-track lookup.
type AlbumSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// Service exposes the three read-only upstream operations the proxy needs.
// Each call is single-shot: no retries, no response caching.
type Service interface {
	// SearchAlbums returns albums matching the query, at most limit of
	// them, in upstream order.
	SearchAlbums(ctx context.Context, query string, limit int) ([]Album, error)

	// SearchTracks returns tracks matching the query restricted to the
	// given market catalog. An empty market leaves the catalog unfiltered.
	SearchTracks(ctx context.Context, query, market string, limit int) ([]Track, error)

	// GetTrack looks up a single track by ID, including its embedded album.
	GetTrack(ctx context.Context, id string) (Track, error)
}

// SummarizeAlbum projects a track's embedded album into the minimal summary
// shape. It is a pure function: applying it twice to the same track yields
// identical output.
func SummarizeAlbum(t Track) AlbumSummary {
	return AlbumSummary{
		ID:     t.Album.ID,
		Name:   t.Album.Name,
		Artist: strings.Join(t.Album.Artists, ", "),
	}
}
