// Package spotify implements the upstream side of the proxy: a cached
// client-credentials token and the three read-only Web API calls the
// application needs. All requests go through a single parametrized helper so
// error handling cannot diverge between endpoints. Calls are single-shot —
// no retries, and responses are never cached.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"soundbox/pkg/music"
)

const apiBaseURL = "https://api.spotify.com/v1"

// TokenSource yields a bearer token valid at the time of the call. TokenCache
// is the production implementation.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the Spotify Web API using tokens from a TokenSource.
type Client struct {
	tokens TokenSource
	base   string
	http   *http.Client
}

// Compile-time check that Client satisfies the service interface the
// handlers depend on.
var _ music.Service = (*Client)(nil)

// NewClient returns a Client bound to the given token source. baseURL
// overrides the Web API root and is meant for tests; pass "" for the real
// one. The transport carries a 10 second timeout since upstream specifies
// none.
func NewClient(tokens TokenSource, baseURL string) *Client {
	if baseURL == "" {
		baseURL = apiBaseURL
	}
	return &Client{
		tokens: tokens,
		base:   baseURL,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Wire types mirroring the subset of the Web API schema the proxy reads.

type wireImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type wireArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireAlbum struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Artists     []wireArtist `json:"artists"`
	Images      []wireImage  `json:"images"`
	ReleaseDate string       `json:"release_date"`
	Popularity  int          `json:"popularity"`
	AlbumType   string       `json:"album_type"`
	TotalTracks int          `json:"total_tracks"`
}

type wireTrack struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Artists    []wireArtist `json:"artists"`
	Album      wireAlbum    `json:"album"`
	Popularity int          `json:"popularity"`
}

type searchResponse struct {
	Albums *struct {
		Items []wireAlbum `json:"items"`
	} `json:"albums"`
	Tracks *struct {
		Items []wireTrack `json:"items"`
	} `json:"tracks"`
}

// get issues an authenticated GET against the Web API and decodes the JSON
// body into out. Non-2xx statuses become *APIError carrying the status and
// the (truncated) upstream body.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build spotify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("spotify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode spotify response: %w", err)
		}
	}
	return nil
}

// SearchAlbums implements music.Service by querying the catalog for albums
// matching query. Results keep upstream order.
func (c *Client) SearchAlbums(ctx context.Context, query string, limit int) ([]music.Album, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "album")
	q.Set("limit", strconv.Itoa(limit))

	var res searchResponse
	if err := c.get(ctx, "/search", q, &res); err != nil {
		return nil, err
	}
	if res.Albums == nil {
		return nil, nil
	}
	albums := make([]music.Album, len(res.Albums.Items))
	for i, a := range res.Albums.Items {
		albums[i] = toAlbum(a)
	}
	return albums, nil
}

// SearchTracks implements music.Service by querying the catalog for tracks
// matching query within the given market.
func (c *Client) SearchTracks(ctx context.Context, query, market string, limit int) ([]music.Track, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))
	if market != "" {
		q.Set("market", market)
	}

	var res searchResponse
	if err := c.get(ctx, "/search", q, &res); err != nil {
		return nil, err
	}
	if res.Tracks == nil {
		return nil, nil
	}
	tracks := make([]music.Track, len(res.Tracks.Items))
	for i, t := range res.Tracks.Items {
		tracks[i] = toTrack(t)
	}
	return tracks, nil
}

// GetTrack implements music.Service by looking up a single track, including
// its embedded album.
func (c *Client) GetTrack(ctx context.Context, id string) (music.Track, error) {
	var t wireTrack
	if err := c.get(ctx, "/tracks/"+url.PathEscape(id), nil, &t); err != nil {
		return music.Track{}, err
	}
	return toTrack(t), nil
}

func artistNames(artists []wireArtist) []string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return names
}

func imageURLs(images []wireImage) []string {
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}
	return urls
}

func toAlbum(a wireAlbum) music.Album {
	return music.Album{
		ID:          a.ID,
		Name:        a.Name,
		Artists:     artistNames(a.Artists),
		Images:      imageURLs(a.Images),
		ReleaseDate: a.ReleaseDate,
		Popularity:  a.Popularity,
		AlbumType:   a.AlbumType,
		TotalTracks: a.TotalTracks,
	}
}

func toTrack(t wireTrack) music.Track {
	return music.Track{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    artistNames(t.Artists),
		Album:      toAlbum(t.Album),
		Popularity: t.Popularity,
	}
}
