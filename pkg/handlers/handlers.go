// Package handlers contains the HTTP handlers for the SoundBox backend. This
// file holds the proxy endpoints: album search, top tracks for a market,
// album-by-track lookup and the health check. Upstream failures are reduced
// to a machine-readable error kind plus a generic message; the raw Spotify
// payload never reaches a client.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"soundbox/pkg/collection"
	"soundbox/pkg/music"
	"soundbox/pkg/spotify"
)

// searchLimit caps the album search at upstream's own page size for the
// search modal.
const searchLimit = 5

// defaultMarket is the catalog used by the legacy /top-argentina route.
const defaultMarket = "AR"

// TokenStatus is the token-cache introspection the health endpoint reports.
type TokenStatus interface {
	HasToken() bool
	Expiry() time.Time
}

// Application bundles the dependencies shared by the HTTP handlers.
type Application struct {
	Music      music.Service
	Collection *collection.Store
	Tokens     TokenStatus
}

// upstreamError translates a failed upstream call into an HTTP response. The
// token exchange maps to 401, data calls to 500 with the upstream status
// embedded in the message.
func upstreamError(w http.ResponseWriter, err error) {
	var apiErr *spotify.APIError
	switch {
	case errors.As(err, &apiErr):
		log.WithError(err).WithField("upstream_status", apiErr.Status).Error("spotify api call failed")
		respondJSONError(w, http.StatusInternalServerError, "upstream_api", apiErr.Error())
	case errors.Is(err, spotify.ErrMissingCredentials):
		log.WithError(err).Error("spotify credentials missing")
		respondJSONError(w, http.StatusUnauthorized, "upstream_auth", "authentication to Spotify failed")
	default:
		var authErr *spotify.AuthError
		if errors.As(err, &authErr) {
			log.WithError(err).Error("spotify token exchange failed")
			respondJSONError(w, http.StatusUnauthorized, "upstream_auth", "authentication to Spotify failed")
			return
		}
		log.WithError(err).Error("spotify request failed")
		respondJSONError(w, http.StatusInternalServerError, "internal", "request to Spotify failed")
	}
}

// SearchJSON handles GET /search?q=. A blank query short-circuits to an
// empty result without touching upstream.
func (app *Application) SearchJSON(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "albums": []music.Album{}})
		return
	}
	albums, err := app.Music.SearchAlbums(r.Context(), q, searchLimit)
	if err != nil {
		upstreamError(w, err)
		return
	}
	if albums == nil {
		albums = []music.Album{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "albums": albums})
}

// TopTracksJSON handles GET /top/{market}. Sub-query failures inside the
// aggregation are swallowed there; the endpoint itself always succeeds, with
// an empty list when nothing could be fetched.
func (app *Application) TopTracksJSON(w http.ResponseWriter, r *http.Request) {
	market := strings.ToUpper(chi.URLParam(r, "market"))
	if market == "" {
		market = defaultMarket
	}
	app.respondTopTracks(w, r, market)
}

// TopArgentinaJSON handles GET /top-argentina, the route the existing
// front-end calls.
func (app *Application) TopArgentinaJSON(w http.ResponseWriter, r *http.Request) {
	app.respondTopTracks(w, r, defaultMarket)
}

func (app *Application) respondTopTracks(w http.ResponseWriter, r *http.Request, market string) {
	charts := music.Charts{Tracks: app.Music}
	songs := charts.TopTracks(r.Context(), market)
	if songs == nil {
		songs = []music.TopTrack{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "songs": songs})
}

// AlbumByTrackJSON handles GET /album-by-track?trackId=. It projects the
// track's embedded album into the minimal summary the front-end needs.
func (app *Application) AlbumByTrackJSON(w http.ResponseWriter, r *http.Request) {
	trackID := strings.TrimSpace(r.URL.Query().Get("trackId"))
	if trackID == "" {
		respondJSONError(w, http.StatusBadRequest, "bad_request", "trackId is required")
		return
	}
	track, err := app.Music.GetTrack(r.Context(), trackID)
	if err != nil {
		upstreamError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"album":   music.SummarizeAlbum(track),
		"track":   map[string]string{"id": track.ID, "name": track.Name},
	})
}

// Health reports process liveness plus the state of the Spotify integration:
// whether credentials are configured, whether a valid token is held and when
// it expires.
func (app *Application) Health(w http.ResponseWriter, r *http.Request) {
	var expires any
	hasToken := false
	if app.Tokens != nil {
		hasToken = app.Tokens.HasToken()
		if e := app.Tokens.Expiry(); !e.IsZero() {
			expires = e.UTC().Format(time.RFC3339)
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"spotify": map[string]any{
			"hasCredentials": app.Tokens != nil,
			"hasToken":       hasToken,
			"tokenExpires":   expires,
		},
	})
}
