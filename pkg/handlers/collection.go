// Package handlers groups HTTP handlers for SoundBox. This file holds the
// endpoints managing the saved-album collection: list, create, update and
// delete. The collection is process-local state; there is no persistence
// behind it.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"soundbox/pkg/collection"
)

// collectionRequest is the payload accepted by create and update. Stars must
// stay within 0-5; the store enforces that.
type collectionRequest struct {
	AlbumID   string `json:"albumID"`
	AlbumName string `json:"albumName"`
	Artist    string `json:"artist"`
	FavSong   string `json:"favSong"`
	Review    string `json:"review"`
	Stars     int    `json:"stars"`
}

// ListCollectionAlbums returns every saved album in the order they were
// added.
func (app *Application) ListCollectionAlbums(w http.ResponseWriter, r *http.Request) {
	if app.Collection == nil {
		respondJSONError(w, http.StatusInternalServerError, "internal", "collection not configured")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "albums": app.Collection.List()})
}

// CreateCollectionAlbum saves a new album with its review and rating.
func (app *Application) CreateCollectionAlbum(w http.ResponseWriter, r *http.Request) {
	if app.Collection == nil {
		respondJSONError(w, http.StatusInternalServerError, "internal", "collection not configured")
		return
	}
	var req collectionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if strings.TrimSpace(req.AlbumID) == "" || strings.TrimSpace(req.AlbumName) == "" {
		respondJSONError(w, http.StatusBadRequest, "bad_request", "albumID and albumName are required")
		return
	}
	saved, err := app.Collection.Add(collection.Album{
		AlbumID:   req.AlbumID,
		AlbumName: req.AlbumName,
		Artist:    req.Artist,
		FavSong:   req.FavSong,
		Review:    req.Review,
		Stars:     req.Stars,
	})
	if err != nil {
		collectionError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "album": saved})
}

// UpdateCollectionAlbum replaces the favorite song, review and rating of an
// existing entry.
func (app *Application) UpdateCollectionAlbum(w http.ResponseWriter, r *http.Request) {
	if app.Collection == nil {
		respondJSONError(w, http.StatusInternalServerError, "internal", "collection not configured")
		return
	}
	var req collectionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	updated, err := app.Collection.Update(chi.URLParam(r, "id"), req.FavSong, req.Review, req.Stars)
	if err != nil {
		collectionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "album": updated})
}

// DeleteCollectionAlbum removes an entry from the collection.
func (app *Application) DeleteCollectionAlbum(w http.ResponseWriter, r *http.Request) {
	if app.Collection == nil {
		respondJSONError(w, http.StatusInternalServerError, "internal", "collection not configured")
		return
	}
	if err := app.Collection.Delete(chi.URLParam(r, "id")); err != nil {
		collectionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func collectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, collection.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "not_found", "album not in collection")
	case errors.Is(err, collection.ErrInvalidStars):
		respondJSONError(w, http.StatusBadRequest, "bad_request", "stars must be between 0 and 5")
	default:
		log.WithError(err).Error("collection operation failed")
		respondJSONError(w, http.StatusInternalServerError, "internal", "collection operation failed")
	}
}
