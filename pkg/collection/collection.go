// Package collection keeps the user's saved-album reviews. State lives only
// in process memory: entries exist from save until delete or shutdown, there
// is deliberately no backing store. Listing preserves insertion order so the
// shelf renders in the order albums were added.
package collection

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no entry exists for the given ID, allowing
// handlers to respond with a 404.
var ErrNotFound = errors.New("collection: album not found")

// ErrInvalidStars is returned when a rating falls outside the 0-5 range.
var ErrInvalidStars = errors.New("collection: stars must be between 0 and 5")

// Album is a saved album with the user's favorite song, free-text review and
// star rating. ID identifies the entry; AlbumID is the Spotify album it
// refers to.
type Album struct {
	ID        string    `json:"id"`
	AlbumID   string    `json:"albumID"`
	AlbumName string    `json:"albumName"`
	Artist    string    `json:"artist"`
	FavSong   string    `json:"favSong"`
	Review    string    `json:"review"`
	Stars     int       `json:"stars"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is a concurrency-safe in-memory collection.
type Store struct {
	mu     sync.RWMutex
	albums map[string]Album
	order  []string

	now   func() time.Time
	newID func() string
}

// NewStore returns an empty collection.
func NewStore() *Store {
	return &Store{
		albums: make(map[string]Album),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func validStars(stars int) bool { return stars >= 0 && stars <= 5 }

// Add saves a new entry and returns it with its generated ID and timestamps
// filled in.
func (s *Store) Add(a Album) (Album, error) {
	if !validStars(a.Stars) {
		return Album{}, ErrInvalidStars
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.newID()
	a.CreatedAt = s.now().UTC()
	a.UpdatedAt = a.CreatedAt
	s.albums[a.ID] = a
	s.order = append(s.order, a.ID)
	return a, nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.albums[id]
	if !ok {
		return Album{}, ErrNotFound
	}
	return a, nil
}

// Update replaces the mutable fields of an entry: favorite song, review and
// stars. The album identity fields are fixed at save time.
func (s *Store) Update(id, favSong, review string, stars int) (Album, error) {
	if !validStars(stars) {
		return Album{}, ErrInvalidStars
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.albums[id]
	if !ok {
		return Album{}, ErrNotFound
	}
	a.FavSong = favSong
	a.Review = review
	a.Stars = stars
	a.UpdatedAt = s.now().UTC()
	s.albums[id] = a
	return a, nil
}

// Delete removes an entry.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.albums[id]; !ok {
		return ErrNotFound
	}
	delete(s.albums, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns all entries in insertion order.
func (s *Store) List() []Album {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Album, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.albums[id])
	}
	return out
}
