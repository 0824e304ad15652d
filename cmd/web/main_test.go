package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"soundbox/pkg/collection"
	"soundbox/pkg/handlers"
	"soundbox/pkg/music"
)

// fakeService implements music.Service so the full routing table can be
// exercised without network access.
type fakeService struct {
	albums []music.Album
	tracks []music.Track
	track  music.Track
}

func (f fakeService) SearchAlbums(context.Context, string, int) ([]music.Album, error) {
	return f.albums, nil
}

func (f fakeService) SearchTracks(context.Context, string, string, int) ([]music.Track, error) {
	return f.tracks, nil
}

func (f fakeService) GetTrack(context.Context, string) (music.Track, error) {
	return f.track, nil
}

type fakeTokens struct{}

func (fakeTokens) HasToken() bool    { return true }
func (fakeTokens) Expiry() time.Time { return time.Now().Add(time.Hour) }

// newServer builds a test server with the production routing table and
// in-memory dependencies.
func newServer() *httptest.Server {
	fs := fakeService{
		albums: []music.Album{{ID: "al1", Name: "Album", Artists: []string{"Artist"}}},
		tracks: []music.Track{{ID: "t1", Name: "Song", Popularity: 50, Album: music.Album{Name: "Album"}}},
		track:  music.Track{ID: "t1", Name: "Song", Album: music.Album{ID: "al1", Name: "Album", Artists: []string{"Artist"}}},
	}
	app := &handlers.Application{
		Music:      fs,
		Collection: collection.NewStore(),
		Tokens:     fakeTokens{},
	}
	return httptest.NewServer(newRouter(app, []string{"https://soundbox.example"}))
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	var body map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("invalid JSON from %s: %v\n%s", url, err, data)
		}
	}
	return resp.StatusCode, body
}

func TestRoutes(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	status, body := getJSON(t, srv.URL+"/health")
	if status != http.StatusOK || body["status"] != "healthy" {
		t.Errorf("health: %d %v", status, body)
	}

	status, body = getJSON(t, srv.URL+"/search?q=album")
	if status != http.StatusOK || body["success"] != true {
		t.Errorf("search: %d %v", status, body)
	}
	if albums := body["albums"].([]any); len(albums) != 1 {
		t.Errorf("search albums: %v", albums)
	}

	status, body = getJSON(t, srv.URL+"/top-argentina")
	if status != http.StatusOK || body["success"] != true {
		t.Errorf("top-argentina: %d %v", status, body)
	}
	// One track per query, five queries, duplicates retained.
	if songs := body["songs"].([]any); len(songs) != 5 {
		t.Errorf("top-argentina songs: %d", len(songs))
	}

	status, body = getJSON(t, srv.URL+"/top/US")
	if status != http.StatusOK || body["success"] != true {
		t.Errorf("top/US: %d %v", status, body)
	}

	status, body = getJSON(t, srv.URL+"/album-by-track?trackId=t1")
	if status != http.StatusOK {
		t.Fatalf("album-by-track: %d %v", status, body)
	}
	if album := body["album"].(map[string]any); album["id"] != "al1" {
		t.Errorf("album-by-track album: %v", album)
	}

	status, body = getJSON(t, srv.URL+"/album-by-track")
	if status != http.StatusBadRequest || body["error"] != "bad_request" {
		t.Errorf("album-by-track missing param: %d %v", status, body)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics: %d", resp.StatusCode)
	}
}

func TestCollectionRoutes(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	payload := `{"albumID":"al1","albumName":"Album","artist":"Artist","favSong":"Song","review":"nice","stars":3}`
	resp, err := http.Post(srv.URL+"/api/collection", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	var created map[string]any
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %v", resp.StatusCode, created)
	}
	id := created["album"].(map[string]any)["id"].(string)

	status, body := getJSON(t, srv.URL+"/api/collection")
	if status != http.StatusOK {
		t.Fatalf("list: %d", status)
	}
	if albums := body["albums"].([]any); len(albums) != 1 {
		t.Errorf("list albums: %v", albums)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/collection/"+id, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: %d", resp.StatusCode)
	}
}

// TestCORSRejection drives a disallowed browser origin through the full
// middleware chain.
func TestCORSRejection(t *testing.T) {
	srv := newServer()
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 got %d", resp.StatusCode)
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" https://a.example, https://b.example ,")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("splitOrigins = %v", got)
	}
	if got := splitOrigins(""); got != nil {
		t.Errorf("splitOrigins(\"\") = %v", got)
	}
}
