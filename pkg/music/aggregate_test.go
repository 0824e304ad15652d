package music

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeTrackSearcher returns canned results or errors keyed by query string.
type fakeTrackSearcher struct {
	mu      sync.Mutex
	results map[string][]Track
	errs    map[string]error
	calls   int
}

func (f *fakeTrackSearcher) SearchTracks(_ context.Context, query, market string, limit int) ([]Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.results[query], nil
}

func fixedNow() time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func chartTrack(id string, popularity int) Track {
	return Track{
		ID:         id,
		Name:       "track " + id,
		Artists:    []string{"artist " + id},
		Album:      Album{Name: "album " + id, Images: []string{"http://img/" + id}},
		Popularity: popularity,
	}
}

// argentinaQueries mirrors the heuristic set for the default market with the
// fixed 2024 clock.
var argentinaQueries = []string{
	"genre:argentina popular",
	"argentina pop 2024",
	"argentina rock 2024",
	"cumbia argentina",
	"trap argentino",
}

// TestTopTracksMergeAndRank feeds the five queries with overlapping results
// and checks the merged list keeps duplicates, sorts by popularity with
// stable ties and assigns 1-based positions.
func TestTopTracksMergeAndRank(t *testing.T) {
	fs := &fakeTrackSearcher{
		results: map[string][]Track{
			argentinaQueries[0]: {chartTrack("a", 10), chartTrack("b", 90), chartTrack("c", 50)},
			// Same ID as "b": duplicates must be retained, not collapsed.
			argentinaQueries[1]: {chartTrack("b", 90)},
			argentinaQueries[4]: {chartTrack("d", 30)},
		},
		errs: map[string]error{
			argentinaQueries[2]: errors.New("boom"),
			argentinaQueries[3]: errors.New("boom"),
		},
	}
	charts := Charts{Tracks: fs, Now: fixedNow}

	songs := charts.TopTracks(context.Background(), "AR")
	if len(songs) != 5 {
		t.Fatalf("expected 5 songs got %d", len(songs))
	}
	wantPop := []int{90, 90, 50, 30, 10}
	for i, s := range songs {
		if s.Popularity != wantPop[i] {
			t.Errorf("song %d popularity = %d, want %d", i, s.Popularity, wantPop[i])
		}
		if s.Position != i+1 {
			t.Errorf("song %d position = %d, want %d", i, s.Position, i+1)
		}
	}
	// Stable sort: the tie between the two 90s keeps query order, so the
	// first comes from the first query's batch.
	if songs[0].ID != "b" || songs[1].ID != "b" {
		t.Errorf("duplicate track not retained: %q, %q", songs[0].ID, songs[1].ID)
	}
	if fs.calls != 5 {
		t.Errorf("expected 5 upstream queries got %d", fs.calls)
	}
}

// TestTopTracksAllQueriesFail documents the intentional behaviour: when every
// sub-query fails the endpoint still succeeds with an empty list.
func TestTopTracksAllQueriesFail(t *testing.T) {
	errs := make(map[string]error, len(argentinaQueries))
	for _, q := range argentinaQueries {
		errs[q] = errors.New("boom")
	}
	charts := Charts{Tracks: &fakeTrackSearcher{errs: errs}, Now: fixedNow}

	songs := charts.TopTracks(context.Background(), "AR")
	if len(songs) != 0 {
		t.Fatalf("expected empty chart got %d songs", len(songs))
	}
}

// TestTopTracksTruncates verifies the chart never exceeds six entries.
func TestTopTracksTruncates(t *testing.T) {
	var many []Track
	for i := 0; i < 8; i++ {
		many = append(many, chartTrack(fmt.Sprintf("t%d", i), 100-i))
	}
	fs := &fakeTrackSearcher{results: map[string][]Track{argentinaQueries[0]: many}}
	charts := Charts{Tracks: fs, Now: fixedNow}

	songs := charts.TopTracks(context.Background(), "AR")
	if len(songs) != 6 {
		t.Fatalf("expected 6 songs got %d", len(songs))
	}
	if songs[5].Position != 6 {
		t.Errorf("last position = %d, want 6", songs[5].Position)
	}
}

// TestRankStableTies checks that equal popularity keeps input order.
func TestRankStableTies(t *testing.T) {
	in := []Track{chartTrack("first", 40), chartTrack("second", 40), chartTrack("third", 40)}
	top := rank(in, 6)
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if top[i].ID != id {
			t.Errorf("rank[%d] = %q, want %q", i, top[i].ID, id)
		}
	}
}

// TestRankMapsFields verifies the TopTrack projection: joined artists, album
// name and first album image.
func TestRankMapsFields(t *testing.T) {
	in := []Track{{
		ID:         "x",
		Name:       "Song",
		Artists:    []string{"A", "B"},
		Album:      Album{Name: "The Album", Images: []string{"http://img/1", "http://img/2"}},
		Popularity: 77,
	}}
	top := rank(in, 6)
	got := top[0]
	if got.Artist != "A, B" {
		t.Errorf("artist = %q", got.Artist)
	}
	if got.Album != "The Album" || got.AlbumImageURL != "http://img/1" {
		t.Errorf("album fields = %q %q", got.Album, got.AlbumImageURL)
	}
	if got.Position != 1 || got.Popularity != 77 {
		t.Errorf("position/popularity = %d/%d", got.Position, got.Popularity)
	}
}

// TestQueriesPerMarket checks the Argentina set matches the fixed heuristics
// and other markets fall back to the generic set.
func TestQueriesPerMarket(t *testing.T) {
	c := Charts{Now: fixedNow}

	ar := c.queries("AR")
	if len(ar) != 5 {
		t.Fatalf("expected 5 queries got %d", len(ar))
	}
	if ar[1] != "argentina pop 2024" || ar[4] != "trap argentino" {
		t.Errorf("unexpected AR queries: %v", ar)
	}

	other := c.queries("XX")
	if len(other) != 5 {
		t.Fatalf("expected 5 queries got %d", len(other))
	}
	if other[0] != "genre:xx popular" {
		t.Errorf("unexpected fallback query: %q", other[0])
	}
}
