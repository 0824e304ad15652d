// Command web starts the SoundBox backend: a thin proxy in front of the
// Spotify Web API plus an in-memory album collection. Configuration comes
// from environment variables (a local .env file is honoured for
// development). The server authenticates to Spotify with the
// client-credentials flow; end users are never authenticated.
package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"soundbox/pkg/collection"
	"soundbox/pkg/handlers"
	"soundbox/pkg/spotify"
)

func main() {
	// A missing .env is fine; deployments configure the environment
	// directly.
	_ = godotenv.Load()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	clientID := os.Getenv("CLIENT_ID")
	clientSecret := os.Getenv("CLIENT_SECRET")
	tokens, err := spotify.NewTokenCache(clientID, clientSecret, os.Getenv("SPOTIFY_TOKEN_URL"))
	if err != nil {
		logrus.Fatalf("CLIENT_ID and CLIENT_SECRET must be set: %v", err)
	}
	sc := spotify.NewClient(tokens, os.Getenv("SPOTIFY_API_URL"))

	app := &handlers.Application{
		Music:      sc,
		Collection: collection.NewStore(),
		Tokens:     tokens,
	}

	origins := splitOrigins(os.Getenv("CORS_ORIGIN"))
	if len(origins) == 0 {
		logrus.Warn("CORS_ORIGIN not set, allowing any origin")
	}

	port := getenv("PORT", "3000")
	logrus.Infof("SoundBox backend listening on :%s", port)
	logrus.Infof("health check: http://localhost:%s/health", port)
	if err := http.ListenAndServe(":"+port, newRouter(app, origins)); err != nil {
		logrus.Fatalf("http server error: %v", err)
	}
}

// newRouter registers all routes and middleware. Split from main so tests
// can exercise the full routing table with in-memory dependencies.
func newRouter(app *handlers.Application, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(handlers.CORS(origins))
	r.Use(handlers.SecurityHeaders)
	r.Use(handlers.Metrics)

	r.Get("/health", app.Health)
	r.Get("/search", app.SearchJSON)
	r.Get("/top-argentina", app.TopArgentinaJSON)
	r.Get("/top/{market}", app.TopTracksJSON)
	r.Get("/album-by-track", app.AlbumByTrackJSON)

	r.Route("/api/collection", func(r chi.Router) {
		r.Get("/", app.ListCollectionAlbums)
		r.Post("/", app.CreateCollectionAlbum)
		r.Put("/{id}", app.UpdateCollectionAlbum)
		r.Delete("/{id}", app.DeleteCollectionAlbum)
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

// getenv returns the environment value for k, or def when unset.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// splitOrigins parses the comma-separated CORS allow-list.
func splitOrigins(v string) []string {
	var origins []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
