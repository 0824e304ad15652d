// Token caching for the client-credentials flow. The application holds a
// single bearer token shared by every endpoint; it is refreshed synchronously
// before an upstream call whenever it is absent or past its expiry.
package spotify

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenURL is the Spotify accounts endpoint for the client-credentials
// exchange.
const TokenURL = "https://accounts.spotify.com/api/token"

var tokenExchanges = promauto.NewCounter(prometheus.CounterOpts{
	Name: "soundbox_spotify_token_exchanges_total",
	Help: "Client-credentials exchanges performed against Spotify.",
})

// TokenCache holds at most one application token and its expiry. The mutex
// makes the check-then-refresh atomic, so concurrent requests trigger a
// single exchange and never observe a partially updated token.
type TokenCache struct {
	conf *clientcredentials.Config
	now  func() time.Time

	mu  sync.Mutex
	tok *oauth2.Token
}

// NewTokenCache validates the credentials and returns an empty cache. The
// first Token call performs the initial exchange. tokenURL overrides the
// accounts endpoint and is meant for tests; pass "" for the real one.
func NewTokenCache(clientID, clientSecret, tokenURL string) (*TokenCache, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	return &TokenCache{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
		now: time.Now,
	}, nil
}

// Token returns a bearer token valid at the time of the call, performing a
// client-credentials exchange first when none is held or the held one has
// expired. A failed exchange leaves the stored token untouched and returns an
// *AuthError, so a still-valid token is never discarded by a refresh attempt.
func (tc *TokenCache) Token(ctx context.Context) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.tok != nil && tc.now().Before(tc.tok.Expiry) {
		return tc.tok.AccessToken, nil
	}
	tok, err := tc.conf.Token(ctx)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	tokenExchanges.Inc()
	tc.tok = tok
	return tok.AccessToken, nil
}

// HasToken reports whether a token is held and still within its validity
// window. Used by the health endpoint.
func (tc *TokenCache) HasToken() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.tok != nil && tc.now().Before(tc.tok.Expiry)
}

// Expiry returns the held token's expiry instant, or the zero time when no
// token has been obtained yet.
func (tc *TokenCache) Expiry() time.Time {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.tok == nil {
		return time.Time{}
	}
	return tc.tok.Expiry
}
