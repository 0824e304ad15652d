// Error taxonomy for the Spotify integration. Handlers map these onto HTTP
// responses; the raw upstream payload stays inside APIError.Body and is never
// rendered by Error so it cannot leak through generic error formatting.
package spotify

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned when a token cache is constructed without
// a client ID or secret.
var ErrMissingCredentials = errors.New("spotify credentials not configured")

// AuthError wraps a rejected client-credentials exchange.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("spotify token exchange failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from a Spotify data call. Body holds the
// upstream payload for logs; Error deliberately reports only the status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify api error: status %d", e.Status)
}
