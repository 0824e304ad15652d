// CORS middleware with an explicit origin allow-list. Browser requests from
// origins not on the list are rejected before reaching a handler;
// server-to-server requests without an Origin header always pass.
package handlers

import "net/http"

// CORS returns middleware enforcing the given origin allow-list. An empty
// list permits any origin, which is only intended for local development.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(allowed) > 0 && !allowed[origin] {
				log.WithField("origin", origin).Warn("origin not allowed")
				respondJSONError(w, http.StatusForbidden, "origin_forbidden", "origin not allowed")
				return
			}
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
