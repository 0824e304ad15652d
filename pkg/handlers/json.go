// Package handlers contains HTTP handler implementations for SoundBox. This
// file adds small helpers for decoding JSON requests with validation and for
// writing the response envelope.
//
// Every response uses the same envelope: successes carry {"success": true}
// next to their payload, failures carry {"success": false, "error": <kind>,
// "message": <text>} where kind is machine-readable.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// decodeJSON attempts to decode the request body into the provided
// destination. The body is limited to 1MB to guard against malicious
// requests. Unknown fields cause an error so clients cannot send unexpected
// data.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1MB
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.New("empty body")
		}
		return err
	}
	if dec.More() {
		return errors.New("extra data in request body")
	}
	return nil
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encode response")
	}
}

// respondJSONError writes the failure envelope. kind is a stable
// machine-readable identifier; message is safe to show to a client.
func respondJSONError(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"error":   kind,
		"message": message,
	})
}
