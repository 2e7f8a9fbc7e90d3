package controller

import (
	"net/http"
)

// DefaultMaxBodyBytes applies when WithBodyLimit is given a non-positive limit.
const DefaultMaxBodyBytes = 10 << 20

// WithBodyLimit caps request bodies at maxBytes. Reads past the cap fail with
// *http.MaxBytesError.
func WithBodyLimit(maxBytes int64, next http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		next.ServeHTTP(w, r)
	})
}
