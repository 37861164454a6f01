package gateway

import "net/http"

// corsCacheSeconds is how long a browser may cache a preflight response,
// matching the original gateway's CORS_CACHE constant.
const corsCacheSeconds = "86400"

// applyCORSHeaders sets Access-Control-Allow-Origin to allowOrigin when it
// is non-empty, and sets nothing otherwise. The preflight (OPTIONS) and
// every other response call it.
func applyCORSHeaders(w http.ResponseWriter, allowOrigin string) {
	h := w.Header()
	if allowOrigin != "" {
		h.Set("Access-Control-Allow-Origin", allowOrigin)
	}
}

// handlePreflight writes the full CORS preflight response: a plain-text
// empty body with the method/header/max-age triplet the original gateway's
// handle_preflighted sets.
func handlePreflight(w http.ResponseWriter, allowOrigin string) {
	applyCORSHeaders(w, allowOrigin)
	h := w.Header()
	h.Set("Content-Type", "text/plain")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, X-Requested-With, User-Agent, Accept")
	h.Set("Access-Control-Max-Age", corsCacheSeconds)
	w.WriteHeader(http.StatusOK)
}
