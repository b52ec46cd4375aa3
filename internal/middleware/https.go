// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS returns a wrapper that issues a 308 Permanent Redirect to the
// HTTPS version of the same URL when the request is plain HTTP and the host
// is not a loopback name.  A disabled wrapper passes every request through.
func ForceHTTPS(enabled bool) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		if !enabled {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Already HTTPS, TLS-terminating proxy, or dev host → continue.
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" || isLoopback(r.Host) {
				h.ServeHTTP(w, r)
				return
			}

			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}

// isLoopback reports whether host (with optional :port) names this machine.
func isLoopback(host string) bool {
	h := stripPort(host)
	return h == "localhost" || h == "127.0.0.1" || h == "::1" || h == "[::1]"
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if strings.HasPrefix(h, "[") {
		if i := strings.IndexByte(h, ']'); i != -1 {
			return h[:i+1]
		}
	}
	if i := strings.LastIndexByte(h, ':'); i != -1 && strings.Count(h, ":") == 1 {
		return h[:i]
	}
	return h
}
