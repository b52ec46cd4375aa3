// internal/requestinfo/middleware.go
//
// HTTP middleware that attaches *Info to each request.
//
/*
Context
--------
This handler sits after chi's RealIP and the request logger.  For every
request it:

  1. Parses the User-Agent header.
  2. Extracts the left-most client IP from X-Forwarded-For or X-Real-IP,
     falling back to `r.RemoteAddr`.
  3. Looks up the country when a GeoIP database is configured.
  4. Stores the `*Info` in the request context for the form handlers.

Notes
-----
  • Look-ups are read-only, so the middleware is safe under concurrency.
  • A nil *Geo skips step 3.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich returns middleware that attaches *Info and forwards.
func Enrich(geo *Geo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := parseUA(r.UserAgent())
			info.IP = clientIP(r)
			info.Country = geo.country(info.IP)

			next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), &info)))
		})
	}
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
