//
//  internal/requestinfo/requestinfo.go
//
//  Client fingerprint attached to every form-check request: browser,
//  device class, bot flag, and an optional country.  The form handlers log
//  it next to the verdict so operators can see which clients keep
//  submitting invalid input.  The struct is inert and safe to log.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang  (MaxMind country lookup)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// Info carries the client attributes used in request logs.
type Info struct {
	Browser string // "Chrome", "Firefox", "Safari", ...
	Version string // "125.0.6422"
	OS      string // "MacOSX", "Windows", "Android", ...
	Device  string // "Desktop", "Mobile", "Tablet", or "Other"
	IsBot   bool
	IP      net.IP
	Country string // ISO code, empty without a GeoIP database
}

//
//  -----------------------------
//  GeoIP handle
//  -----------------------------
//

// Geo wraps a MaxMind reader.  A nil *Geo disables lookups.  Safe for
// concurrent reads.
type Geo struct {
	db *geoip2.Reader
}

// OpenGeo opens a GeoLite2 Country (or City) database.
func OpenGeo(path string) (*Geo, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open GeoIP database %s: %w", path, err)
	}
	return &Geo{db: db}, nil
}

// Close releases the database.
func (g *Geo) Close() error {
	if g == nil {
		return nil
	}
	return g.db.Close()
}

// country returns the ISO code for ip, or "" when unknown.
func (g *Geo) country(ip net.IP) string {
	if g == nil || ip == nil {
		return ""
	}
	rec, err := g.db.Country(ip)
	if err != nil {
		return ""
	}
	return rec.Country.IsoCode
}

//
//  -----------------------------
//  Context helpers
//  -----------------------------
//

type ctxKey struct{}

// WithInfo returns a copy of ctx carrying info.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the Info stored by Enrich, or an empty Info when the
// middleware has not run.
func FromContext(ctx context.Context) *Info {
	if v, ok := ctx.Value(ctxKey{}).(*Info); ok {
		return v
	}
	return &Info{}
}

//
//  -----------------------------
//  UA parsing
//  -----------------------------
//

// parseUA converts a raw User-Agent header into Info.
func parseUA(raw string) Info {
	ua := uasurfer.Parse(raw)

	info := Info{
		Browser: strings.TrimPrefix(ua.Browser.Name.String(), "Browser"),
		Version: versionString(ua.Browser.Version),
		OS:      strings.TrimPrefix(ua.OS.Name.String(), "OS"),
		IsBot:   ua.IsBot(),
	}

	switch ua.DeviceType {
	case uasurfer.DeviceComputer:
		info.Device = "Desktop"
	case uasurfer.DeviceTablet:
		info.Device = "Tablet"
	case uasurfer.DevicePhone, uasurfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}
	return info
}

// versionString renders 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionString(v uasurfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return strconv.Itoa(v.Major)
	}
}
