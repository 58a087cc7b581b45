package geo

import (
	"net"
	"strings"

	"resource-finder/internal/pkg/errs"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindLocator resolves countries from a local GeoLite2/GeoIP2 country database.
type MaxMindLocator struct {
	db *geoip2.Reader
}

func OpenMaxMind(path string) (*MaxMindLocator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, errs.Wrapf(err, "open geoip database %s", path)
	}
	return &MaxMindLocator{db: db}, nil
}

func (l *MaxMindLocator) CountryCode(ip string) (string, bool) {
	parsed := parseIP(ip)
	if parsed == nil {
		return "", false
	}
	rec, err := l.db.Country(parsed)
	if err != nil {
		return "", false
	}
	code := rec.Country.IsoCode
	if code == "" {
		code = rec.RegisteredCountry.IsoCode
	}
	if code == "" {
		// continent-only records, e.g. anycast ranges registered to "EU"
		code = rec.Continent.Code
	}
	return code, code != ""
}

func (l *MaxMindLocator) Close() error {
	return l.db.Close()
}

// NopLocator never resolves a country, so every caller gets the base currency.
type NopLocator struct{}

func (NopLocator) CountryCode(string) (string, bool) {
	return "", false
}

// StaticLocator maps exact IPs to countries; used for local development and tests.
type StaticLocator map[string]string

func (s StaticLocator) CountryCode(ip string) (string, bool) {
	parsed := parseIP(ip)
	if parsed == nil {
		return "", false
	}
	code, ok := s[parsed.String()]
	return code, ok && code != ""
}

// parseIP accepts a bare address, an address with port, or the first entry of an
// X-Forwarded-For style list.
func parseIP(raw string) net.IP {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, ','); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
