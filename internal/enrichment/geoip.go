package enrichment

import (
	"net"

	geoip2 "github.com/oschwald/geoip2-golang"
)

// Location is a best-effort geolocation of a source IP.
type Location struct {
	Country   string
	City      string
	Latitude  float64
	Longitude float64
}

// GeoIPResolver resolves IP addresses against a GeoIP2/GeoLite2 City
// database. A nil resolver is valid and reports every lookup as a miss,
// which is how deployments without a database file run.
type GeoIPResolver struct {
	db *geoip2.Reader
}

// NewGeoIPResolver opens the database at dbPath.
func NewGeoIPResolver(dbPath string) (*GeoIPResolver, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &GeoIPResolver{db: db}, nil
}

func (g *GeoIPResolver) Close() error {
	if g == nil {
		return nil
	}
	return g.db.Close()
}

// Lookup resolves ipStr to a location. The second return value is false for
// nil resolvers, unparseable or private addresses, and lookup failures.
func (g *GeoIPResolver) Lookup(ipStr string) (Location, bool) {
	if g == nil {
		return Location{}, false
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}, false
	}

	record, err := g.db.City(ip)
	if err != nil {
		return Location{}, false
	}
	if record.Country.IsoCode == "" {
		return Location{}, false
	}

	return Location{
		Country:   record.Country.IsoCode,
		City:      record.City.Names["en"],
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}, true
}
